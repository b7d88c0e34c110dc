package utils

import (
	"regexp"
	"strings"
)

var (
	trademarkRe  = regexp.MustCompile(`[™®]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// aliasFallbacks maps normalized ingredient terms to a better-known synonym.
// Consulted only when primary terminology resolution yields no candidates.
var aliasFallbacks = map[string]string{
	"paracetamol":                 "acetaminophen",
	"clavulanic acid":             "clavulanate potassium",
	"amoxycillin":                 "amoxicillin",
	"azithromycine":               "azithromycin",
	"ranitidine hcl":              "ranitidine",
	"ranitidine hydrochloride":    "ranitidine",
	"metformin hcl":               "metformin",
	"metformin hydrochloride":     "metformin",
	"diclofenac sodium":           "diclofenac",
	"diclofenac potassium":        "diclofenac",
	"ibuprofen lysine":            "ibuprofen",
	"amox-clav":                   "amoxicillin clavulanate",
	"amoxicillin clavulanic acid": "amoxicillin clavulanate",
	"clavulanate potassium":       "clavulanate",
	"acetylsalicylic acid":        "aspirin",
	// Herbal / extract standardizations
	"uniflexin": "boswellia serrata",
	"aflapin":   "boswellia serrata",
	// Spelling / synonym variants seen in Indian market data
	"quiniodochlor": "clioquinol",
	"embramine":     "cyclizine",
	"endoxifen":     "tamoxifen",
	"nartograstim":  "filgrastim",
}

// NormalizeTerm canonicalizes a raw ingredient name: trademark glyphs are
// stripped, the result is trimmed and lowercased, and internal whitespace is
// collapsed to single spaces. The function is idempotent.
func NormalizeTerm(s string) string {
	x := trademarkRe.ReplaceAllString(s, "")
	x = strings.ToLower(strings.TrimSpace(x))
	return whitespaceRe.ReplaceAllString(x, " ")
}

// AliasFor returns the known synonym for a normalized term, if any
func AliasFor(termNorm string) (string, bool) {
	alias, ok := aliasFallbacks[termNorm]
	return alias, ok
}
