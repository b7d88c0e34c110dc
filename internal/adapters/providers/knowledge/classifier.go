package knowledge

import "strings"

// Rule maps a bucket to the keywords that claim a section title for it
type Rule struct {
	Bucket   string
	Keywords []string
}

// Classifier assigns section titles to buckets by case-insensitive substring
// match. Rules are evaluated in order, so a title matching several buckets
// always lands in the same one.
type Classifier []Rule

// Classify returns the bucket for a section title, if any keyword matches
func (c Classifier) Classify(title string) (string, bool) {
	lower := strings.ToLower(title)
	for _, rule := range c {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Bucket, true
			}
		}
	}
	return "", false
}
