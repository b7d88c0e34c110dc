package entities

// Semantic buckets consumer-health text is classified into
const (
	BucketUses        = "uses"
	BucketHowToTake   = "how_to_take"
	BucketPrecautions = "precautions"
	BucketSideEffects = "side_effects"
)

// Buckets returns the fixed bucket set in presentation order
func Buckets() []string {
	return []string{BucketUses, BucketHowToTake, BucketPrecautions, BucketSideEffects}
}

// FallbackBuckets returns the buckets fallback sources can fill.
// No fallback source classifies administration guidance, so how_to_take
// is excluded.
func FallbackBuckets() []string {
	return []string{BucketUses, BucketPrecautions, BucketSideEffects}
}

// Sections maps a bucket name to its text fragments
type Sections map[string][]string

// Empty reports whether no bucket holds any text
func (s Sections) Empty() bool {
	for _, fragments := range s {
		if len(fragments) > 0 {
			return false
		}
	}
	return true
}

// KnowledgeDocument is the classified output of one knowledge source for
// one ingredient term
type KnowledgeDocument struct {
	Title     string   `json:"title"`
	SourceURL string   `json:"source_url"`
	Sections  Sections `json:"sections"`
}

// Monograph is the composed per-product consumer-health text
type Monograph struct {
	Title    string   `json:"title"`
	Sources  []string `json:"sources"`
	Sections Sections `json:"sections"`
}
