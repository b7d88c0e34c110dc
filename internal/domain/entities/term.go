package entities

import "time"

// ConceptResolution is the cached outcome of a terminology lookup for a
// single normalized term. Codes preserves the response order of the
// terminology service, deduplicated by first occurrence.
type ConceptResolution struct {
	TermNorm  string    `json:"term_norm" db:"term_norm"`
	Codes     []string  `json:"codes" db:"rxcuis"`
	Raw       []byte    `json:"-" db:"raw"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UnresolvedTerm records a term that yielded no concept codes after the
// primary and alias lookups. It is a terminal state for offline remediation,
// not an error.
type UnresolvedTerm struct {
	TermNorm  string    `json:"term_norm" db:"term_norm"`
	Reason    string    `json:"reason" db:"reason"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
