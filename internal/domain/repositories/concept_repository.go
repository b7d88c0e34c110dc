package repositories

import (
	"context"
)

// ConceptCacheRepository persists terminology lookup results keyed by
// normalized term. The boolean return distinguishes a miss from a hit so
// store failures never have to masquerade as data.
type ConceptCacheRepository interface {
	// Get retrieves cached concept codes for a normalized term
	Get(ctx context.Context, termNorm string) (codes []string, found bool, err error)

	// Put upserts the lookup result (insert-or-replace by normalized term)
	Put(ctx context.Context, termNorm string, codes []string, raw []byte) error
}

// UnresolvedTermRepository records terms that resolved to nothing, feeding
// offline remediation
type UnresolvedTermRepository interface {
	// Record upserts a failure row for the normalized term
	Record(ctx context.Context, termNorm string, reason string) error
}
