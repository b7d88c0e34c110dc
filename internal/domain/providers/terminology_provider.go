package providers

import (
	"context"
)

// TerminologyProvider performs approximate term matching against an external
// terminology service. Codes preserve response order, deduplicated by first
// occurrence; an empty slice with a nil error means the term matched nothing.
type TerminologyProvider interface {
	ApproximateMatch(ctx context.Context, term string) (codes []string, raw []byte, err error)
}
