package providers

import (
	"context"

	"github.com/dawadex/backend/internal/domain/entities"
)

// KnowledgeProvider fetches consumer-health text for an ingredient term and
// classifies it into the fixed bucket set. A (nil, nil) return means the
// source has no data for the term; transport failures, empty classifications,
// and the cache-only mode all collapse into that outcome.
type KnowledgeProvider interface {
	// Name identifies the source in logs, metrics, and cache keys
	Name() string

	// FetchSections returns the classified document for a term, or nil
	FetchSections(ctx context.Context, term string) (*entities.KnowledgeDocument, error)
}
