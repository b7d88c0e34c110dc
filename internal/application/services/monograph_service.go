package services

import (
	"context"
	"strings"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/providers"
)

const maxFallbackEntries = 4

// MonographService composes per-product consumer-health text from the
// primary knowledge source, then patches remaining gaps from the fallback
// sources. Fallbacks only fill buckets the primary left empty; they never
// override primary text.
type MonographService struct {
	primary   providers.KnowledgeProvider
	fallbacks []providers.KnowledgeProvider
}

// NewMonographService wires the primary source and the fallback chain in
// consultation order
func NewMonographService(primary providers.KnowledgeProvider, fallbacks ...providers.KnowledgeProvider) *MonographService {
	return &MonographService{primary: primary, fallbacks: fallbacks}
}

// Compose builds the monograph for a product's ingredient terms. Terms that
// yield no document are skipped; a nil monograph means no source had
// anything for any term.
func (s *MonographService) Compose(ctx context.Context, terms []string) (*entities.Monograph, error) {
	monograph := s.composePrimary(ctx, terms)
	s.MergeFallbacks(ctx, terms, monograph)

	if monograph.Title == "" && monograph.Sections.Empty() {
		return nil, nil
	}
	return monograph, nil
}

// composePrimary fetches each term from the primary source. The first term
// with text in a bucket wins that bucket; titles are comma-joined in term
// order and source URLs deduplicated by first appearance.
func (s *MonographService) composePrimary(ctx context.Context, terms []string) *entities.Monograph {
	monograph := &entities.Monograph{Sections: entities.Sections{}}
	var titles []string
	seenSources := make(map[string]bool)

	for _, term := range terms {
		doc, err := s.primary.FetchSections(ctx, term)
		if err != nil || doc == nil {
			continue
		}

		if doc.Title != "" {
			titles = append(titles, doc.Title)
		}
		if doc.SourceURL != "" && !seenSources[doc.SourceURL] {
			seenSources[doc.SourceURL] = true
			monograph.Sources = append(monograph.Sources, doc.SourceURL)
		}
		for _, bucket := range entities.Buckets() {
			if len(monograph.Sections[bucket]) == 0 && len(doc.Sections[bucket]) > 0 {
				monograph.Sections[bucket] = doc.Sections[bucket]
			}
		}
	}

	monograph.Title = strings.Join(titles, ", ")
	return monograph
}

// MergeFallbacks fills buckets the primary left empty. Each fallback source
// is fully attempted across all terms before the next one is consulted;
// within a source, a bucket takes up to maxFallbackEntries deduplicated
// fragments flattened in term order. Filled buckets are never overridden.
func (s *MonographService) MergeFallbacks(ctx context.Context, terms []string, monograph *entities.Monograph) {
	missing := make([]string, 0, len(entities.FallbackBuckets()))
	for _, bucket := range entities.FallbackBuckets() {
		if len(monograph.Sections[bucket]) == 0 {
			missing = append(missing, bucket)
		}
	}
	if len(missing) == 0 {
		return
	}

	seenSources := make(map[string]bool)
	for _, src := range monograph.Sources {
		seenSources[src] = true
	}

	for _, fallback := range s.fallbacks {
		var docs []*entities.KnowledgeDocument
		for _, term := range terms {
			doc, err := fallback.FetchSections(ctx, term)
			if err != nil || doc == nil {
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			continue
		}

		stillMissing := missing[:0]
		for _, bucket := range missing {
			var flattened []string
			var contributors []string
			for _, doc := range docs {
				if len(doc.Sections[bucket]) > 0 {
					flattened = append(flattened, doc.Sections[bucket]...)
					contributors = append(contributors, doc.SourceURL)
				}
			}
			entries := dedupeTrimmed(flattened, maxFallbackEntries)
			if len(entries) == 0 {
				stillMissing = append(stillMissing, bucket)
				continue
			}
			monograph.Sections[bucket] = entries
			for _, src := range contributors {
				if src != "" && !seenSources[src] {
					seenSources[src] = true
					monograph.Sources = append(monograph.Sources, src)
				}
			}
		}
		missing = stillMissing
		if len(missing) == 0 {
			return
		}
	}
}

func dedupeTrimmed(entries []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out
}
