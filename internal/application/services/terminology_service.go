package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dawadex/backend/internal/domain/providers"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	apperrors "github.com/dawadex/backend/pkg/errors"
	"github.com/dawadex/backend/pkg/utils"
)

// TerminologyService resolves free-text ingredient names to concept codes.
// Every term passes through the persistent lookup cache first; external
// calls happen only on a miss, with one alias retry for names the
// terminology service knows under a different spelling. Successful
// resolutions land in the cache and are never fetched again; empty
// resolutions are recorded in the unresolved-term log for offline review
// and will retry online on the next lookup.
type TerminologyService struct {
	provider   providers.TerminologyProvider
	cache      repositories.ConceptCacheRepository
	unresolved repositories.UnresolvedTermRepository
}

func NewTerminologyService(
	provider providers.TerminologyProvider,
	cache repositories.ConceptCacheRepository,
	unresolved repositories.UnresolvedTermRepository,
) *TerminologyService {
	return &TerminologyService{
		provider:   provider,
		cache:      cache,
		unresolved: unresolved,
	}
}

// Resolve returns the concept codes for a term, in provider response order
// deduplicated by first occurrence. A nil slice with a nil error means the
// term resolved to nothing; provider failures are recorded and collapse
// into the same outcome.
func (s *TerminologyService) Resolve(ctx context.Context, term string) ([]string, error) {
	logger := observability.LoggerFromContext(ctx)

	termNorm := utils.NormalizeTerm(term)
	if termNorm == "" {
		return nil, apperrors.NewValidationError("term must not be blank")
	}

	if s.cache != nil {
		codes, found, err := s.cache.Get(ctx, termNorm)
		if err != nil {
			logger.Debug().Err(err).Str("term", termNorm).
				Msg("concept cache read failed, treating as miss")
		} else if found {
			return codes, nil
		}
	}

	// The original spelling goes over the wire; approximate matching
	// handles casing and stray whitespace better than we can
	codes, raw, err := s.provider.ApproximateMatch(ctx, strings.TrimSpace(term))
	if err != nil {
		s.recordUnresolved(ctx, termNorm, fmt.Sprintf("http_error:%v", err))
		logger.Warn().Err(err).Str("term", termNorm).Msg("terminology lookup failed")
		return nil, nil
	}

	if len(codes) == 0 {
		if alias, ok := utils.AliasFor(termNorm); ok {
			codes, raw, err = s.provider.ApproximateMatch(ctx, alias)
			if err != nil {
				s.recordUnresolved(ctx, termNorm, fmt.Sprintf("http_error:%v", err))
				logger.Warn().Err(err).Str("term", termNorm).Str("alias", alias).
					Msg("terminology alias lookup failed")
				return nil, nil
			}
		}
	}

	if len(codes) == 0 {
		s.recordUnresolved(ctx, termNorm, "no_rxcui")
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, termNorm, codes, raw); err != nil {
			logger.Warn().Err(err).Str("term", termNorm).
				Msg("failed to persist concept resolution")
		}
	}
	return codes, nil
}

func (s *TerminologyService) recordUnresolved(ctx context.Context, termNorm, reason string) {
	if s.unresolved == nil {
		return
	}
	if err := s.unresolved.Record(ctx, termNorm, reason); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("term", termNorm).
			Msg("failed to record unresolved term")
	}
}
