package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

const alternativesCacheTTL = 5 * time.Minute

type cachedAlternatives struct {
	fetchedAt time.Time
	result    *entities.Alternatives
}

// AlternativesService joins the three datasets on the salt signature:
// branded products, generic-scheme listings and the price-ceiling register.
// Results are held in a short-lived in-process cache since the underlying
// rows change on the order of weeks, not seconds.
type AlternativesService struct {
	products repositories.ProductRepository
	generics repositories.GenericListingRepository
	ceilings repositories.PriceCeilingRepository

	mu        sync.RWMutex
	cache     map[string]cachedAlternatives
	lastSweep time.Time
	now       func() time.Time
}

func NewAlternativesService(
	products repositories.ProductRepository,
	generics repositories.GenericListingRepository,
	ceilings repositories.PriceCeilingRepository,
) *AlternativesService {
	return &AlternativesService{
		products: products,
		generics: generics,
		ceilings: ceilings,
		cache:    make(map[string]cachedAlternatives),
		now:      time.Now,
	}
}

// Alternatives returns the signature-joined view with its price summary
func (s *AlternativesService) Alternatives(ctx context.Context, signature string) (*entities.Alternatives, error) {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return nil, apperrors.NewValidationError("signature must not be blank")
	}

	s.mu.RLock()
	entry, ok := s.cache[signature]
	s.mu.RUnlock()
	if ok {
		if s.now().Sub(entry.fetchedAt) <= alternativesCacheTTL {
			return entry.result, nil
		}
		s.mu.Lock()
		delete(s.cache, signature)
		s.mu.Unlock()
	}

	brands, err := s.products.ListBySignature(ctx, signature)
	if err != nil {
		return nil, err
	}
	listings, err := s.generics.ListBySignature(ctx, signature)
	if err != nil {
		return nil, err
	}
	ceiling, err := s.ceilingFor(ctx, signature)
	if err != nil {
		return nil, err
	}

	var brandPrices, genericPrices []float64
	for _, p := range brands {
		if p.MRPInr != nil {
			brandPrices = append(brandPrices, *p.MRPInr)
		}
	}
	for _, l := range listings {
		if l.MRPInr != nil {
			genericPrices = append(genericPrices, *l.MRPInr)
		}
	}

	result := &entities.Alternatives{
		Signature:       signature,
		Brands:          brands,
		GenericListings: listings,
		CeilingPrice:    ceiling,
		PriceSummary:    entities.NewPriceSummary(brandPrices, genericPrices, ceiling),
	}

	now := s.now()
	s.mu.Lock()
	s.cache[signature] = cachedAlternatives{fetchedAt: now, result: result}
	if now.Sub(s.lastSweep) > alternativesCacheTTL {
		for key, cached := range s.cache {
			if now.Sub(cached.fetchedAt) > alternativesCacheTTL {
				delete(s.cache, key)
			}
		}
		s.lastSweep = now
	}
	s.mu.Unlock()
	return result, nil
}

// ceilingFor prefers exact-signature ceiling rows. Most ceiling rows carry
// no signature, so when none match, unassigned rows whose generic-name
// token set equals the signature's salt-name set are matched instead, and
// the minimum price among them wins.
func (s *AlternativesService) ceilingFor(ctx context.Context, signature string) (*float64, error) {
	ceiling, err := s.ceilings.MinBySignature(ctx, signature)
	if err != nil {
		return nil, err
	}
	if ceiling != nil {
		return ceiling, nil
	}

	salts, err := s.products.SaltsBySignature(ctx, signature)
	if err != nil {
		return nil, err
	}
	if len(salts) == 0 {
		return nil, nil
	}
	saltSet := make(map[string]bool, len(salts))
	for _, salt := range salts {
		if name := strings.ToLower(strings.TrimSpace(salt.Name)); name != "" {
			saltSet[name] = true
		}
	}

	unassigned, err := s.ceilings.ListUnassigned(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("signature", signature).
			Msg("failed to list unassigned ceilings, skipping token match")
		return nil, nil
	}

	var best *float64
	for _, row := range unassigned {
		if row.CeilingPriceInr == nil {
			continue
		}
		if !tokenSetsEqual(saltSet, genericNameTokens(row.GenericName)) {
			continue
		}
		if best == nil || *row.CeilingPriceInr < *best {
			price := *row.CeilingPriceInr
			best = &price
		}
	}
	return best, nil
}

// genericNameTokens splits a ceiling register generic name into its
// ingredient tokens. The register joins combination products with "+", ","
// or "|" inconsistently.
func genericNameTokens(name string) map[string]bool {
	tokens := make(map[string]bool)
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '+' || r == ',' || r == '|'
	})
	for _, part := range parts {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			tokens[part] = true
		}
	}
	return tokens
}

func tokenSetsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for token := range a {
		if !b[token] {
			return false
		}
	}
	return true
}
