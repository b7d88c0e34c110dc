package services

import (
	"context"
	"sort"
	"strings"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/observability"
)

const backfillBatchSize = 100

// ConceptResolver resolves an ingredient name to concept codes. A nil slice
// with a nil error means the name resolved to nothing.
type ConceptResolver interface {
	Resolve(ctx context.Context, term string) ([]string, error)
}

// BackfillSummary reports one backfill run
type BackfillSummary struct {
	TotalProcessed int
	SignedCount    int
	UnsignedCount  int
}

// SignatureService derives salt signatures, the composition key that joins
// the catalog, generic-scheme and ceiling datasets. A signature is the
// sorted, deduplicated set of each ingredient's primary concept code joined
// with "-"; ingredient order within a product never affects it.
type SignatureService struct {
	resolver ConceptResolver
	products repositories.ProductRepository
}

func NewSignatureService(resolver ConceptResolver, products repositories.ProductRepository) *SignatureService {
	return &SignatureService{resolver: resolver, products: products}
}

// Build resolves each salt and derives the signature. Salts that resolve to
// nothing are skipped; the signature is empty only when every salt failed
// to resolve.
func (s *SignatureService) Build(ctx context.Context, salts []entities.Salt) (codes []string, signature string, err error) {
	seen := make(map[string]bool)
	for _, salt := range salts {
		saltCodes, err := s.resolver.Resolve(ctx, salt.Name)
		if err != nil {
			return nil, "", err
		}
		if len(saltCodes) == 0 {
			continue
		}
		primary := saltCodes[0]
		if !seen[primary] {
			seen[primary] = true
			codes = append(codes, primary)
		}
	}

	if len(codes) == 0 {
		return nil, "", nil
	}
	sort.Strings(codes)
	return codes, strings.Join(codes, "-"), nil
}

// BackfillProducts assigns signatures to every product that lacks one,
// batch by batch. Products whose salts all fail to resolve keep a nil
// signature; they are attempted once per run, not retried within it.
func (s *SignatureService) BackfillProducts(ctx context.Context) (*BackfillSummary, error) {
	logger := observability.LoggerFromContext(ctx)
	summary := &BackfillSummary{}
	attempted := make(map[int64]bool)

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		products, err := s.products.ListMissingSignature(ctx, backfillBatchSize)
		if err != nil {
			return summary, err
		}

		// Unresolvable products stay signature-less, so a batch made up
		// entirely of rows we already attempted means we are done
		progressed := false
		for _, product := range products {
			if attempted[product.ID] {
				continue
			}
			attempted[product.ID] = true
			progressed = true
			summary.TotalProcessed++

			codes, signature, err := s.Build(ctx, product.Salts)
			if err != nil {
				return summary, err
			}

			var sigPtr *string
			if signature != "" {
				sigPtr = &signature
				summary.SignedCount++
			} else {
				summary.UnsignedCount++
				logger.Info().Int64("product_id", product.ID).Str("brand", product.BrandName).
					Msg("no salt resolved, leaving product unsigned")
			}
			if err := s.products.UpdateSignature(ctx, product.ID, codes, sigPtr); err != nil {
				return summary, err
			}
		}

		if len(products) == 0 || !progressed {
			break
		}
	}

	logger.Info().
		Int("processed", summary.TotalProcessed).
		Int("signed", summary.SignedCount).
		Int("unsigned", summary.UnsignedCount).
		Msg("signature backfill finished")
	return summary, nil
}
