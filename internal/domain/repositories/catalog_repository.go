package repositories

import (
	"context"

	"github.com/dawadex/backend/internal/domain/entities"
)

// ProductRepository defines access to the branded-product catalog
type ProductRepository interface {
	// GetByID retrieves a product with its salts
	GetByID(ctx context.Context, id int64) (*entities.Product, error)

	// ListBySignature retrieves all products carrying the given salt signature
	ListBySignature(ctx context.Context, signature string) ([]*entities.Product, error)

	// SaltsBySignature retrieves the position-ordered, name-deduplicated
	// ingredient list shared by products with the given signature
	SaltsBySignature(ctx context.Context, signature string) ([]entities.Salt, error)

	// ListMissingSignature retrieves products (with salts) that have no
	// signature assigned yet, for the offline backfill
	ListMissingSignature(ctx context.Context, limit int) ([]*entities.Product, error)

	// UpdateSignature persists the resolved concept codes and signature for
	// a product. A nil signature marks the product as unresolvable.
	UpdateSignature(ctx context.Context, id int64, codes []string, signature *string) error
}

// GenericListingRepository defines access to the government generic scheme
type GenericListingRepository interface {
	// ListBySignature retrieves listings carrying the given salt signature
	ListBySignature(ctx context.Context, signature string) ([]*entities.GenericListing, error)
}

// PriceCeilingRepository defines access to the price-ceiling register
type PriceCeilingRepository interface {
	// MinBySignature returns the minimum ceiling price among records with an
	// exact signature match, or nil when none exists
	MinBySignature(ctx context.Context, signature string) (*float64, error)

	// ListUnassigned retrieves ceiling records with no signature assigned,
	// for generic-name token matching
	ListUnassigned(ctx context.Context) ([]*entities.PriceCeiling, error)
}
