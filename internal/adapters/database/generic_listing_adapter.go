package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// GenericListingAdapter implements GenericListingRepository on the
// janaushadhi_products table
type GenericListingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewGenericListingAdapter creates a new generic listing adapter
func NewGenericListingAdapter(client *postgres.Client) repositories.GenericListingRepository {
	return &GenericListingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListBySignature retrieves listings carrying the given salt signature
func (a *GenericListingAdapter) ListBySignature(ctx context.Context, signature string) ([]*entities.GenericListing, error) {
	query, args, err := a.db.Select(
		"id", "generic_name", "strength", "dosage_form", "pack", "mrp_inr", "salt_signature",
	).
		From("janaushadhi_products").
		Where(goqu.Ex{"salt_signature": signature}).
		Order(goqu.I("mrp_inr").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query generic listings", err)
	}
	defer rows.Close()

	var listings []*entities.GenericListing
	for rows.Next() {
		listing := &entities.GenericListing{}
		var strength, dosageForm, pack, sig sql.NullString
		var mrp sql.NullFloat64

		err := rows.Scan(
			&listing.ID,
			&listing.GenericName,
			&strength,
			&dosageForm,
			&pack,
			&mrp,
			&sig,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan generic listing", err)
		}

		listing.Strength = strength.String
		listing.DosageForm = dosageForm.String
		listing.Pack = pack.String
		if mrp.Valid {
			listing.MRPInr = &mrp.Float64
		}
		if sig.Valid {
			listing.SaltSignature = &sig.String
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}
