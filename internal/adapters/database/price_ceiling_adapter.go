package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// PriceCeilingAdapter implements PriceCeilingRepository on the nppa_ceilings
// table
type PriceCeilingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPriceCeilingAdapter creates a new price ceiling adapter
func NewPriceCeilingAdapter(client *postgres.Client) repositories.PriceCeilingRepository {
	return &PriceCeilingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// MinBySignature returns the minimum ceiling price among exact signature
// matches, or nil when none exists
func (a *PriceCeilingAdapter) MinBySignature(ctx context.Context, signature string) (*float64, error) {
	query, args, err := a.db.Select(goqu.MIN("ceiling_price_inr")).
		From("nppa_ceilings").
		Where(goqu.Ex{"salt_signature": signature}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var min sql.NullFloat64
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&min)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !min.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query ceiling price", err)
	}
	return &min.Float64, nil
}

// ListUnassigned retrieves ceiling records with no signature assigned
func (a *PriceCeilingAdapter) ListUnassigned(ctx context.Context) ([]*entities.PriceCeiling, error) {
	query, args, err := a.db.Select(
		"id", "generic_name", "strength", "dosage_form", "ceiling_price_inr", "salt_signature",
	).
		From("nppa_ceilings").
		Where(goqu.I("salt_signature").IsNull()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query unassigned ceilings", err)
	}
	defer rows.Close()

	var ceilings []*entities.PriceCeiling
	for rows.Next() {
		ceiling := &entities.PriceCeiling{}
		var strength, dosageForm, sig sql.NullString
		var price sql.NullFloat64

		err := rows.Scan(
			&ceiling.ID,
			&ceiling.GenericName,
			&strength,
			&dosageForm,
			&price,
			&sig,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ceiling record", err)
		}

		ceiling.Strength = strength.String
		ceiling.DosageForm = dosageForm.String
		if price.Valid {
			ceiling.CeilingPriceInr = &price.Float64
		}
		if sig.Valid {
			ceiling.SaltSignature = &sig.String
		}
		ceilings = append(ceilings, ceiling)
	}
	return ceilings, rows.Err()
}
