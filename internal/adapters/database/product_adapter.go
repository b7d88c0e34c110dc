package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/dawadex/backend/internal/domain/entities"
	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

var productColumns = []interface{}{
	"id", "brand_name", "strength", "dosage_form", "pack",
	"mrp_inr", "manufacturer", "discontinued", "rxcuis", "salt_signature", "updated_at",
}

// ProductAdapter implements ProductRepository on the products_in and
// product_salts tables
type ProductAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProductAdapter creates a new product adapter
func NewProductAdapter(client *postgres.Client) repositories.ProductRepository {
	return &ProductAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a product with its salts
func (a *ProductAdapter) GetByID(ctx context.Context, id int64) (*entities.Product, error) {
	query, args, err := a.db.Select(productColumns...).
		From("products_in").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	product, err := a.scanProduct(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	salts, err := a.saltsByProductIDs(ctx, []int64{product.ID})
	if err != nil {
		return nil, err
	}
	product.Salts = salts[product.ID]
	return product, nil
}

// ListBySignature retrieves all products carrying the given salt signature
func (a *ProductAdapter) ListBySignature(ctx context.Context, signature string) ([]*entities.Product, error) {
	query, args, err := a.db.Select(productColumns...).
		From("products_in").
		Where(goqu.Ex{"salt_signature": signature}).
		Order(goqu.I("brand_name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryProducts(ctx, query, args)
}

// SaltsBySignature retrieves the position-ordered, name-deduplicated
// ingredient list shared by products with the given signature
func (a *ProductAdapter) SaltsBySignature(ctx context.Context, signature string) ([]entities.Salt, error) {
	query, args, err := a.db.Select("ps.salt_name", "ps.salt_pos").
		From(goqu.T("products_in").As("p")).
		Join(
			goqu.T("product_salts").As("ps"),
			goqu.On(goqu.Ex{"ps.product_id": goqu.I("p.id")}),
		).
		Where(goqu.Ex{"p.salt_signature": signature}).
		Order(goqu.I("ps.salt_pos").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query salts", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var salts []entities.Salt
	for rows.Next() {
		var s entities.Salt
		if err := rows.Scan(&s.Name, &s.Position); err != nil {
			return nil, apperrors.NewInternalError("failed to scan salt", err)
		}
		if _, dup := seen[s.Name]; dup {
			continue
		}
		seen[s.Name] = struct{}{}
		salts = append(salts, s)
	}
	return salts, rows.Err()
}

// ListMissingSignature retrieves products with no signature assigned yet
func (a *ProductAdapter) ListMissingSignature(ctx context.Context, limit int) ([]*entities.Product, error) {
	ds := a.db.Select(productColumns...).
		From("products_in").
		Where(goqu.I("salt_signature").IsNull()).
		Order(goqu.I("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	products, err := a.queryProducts(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	salts, err := a.saltsByProductIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		p.Salts = salts[p.ID]
	}
	return products, nil
}

// UpdateSignature persists the resolved concept codes and signature
func (a *ProductAdapter) UpdateSignature(ctx context.Context, id int64, codes []string, signature *string) error {
	record := goqu.Record{
		"rxcuis":         pq.Array(codes),
		"salt_signature": signature,
		"updated_at":     goqu.L("NOW()"),
	}

	query, args, err := a.db.Update("products_in").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to update product signature", err)
	}
	return nil
}

func (a *ProductAdapter) queryProducts(ctx context.Context, query string, args []interface{}) ([]*entities.Product, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query products", err)
	}
	defer rows.Close()

	var products []*entities.Product
	for rows.Next() {
		product, err := a.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *ProductAdapter) scanProduct(row rowScanner) (*entities.Product, error) {
	product := &entities.Product{}
	var strength, dosageForm, pack, manufacturer, signature sql.NullString
	var mrp sql.NullFloat64
	var codes pq.StringArray

	err := row.Scan(
		&product.ID,
		&product.BrandName,
		&strength,
		&dosageForm,
		&pack,
		&mrp,
		&manufacturer,
		&product.Discontinued,
		&codes,
		&signature,
		&product.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan product", err)
	}

	product.Strength = strength.String
	product.DosageForm = dosageForm.String
	product.Pack = pack.String
	product.Manufacturer = manufacturer.String
	product.RxCUIs = []string(codes)
	if mrp.Valid {
		product.MRPInr = &mrp.Float64
	}
	if signature.Valid {
		product.SaltSignature = &signature.String
	}
	return product, nil
}

func (a *ProductAdapter) saltsByProductIDs(ctx context.Context, ids []int64) (map[int64][]entities.Salt, error) {
	query, args, err := a.db.Select("product_id", "salt_name", "salt_pos").
		From("product_salts").
		Where(goqu.Ex{"product_id": ids}).
		Order(goqu.I("product_id").Asc(), goqu.I("salt_pos").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query product salts", err)
	}
	defer rows.Close()

	out := make(map[int64][]entities.Salt)
	for rows.Next() {
		var pid int64
		var s entities.Salt
		if err := rows.Scan(&pid, &s.Name, &s.Position); err != nil {
			return nil, apperrors.NewInternalError("failed to scan product salt", err)
		}
		out[pid] = append(out[pid], s)
	}
	return out, rows.Err()
}
