package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/dawadex/backend/internal/domain/repositories"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/dawadex/backend/pkg/errors"
)

// ConceptCacheAdapter implements ConceptCacheRepository on the rxnorm_cache
// table
type ConceptCacheAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConceptCacheAdapter creates a new concept cache adapter
func NewConceptCacheAdapter(client *postgres.Client) repositories.ConceptCacheRepository {
	return &ConceptCacheAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get retrieves cached concept codes for a normalized term
func (a *ConceptCacheAdapter) Get(ctx context.Context, termNorm string) ([]string, bool, error) {
	query, args, err := a.db.Select("rxcuis").
		From("rxnorm_cache").
		Where(goqu.Ex{"term_norm": termNorm}).
		ToSQL()
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to build query", err)
	}

	var codes pq.StringArray
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&codes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheUnavailableError("failed to read concept cache", err)
	}
	return []string(codes), true, nil
}

// Put upserts the lookup result keyed by normalized term
func (a *ConceptCacheAdapter) Put(ctx context.Context, termNorm string, codes []string, raw []byte) error {
	record := goqu.Record{
		"term_norm":  termNorm,
		"rxcuis":     pq.Array(codes),
		"raw":        rawOrNull(raw),
		"updated_at": time.Now().UTC(),
	}

	query, args, err := a.db.Insert("rxnorm_cache").
		Rows(record).
		OnConflict(goqu.DoUpdate("term_norm", goqu.Record{
			"rxcuis":     pq.Array(codes),
			"raw":        rawOrNull(raw),
			"updated_at": time.Now().UTC(),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewCacheUnavailableError("failed to write concept cache", err)
	}
	return nil
}

// UnresolvedTermAdapter implements UnresolvedTermRepository on the
// rxnorm_errors table
type UnresolvedTermAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUnresolvedTermAdapter creates a new unresolved term adapter
func NewUnresolvedTermAdapter(client *postgres.Client) repositories.UnresolvedTermRepository {
	return &UnresolvedTermAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Record upserts a failure row for the normalized term
func (a *UnresolvedTermAdapter) Record(ctx context.Context, termNorm string, reason string) error {
	query, args, err := a.db.Insert("rxnorm_errors").
		Rows(goqu.Record{
			"term_norm":  termNorm,
			"reason":     reason,
			"updated_at": time.Now().UTC(),
		}).
		OnConflict(goqu.DoUpdate("term_norm", goqu.Record{
			"reason":     reason,
			"updated_at": time.Now().UTC(),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record unresolved term", err)
	}
	return nil
}

func rawOrNull(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
