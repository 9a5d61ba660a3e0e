package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain"
	domcat "github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

// store is the consumer interface for catalog reads (ISP).
type store interface {
	SelectCatalog(ctx context.Context, q *db.SelectQuery) ([]domcat.Item, error)
}

// Repo implements usecase/search.CatalogRepository.
type Repo struct {
	store  store
	schema db.Schema
}

// New creates a catalog repository over a store opened with schema.
func New(s store, schema db.Schema) *Repo {
	return &Repo{store: s, schema: schema}
}

// Fetch returns up to limit rows matching p, in store order.
func (r *Repo) Fetch(ctx context.Context, p predicate.Predicate, limit int) ([]domcat.Item, error) {
	q, err := r.build(p, limit)
	if err != nil {
		return nil, err
	}

	items, err := r.store.SelectCatalog(ctx, q)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return items, nil
}

// Explain renders the SQL and bound arguments Fetch would run.
func (r *Repo) Explain(p predicate.Predicate, limit int) (string, []any, error) {
	q, err := r.build(p, limit)
	if err != nil {
		return "", nil, err
	}
	return q.SQL, q.Args, nil
}

func (r *Repo) build(p predicate.Predicate, limit int) (*db.SelectQuery, error) {
	q, err := db.NewSelect(r.schema).Where(p).Limit(limit).Build()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", domain.ErrConfiguration, err)
	}
	return q, nil
}

// mapStoreError translates store failures into domain errors.
// Cancellation by the caller is passed through unchanged.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, db.ErrTimeout):
		return fmt.Errorf("%w: %w", domain.ErrStoreTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("fetch catalog: %w", err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
}
