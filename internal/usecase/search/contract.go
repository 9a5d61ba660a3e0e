package search

import (
	"context"

	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

// CatalogRepository fetches candidate rows for a compiled predicate.
type CatalogRepository interface {
	Fetch(ctx context.Context, p predicate.Predicate, limit int) ([]catalog.Item, error)
	Explain(p predicate.Predicate, limit int) (string, []any, error)
}

// AliasSource serves the active brand alias map.
type AliasSource interface {
	Current() *brand.AliasMap
	Status() brand.Status
}
