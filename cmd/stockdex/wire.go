package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/stockdex/internal/config"
	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/stockdex/internal/db/redis"
	"github.com/kailas-cloud/stockdex/internal/db/sqlite"
	"github.com/kailas-cloud/stockdex/internal/domain/search/compile"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
)

// catalogSchema maps the configured physical columns onto logical fields.
func catalogSchema(c config.CatalogConfig) db.Schema {
	return db.Schema{
		Table: c.Table,
		Columns: map[predicate.Field]string{
			predicate.FieldName:        c.Name,
			predicate.FieldQty:         c.Qty,
			predicate.FieldPrice:       c.Price,
			predicate.FieldCategory:    c.Category,
			predicate.FieldAuthor:      c.Author,
			predicate.FieldTranslator:  c.Translator,
			predicate.FieldPublisher:   c.Publisher,
			predicate.FieldGroup:       c.Group,
			predicate.FieldGroupFamily: c.GroupFamily,
			predicate.FieldSystemCode:  c.SystemCode,
		},
	}
}

func searchConfig(cfg config.Config, store *sqlite.Store) searchuc.Config {
	rules := make([]compile.ExpansionRule, len(cfg.Search.CategoryExpansion))
	for i, r := range cfg.Search.CategoryExpansion {
		rules[i] = compile.ExpansionRule{Category: r.Category, Keywords: r.Keywords, ExpandTo: r.ExpandTo}
	}
	return searchuc.Config{
		PrimaryWindow:  cfg.Search.PrimaryWindow,
		FallbackWindow: cfg.Search.Fallback.Window,
		FallbackKeep:   cfg.Search.Fallback.Keep,
		MinSimilarity:  cfg.Search.Fallback.MinSimilarity,
		Weights:        searchuc.WeightsFromMap(cfg.Search.Scoring.Weights),
		ExpansionRules: rules,
		Catalog: result.CatalogInfo{
			Driver: cfg.Database.Driver,
			Path:   store.Path(),
			Table:  store.Table(),
		},
	}
}

// buildCacheStore returns nil when the result cache is disabled.
func buildCacheStore(c config.CacheConfig) (db.KVStore, error) {
	switch c.Driver {
	case "none":
		return nil, nil
	case "memory":
		return memory.NewStore(c.Size), nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: c.Addrs, Password: c.Password})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), 5*time.Second); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", c.Driver)
	}
}
