package stockdex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/db/sqlite"
	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/search/compile"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	"github.com/kailas-cloud/stockdex/internal/logger"
	"github.com/kailas-cloud/stockdex/internal/repository/aliases"
	"github.com/kailas-cloud/stockdex/internal/repository/catalog"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
)

// Client is the stockdex SDK entry point. It searches a local catalog file
// in-process and is safe for concurrent use.
type Client struct {
	store  *sqlite.Store
	loader *aliases.Loader
	search *searchuc.Service
	cfg    *clientConfig
}

// Open opens the catalog at path read-only, verifies its schema and loads
// brand aliases. Failures wrap ErrConfiguration.
func Open(ctx context.Context, path string, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("stockdex: %w: %w", domain.ErrConfiguration, err)
	}

	store, err := sqlite.NewStore(ctx, sqlite.Config{
		Driver:       cfg.driver,
		Path:         path,
		Schema:       cfg.schema(),
		QueryTimeout: cfg.queryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("stockdex: %w: open catalog: %w", domain.ErrConfiguration, err)
	}

	loader, err := aliases.Bootstrap(cfg.aliasesPath, cfg.aliasesRequired, cfg.logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("stockdex: %w", err)
	}

	repo := catalog.New(store, store.Schema())
	svc := searchuc.New(repo, loader.Registry(), cfg.searchConfig(store))

	return &Client{store: store, loader: loader, search: svc, cfg: cfg}, nil
}

// Search runs an intent against the catalog.
func (c *Client) Search(ctx context.Context, in Intent) (*Envelope, error) {
	env, err := c.search.Search(c.withLogger(ctx), in)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return env, nil
}

// Explain compiles an intent and renders its SQL without running it.
func (c *Client) Explain(ctx context.Context, in Intent) (*Explanation, error) {
	ex, err := c.search.Explain(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return ex, nil
}

// Query starts a fluent search.
func (c *Client) Query() *Query {
	return &Query{client: c, in: NewIntent()}
}

// ReloadAliases re-reads the alias file. On failure the previous table stays active.
func (c *Client) ReloadAliases(ctx context.Context) (AliasStatus, error) {
	st, err := c.loader.Reload(ctx)
	if err != nil {
		return st, fmt.Errorf("reload aliases: %w", err)
	}
	return st, nil
}

// Aliases reports the active alias table.
func (c *Client) Aliases() AliasStatus {
	return c.loader.Registry().Status()
}

// ExpandBrand returns the alias group of term, or term alone.
func (c *Client) ExpandBrand(term string) []string {
	return c.loader.Registry().Expand(term)
}

// Ping checks that the catalog is readable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the catalog connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, c.cfg.logger)
}

func (cfg *clientConfig) schema() db.Schema {
	cols := cfg.columns
	return db.Schema{
		Table: cfg.table,
		Columns: map[predicate.Field]string{
			predicate.FieldName:        cols.Name,
			predicate.FieldQty:         cols.Qty,
			predicate.FieldPrice:       cols.Price,
			predicate.FieldCategory:    cols.Category,
			predicate.FieldAuthor:      cols.Author,
			predicate.FieldTranslator:  cols.Translator,
			predicate.FieldPublisher:   cols.Publisher,
			predicate.FieldGroup:       cols.Group,
			predicate.FieldGroupFamily: cols.GroupFamily,
			predicate.FieldSystemCode:  cols.SystemCode,
		},
	}
}

func (cfg *clientConfig) searchConfig(store *sqlite.Store) searchuc.Config {
	sc := searchuc.DefaultConfig()
	if cfg.primaryWindow > 0 {
		sc.PrimaryWindow = cfg.primaryWindow
	}
	if cfg.fallbackWindow > 0 {
		sc.FallbackWindow = cfg.fallbackWindow
	}
	if cfg.fallbackKeep > 0 {
		sc.FallbackKeep = cfg.fallbackKeep
	}
	if cfg.minSimilarity != nil {
		sc.MinSimilarity = *cfg.minSimilarity
	}
	if cfg.weights != nil {
		sc.Weights = searchuc.WeightsFromMap(cfg.weights)
	}
	if cfg.expansion != nil {
		sc.ExpansionRules = make([]compile.ExpansionRule, len(cfg.expansion))
		for i, r := range cfg.expansion {
			sc.ExpansionRules[i] = compile.ExpansionRule{Category: r.Category, Keywords: r.Keywords, ExpandTo: r.ExpandTo}
		}
	}
	sc.Catalog = result.CatalogInfo{Driver: cfg.driver, Path: store.Path(), Table: store.Table()}
	return sc
}
