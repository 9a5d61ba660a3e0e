package stockdex

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/config"
)

// Columns maps logical catalog fields to physical column names.
type Columns struct {
	Name        string
	Qty         string
	Price       string
	Category    string
	Author      string
	Translator  string
	Publisher   string
	Group       string
	GroupFamily string
	SystemCode  string
}

// DefaultColumns returns the column names produced by the catalog ETL.
func DefaultColumns() Columns {
	return Columns{
		Name:        config.DefaultNameCol,
		Qty:         config.DefaultQtyCol,
		Price:       config.DefaultPriceCol,
		Category:    config.DefaultCategoryCol,
		Author:      config.DefaultAuthorCol,
		Translator:  config.DefaultTranslatorCol,
		Publisher:   config.DefaultPublisherCol,
		Group:       config.DefaultGroupCol,
		GroupFamily: config.DefaultGroupFamilyCol,
		SystemCode:  config.DefaultSystemCodeCol,
	}
}

// ExpansionRule widens a single category when the query mentions a keyword.
type ExpansionRule struct {
	Category string
	Keywords []string
	ExpandTo []string
}

// Option configures the client.
type Option func(*clientConfig)

type clientConfig struct {
	driver          string
	table           string
	columns         Columns
	aliasesPath     string
	aliasesRequired bool
	queryTimeout    time.Duration
	primaryWindow   int
	fallbackWindow  int
	fallbackKeep    int
	minSimilarity   *float64
	weights         map[string]float64
	expansion       []ExpansionRule
	logger          *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		driver:       "sqlite",
		table:        config.DefaultTable,
		columns:      DefaultColumns(),
		queryTimeout: 5 * time.Second,
		logger:       zap.NewNop(),
	}
}

// WithDriver selects the SQL driver: "sqlite" (pure Go, default) or "sqlite3" (cgo).
func WithDriver(driver string) Option {
	return func(c *clientConfig) { c.driver = driver }
}

// WithTable sets the catalog table name.
func WithTable(table string) Option {
	return func(c *clientConfig) { c.table = table }
}

// WithColumns overrides the physical column names.
func WithColumns(cols Columns) Option {
	return func(c *clientConfig) { c.columns = cols }
}

// WithAliases loads brand aliases from a JSON file. A missing or invalid
// file fails Open.
func WithAliases(path string) Option {
	return func(c *clientConfig) {
		c.aliasesPath = path
		c.aliasesRequired = true
	}
}

// WithOptionalAliases loads brand aliases when the file is usable and
// starts with an empty table otherwise.
func WithOptionalAliases(path string) Option {
	return func(c *clientConfig) {
		c.aliasesPath = path
		c.aliasesRequired = false
	}
}

// WithQueryTimeout bounds each catalog read.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.queryTimeout = d }
}

// WithWindows sets the primary fetch cap, the fallback fetch cap and how
// many fuzzy matches the fallback keeps.
func WithWindows(primary, fallback, keep int) Option {
	return func(c *clientConfig) {
		c.primaryWindow = primary
		c.fallbackWindow = fallback
		c.fallbackKeep = keep
	}
}

// WithMinSimilarity sets the fuzzy fallback cutoff in (0, 1].
func WithMinSimilarity(s float64) Option {
	return func(c *clientConfig) { c.minSimilarity = &s }
}

// WithWeights overrides relevance weights keyed by name, groupfamily,
// author, translator, publisher and group. Each weight must be in [0, 1].
func WithWeights(w map[string]float64) Option {
	return func(c *clientConfig) { c.weights = w }
}

// WithCategoryExpansion replaces the category widening rules.
func WithCategoryExpansion(rules ...ExpansionRule) Option {
	return func(c *clientConfig) { c.expansion = rules }
}

// WithLogger sets the logger for alias loading and pipeline debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// validate applies the checks the YAML config applies to the same settings.
func (c *clientConfig) validate() error {
	if c.minSimilarity != nil {
		if err := config.ValidateMinSimilarity(*c.minSimilarity); err != nil {
			return fmt.Errorf("min similarity: %w", err)
		}
	}
	if err := config.ValidateWeights(c.weights); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	return nil
}
