package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex"
	"github.com/kailas-cloud/stockdex/internal/config"
	logpkg "github.com/kailas-cloud/stockdex/internal/logger"
)

var (
	envName     string
	dbPath      string
	aliasesPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "stockdexctl",
	Short: "Query a stockdex catalog from the command line",
	Long: `stockdexctl runs structured searches against a local catalog file
using the same pipeline and configuration as the stockdex API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", config.GetEnv(), "config environment (local, prod)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "catalog file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&aliasesPath, "aliases", "", "brand alias file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openClient loads config for the selected environment and opens the catalog.
func openClient(ctx context.Context) (*stockdex.Client, error) {
	cfg, err := config.Load(envName)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if aliasesPath != "" {
		cfg.Aliases.Path = aliasesPath
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = logpkg.NewLogger("local", "debug")
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	client, err := stockdex.Open(ctx, cfg.Database.Path, clientOptions(cfg, logger)...)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return client, nil
}

func clientOptions(cfg config.Config, logger *zap.Logger) []stockdex.Option {
	c := cfg.Database.Catalog
	rules := make([]stockdex.ExpansionRule, len(cfg.Search.CategoryExpansion))
	for i, r := range cfg.Search.CategoryExpansion {
		rules[i] = stockdex.ExpansionRule{Category: r.Category, Keywords: r.Keywords, ExpandTo: r.ExpandTo}
	}

	opts := []stockdex.Option{
		stockdex.WithDriver(cfg.Database.Driver),
		stockdex.WithTable(c.Table),
		stockdex.WithColumns(stockdex.Columns{
			Name:        c.Name,
			Qty:         c.Qty,
			Price:       c.Price,
			Category:    c.Category,
			Author:      c.Author,
			Translator:  c.Translator,
			Publisher:   c.Publisher,
			Group:       c.Group,
			GroupFamily: c.GroupFamily,
			SystemCode:  c.SystemCode,
		}),
		stockdex.WithQueryTimeout(time.Duration(cfg.Database.QueryTimeoutSec) * time.Second),
		stockdex.WithWindows(cfg.Search.PrimaryWindow, cfg.Search.Fallback.Window, cfg.Search.Fallback.Keep),
		stockdex.WithMinSimilarity(cfg.Search.Fallback.MinSimilarity),
		stockdex.WithWeights(cfg.Search.Scoring.Weights),
		stockdex.WithCategoryExpansion(rules...),
		stockdex.WithLogger(logger),
	}
	if cfg.Aliases.IsRequired() {
		opts = append(opts, stockdex.WithAliases(cfg.Aliases.Path))
	} else {
		opts = append(opts, stockdex.WithOptionalAliases(cfg.Aliases.Path))
	}
	return opts
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
