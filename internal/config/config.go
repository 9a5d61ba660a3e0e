package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the stockdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Aliases  AliasesConfig  `yaml:"aliases"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds catalog store settings.
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // sqlite (pure Go), sqlite3 (cgo) (default: sqlite)
	Path             string        `yaml:"path"`
	ReadinessTimeout int           `yaml:"readiness_timeout_sec"`
	QueryTimeoutSec  int           `yaml:"query_timeout_sec"`
	Catalog          CatalogConfig `yaml:"catalog"`
}

// CatalogConfig maps logical catalog fields to physical column names.
type CatalogConfig struct {
	Table       string `yaml:"table"`
	Name        string `yaml:"name"`
	Qty         string `yaml:"qty"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Author      string `yaml:"author"`
	Translator  string `yaml:"translator"`
	Publisher   string `yaml:"publisher"`
	Group       string `yaml:"group"`
	GroupFamily string `yaml:"groupfamily"`
	SystemCode  string `yaml:"system_code"`
}

// AliasesConfig holds brand alias map settings.
type AliasesConfig struct {
	Path     string `yaml:"path"`
	Required *bool  `yaml:"required"` // default: true
	Watch    bool   `yaml:"watch"`
}

// IsRequired reports whether a missing alias file fails startup.
func (a AliasesConfig) IsRequired() bool {
	return a.Required == nil || *a.Required
}

// SearchConfig holds pipeline tuning.
type SearchConfig struct {
	PrimaryWindow     int                     `yaml:"primary_window"`
	Fallback          FallbackConfig          `yaml:"fallback"`
	Scoring           ScoringConfig           `yaml:"scoring"`
	CategoryExpansion []CategoryExpansionRule `yaml:"category_expansion"`
}

// FallbackConfig holds fuzzy fallback settings.
type FallbackConfig struct {
	Window        int     `yaml:"window"`
	Keep          int     `yaml:"keep"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// ScoringConfig holds per-field relevance weights.
type ScoringConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// CategoryExpansionRule widens a single category when the query mentions a keyword.
type CategoryExpansionRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	ExpandTo []string `yaml:"expand_to"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Driver   string   `yaml:"driver"` // none, memory, redis (default: none)
	TTLSec   int      `yaml:"ttl_sec"`
	Size     int      `yaml:"size"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	Prefix   string   `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expands env variables, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Default catalog column names, as produced by the catalog ETL.
const (
	DefaultTable          = "products"
	DefaultNameCol        = "\u0646\u0627\u0645 \u0643\u062a\u0627\u0628"
	DefaultQtyCol         = "\u062a\u0639\u062f\u0627\u062f"
	DefaultPriceCol       = "\u067e\u0634\u062a\u200c\u062c\u0644\u062f"
	DefaultCategoryCol    = "\u0645\u0634\u062e\u0635\u0647 4"
	DefaultAuthorCol      = "\u0645\u0648\u0644\u0641"
	DefaultTranslatorCol  = "\u0645\u062a\u0631\u062c\u0645"
	DefaultPublisherCol   = "\u0646\u0627\u0634\u0631"
	DefaultGroupCol       = "\u06af\u0631\u0648\u0647"
	DefaultGroupFamilyCol = "GroupFamily"
	DefaultSystemCodeCol  = "\u0643\u062f\u0633\u064a\u0633\u062a\u0645"
)

// DefaultWeights are the relevance weights per display field.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"name":        0.95,
		"author":      0.75,
		"translator":  0.65,
		"publisher":   0.55,
		"groupfamily": 0.90,
		"group":       0.50,
	}
}

// DefaultCategoryExpansion widens stationery to luxury pens for pen-like queries.
func DefaultCategoryExpansion() []CategoryExpansionRule {
	return []CategoryExpansionRule{{
		Category: "s",
		Keywords: []string{
			"خودکار",
			"خودنویس",
			"روان نویس",
			"هدیه",
			"قلم",
			"نفیس",
			"لاکچری",
		},
		ExpandTo: []string{"s", "l"},
	}}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.QueryTimeoutSec <= 0 {
		c.Database.QueryTimeoutSec = 5
	}
	c.Database.Catalog.applyDefaults()
	if c.Search.PrimaryWindow <= 0 {
		c.Search.PrimaryWindow = 1200
	}
	if c.Search.Fallback.Window <= 0 {
		c.Search.Fallback.Window = 2500
	}
	if c.Search.Fallback.Keep <= 0 {
		c.Search.Fallback.Keep = 1200
	}
	if c.Search.Fallback.MinSimilarity <= 0 {
		c.Search.Fallback.MinSimilarity = 0.72
	}
	weights := DefaultWeights()
	for k, v := range c.Search.Scoring.Weights {
		weights[k] = v
	}
	c.Search.Scoring.Weights = weights
	if c.Search.CategoryExpansion == nil {
		c.Search.CategoryExpansion = DefaultCategoryExpansion()
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "stockdex:"
	}
}

func (c *CatalogConfig) applyDefaults() {
	set := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	set(&c.Table, DefaultTable)
	set(&c.Name, DefaultNameCol)
	set(&c.Qty, DefaultQtyCol)
	set(&c.Price, DefaultPriceCol)
	set(&c.Category, DefaultCategoryCol)
	set(&c.Author, DefaultAuthorCol)
	set(&c.Translator, DefaultTranslatorCol)
	set(&c.Publisher, DefaultPublisherCol)
	set(&c.Group, DefaultGroupCol)
	set(&c.GroupFamily, DefaultGroupFamilyCol)
	set(&c.SystemCode, DefaultSystemCodeCol)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"sqlite3\", got %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Aliases.IsRequired() && c.Aliases.Path == "" {
		return fmt.Errorf("aliases.path is required when aliases.required is true")
	}
	if err := ValidateMinSimilarity(c.Search.Fallback.MinSimilarity); err != nil {
		return fmt.Errorf("search.fallback.min_similarity: %w", err)
	}
	if c.Search.Fallback.Keep > c.Search.Fallback.Window {
		return fmt.Errorf("search.fallback.keep (%d) must not exceed search.fallback.window (%d)",
			c.Search.Fallback.Keep, c.Search.Fallback.Window)
	}
	if err := ValidateWeights(c.Search.Scoring.Weights); err != nil {
		return fmt.Errorf("search.scoring.weights: %w", err)
	}
	for i, r := range c.Search.CategoryExpansion {
		if r.Category == "" || len(r.ExpandTo) == 0 {
			return fmt.Errorf("search.category_expansion[%d]: category and expand_to are required", i)
		}
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"memory\" or \"redis\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

// ValidateMinSimilarity checks a fuzzy fallback cutoff.
func ValidateMinSimilarity(s float64) error {
	if s <= 0 || s > 1 {
		return fmt.Errorf("must be in (0, 1], got %v", s)
	}
	return nil
}

// ValidateWeights checks relevance weights: known field names, each in [0, 1].
func ValidateWeights(weights map[string]float64) error {
	known := DefaultWeights()
	for name, w := range weights {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, w)
		}
	}
	return nil
}
