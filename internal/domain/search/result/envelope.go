package result

import (
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

// Envelope is the search response.
type Envelope struct {
	Version              string                  `json:"version"`
	QueryText            string                  `json:"query_text"`
	CategoryCodeUsed     intent.CategorySelector `json:"category_code_used"`
	UploadedOnly         bool                    `json:"uploaded_only"`
	Count                int                     `json:"count"`
	CategoryDistribution map[string]int          `json:"category_distribution"`
	Results              []Item                  `json:"results"`
	UI                   *intent.UI              `json:"ui,omitempty"`
	Debug                *Debug                  `json:"debug,omitempty"`
}

// Debug exposes how a request was compiled and served. Only built on request.
type Debug struct {
	Predicate         string              `json:"predicate"`
	Clauses           predicate.Predicate `json:"clauses"`
	SQL               string              `json:"sql"`
	Params            []any               `json:"params"`
	Categories        []string            `json:"categories"`
	Widened           bool                `json:"category_widened"`
	FreeText          bool                `json:"free_text"`
	Fallback          FallbackReport      `json:"fallback"`
	Catalog           CatalogInfo         `json:"catalog"`
	AliasesPath       string              `json:"aliases_path"`
	AliasesLoaded     bool                `json:"aliases_loaded"`
	AliasesCount      int                 `json:"aliases_count"`
	AliasesGeneration uint64              `json:"aliases_generation"`
}

// Seed sources for the fuzzy fallback.
const (
	SeedNameInclude = "name_include"
	SeedQueryText   = "query_text"
)

// FallbackReport describes the fuzzy fallback stage of one request.
type FallbackReport struct {
	Activated        bool    `json:"activated"`
	Seed             string  `json:"seed,omitempty"`
	SeedSource       string  `json:"seed_source,omitempty"`
	StructuredFilter bool    `json:"structured_filter"`
	Predicate        string  `json:"predicate,omitempty"`
	Candidates       int     `json:"candidates"`
	Kept             int     `json:"kept"`
	MinSimilarity    float64 `json:"min_similarity,omitempty"`
}

// CatalogInfo identifies the catalog store.
type CatalogInfo struct {
	Driver string `json:"driver"`
	Path   string `json:"db_path"`
	Table  string `json:"table"`
}
