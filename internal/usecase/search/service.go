package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/search/compile"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	"github.com/kailas-cloud/stockdex/internal/logger"
	"github.com/kailas-cloud/stockdex/internal/metrics"
	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// Config tunes the pipeline.
type Config struct {
	PrimaryWindow  int
	FallbackWindow int
	FallbackKeep   int
	MinSimilarity  float64
	Weights        Weights
	ExpansionRules []compile.ExpansionRule
	Catalog        result.CatalogInfo
}

// DefaultConfig returns the production windows, cutoff and weights with the
// stationery-to-luxury-pen expansion rule.
func DefaultConfig() Config {
	return Config{
		PrimaryWindow:  1200,
		FallbackWindow: 2500,
		FallbackKeep:   1200,
		MinSimilarity:  0.72,
		Weights:        DefaultWeights(),
		ExpansionRules: []compile.ExpansionRule{{
			Category: "s",
			Keywords: []string{"خودکار", "خودنویس", "روان نویس", "هدیه", "قلم", "نفیس", "لاکچری"},
			ExpandTo: []string{"s", "l"},
		}},
	}
}

// Service runs the search pipeline: compile, fetch, fall back, filter,
// aggregate, score, rank.
type Service struct {
	repo    CatalogRepository
	aliases AliasSource
	cfg     Config
}

// New creates a search service.
func New(repo CatalogRepository, aliases AliasSource, cfg Config) *Service {
	return &Service{repo: repo, aliases: aliases, cfg: cfg}
}

// Search executes an intent. Validation failures wrap domain.ErrValidation,
// store failures wrap domain.ErrConfiguration or domain.ErrStoreTimeout.
func (s *Service) Search(ctx context.Context, in intent.Intent) (*result.Envelope, error) {
	start := time.Now()
	env, fellBack, err := s.search(ctx, in)

	outcome := outcomeOf(err)
	if err == nil && env.Count == 0 {
		outcome = "empty"
	}
	sortLabel := string(in.SortKey())
	if !in.SortKey().IsValid() {
		sortLabel = "invalid"
	}
	metrics.SearchRequestsTotal.WithLabelValues(sortLabel, outcome).Inc()
	metrics.SearchDuration.WithLabelValues(strconv.FormatBool(fellBack)).Observe(time.Since(start).Seconds())

	return env, err
}

func (s *Service) search(ctx context.Context, in intent.Intent) (*result.Envelope, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}

	log := logger.FromContext(ctx)
	query := textnorm.NormalizeQuery(in.QueryText)
	aliases := s.aliases.Current()
	comp := compile.New(aliases, s.cfg.ExpansionRules)
	compiled := comp.Compile(in, query)

	rows, err := s.repo.Fetch(ctx, compiled.Predicate, s.cfg.PrimaryWindow)
	if err != nil {
		return nil, false, fmt.Errorf("fetch candidates: %w", err)
	}
	primary := len(rows)
	metrics.SearchCandidates.WithLabelValues("primary").Observe(float64(primary))

	report := result.FallbackReport{StructuredFilter: in.HasStructuredFilter()}
	if len(rows) == 0 {
		rows, err = s.fallback(ctx, comp, in, query, &report)
		if err != nil {
			return nil, report.Activated, err
		}
		if report.Activated {
			log.Debug("Fuzzy fallback",
				zap.String("seed", report.Seed),
				zap.String("seed_source", report.SeedSource),
				zap.Int("candidates", report.Candidates),
				zap.Int("kept", report.Kept),
			)
		}
	}

	items := make([]result.Item, len(rows))
	for i, row := range rows {
		items[i] = result.FromCatalog(row)
	}
	items = postFilter(items, in.Filters)
	metrics.SearchCandidates.WithLabelValues("filtered").Observe(float64(len(items)))
	domain.TraceFromContext(ctx).RecordCandidates(len(items), report.Activated)

	dist := distribution(items)
	scoreAll(items, query, s.cfg.Weights)
	rank(items, in.SortKey(), in.SortDirection())
	items = truncate(items, in.EffectiveLimit())

	log.Debug("Search pipeline",
		zap.Int("primary", primary),
		zap.Bool("fallback", report.Activated),
		zap.Int("filtered", len(items)),
		zap.Strings("categories", compiled.Categories),
		zap.Bool("category_widened", compiled.Widened),
	)

	env := &result.Envelope{
		Version:              in.Version,
		QueryText:            query,
		CategoryCodeUsed:     in.CategoryCode,
		UploadedOnly:         in.UploadedOnly,
		Count:                len(items),
		CategoryDistribution: dist,
		Results:              items,
	}
	if !in.UI.IsZero() {
		ui := in.UI
		env.UI = &ui
	}
	if in.Debug {
		env.Debug = s.debug(compiled, report)
	}
	return env, report.Activated, nil
}

func (s *Service) debug(compiled compile.Compiled, report result.FallbackReport) *result.Debug {
	sql, params, err := s.repo.Explain(compiled.Predicate, s.cfg.PrimaryWindow)
	if err != nil {
		sql = "error: " + err.Error()
	}
	st := s.aliases.Status()
	return &result.Debug{
		Predicate:         compiled.Predicate.String(),
		Clauses:           compiled.Predicate,
		SQL:               sql,
		Params:            params,
		Categories:        compiled.Categories,
		Widened:           compiled.Widened,
		FreeText:          compiled.FreeText,
		Fallback:          report,
		Catalog:           s.cfg.Catalog,
		AliasesPath:       st.Source,
		AliasesLoaded:     st.Loaded,
		AliasesCount:      st.Groups,
		AliasesGeneration: st.Generation,
	}
}

// Explanation is a compiled intent without execution.
type Explanation struct {
	QueryText  string              `json:"query_text"`
	Predicate  string              `json:"predicate"`
	Clauses    predicate.Predicate `json:"clauses"`
	SQL        string              `json:"sql"`
	Params     []any               `json:"params"`
	Categories []string            `json:"categories"`
	Widened    bool                `json:"category_widened"`
	FreeText   bool                `json:"free_text"`
	Fallback   FallbackPlan        `json:"fallback"`
}

// FallbackPlan is what the fuzzy fallback would run if the primary fetch came back empty.
type FallbackPlan struct {
	Seed       string `json:"seed"`
	SeedSource string `json:"seed_source"`
	Predicate  string `json:"predicate"`
	SQL        string `json:"sql"`
	Params     []any  `json:"params"`
}

// Explain compiles an intent and renders its primary and fallback queries.
func (s *Service) Explain(_ context.Context, in intent.Intent) (*Explanation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := textnorm.NormalizeQuery(in.QueryText)
	comp := compile.New(s.aliases.Current(), s.cfg.ExpansionRules)
	compiled := comp.Compile(in, query)

	sql, params, err := s.repo.Explain(compiled.Predicate, s.cfg.PrimaryWindow)
	if err != nil {
		return nil, fmt.Errorf("explain primary: %w", err)
	}

	fb := comp.CompileFallback(in, query)
	fbSQL, fbParams, err := s.repo.Explain(fb.Predicate, s.cfg.FallbackWindow)
	if err != nil {
		return nil, fmt.Errorf("explain fallback: %w", err)
	}
	seed, source := nameSeed(in, query)

	return &Explanation{
		QueryText:  query,
		Predicate:  compiled.Predicate.String(),
		Clauses:    compiled.Predicate,
		SQL:        sql,
		Params:     params,
		Categories: compiled.Categories,
		Widened:    compiled.Widened,
		FreeText:   compiled.FreeText,
		Fallback: FallbackPlan{
			Seed:       seed,
			SeedSource: source,
			Predicate:  fb.Predicate.String(),
			SQL:        fbSQL,
			Params:     fbParams,
		},
	}, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStoreTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	default:
		return "error"
	}
}
