package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/domain/search/compile"
	"github.com/kailas-cloud/stockdex/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	"github.com/kailas-cloud/stockdex/internal/metrics"
	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// nameSeed picks the string the fallback compares names against: the first
// name include term when any is given, otherwise the normalized query.
func nameSeed(in intent.Intent, query string) (seed, source string) {
	if inc := in.Filters.Name.Include; len(inc) > 0 {
		return textnorm.NormalizeQuery(inc[0]), result.SeedNameInclude
	}
	return query, result.SeedQueryText
}

type scoredRow struct {
	row        catalog.Item
	similarity float64
}

// fallback re-fetches a wider window under only the uploaded and category
// clauses, then keeps rows whose name is similar enough to the seed.
func (s *Service) fallback(
	ctx context.Context, comp *compile.Compiler, in intent.Intent, query string, report *result.FallbackReport,
) ([]catalog.Item, error) {
	seed, source := nameSeed(in, query)
	if seed == "" {
		metrics.SearchFallbackTotal.WithLabelValues("no_seed").Inc()
		return nil, nil
	}

	compiled := comp.CompileFallback(in, query)
	report.Activated = true
	report.Seed = seed
	report.SeedSource = source
	report.Predicate = compiled.Predicate.String()
	report.MinSimilarity = s.cfg.MinSimilarity

	candidates, err := s.repo.Fetch(ctx, compiled.Predicate, s.cfg.FallbackWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback candidates: %w", err)
	}
	report.Candidates = len(candidates)
	metrics.SearchCandidates.WithLabelValues("fallback_window").Observe(float64(len(candidates)))

	matches := make([]scoredRow, 0, len(candidates))
	for _, row := range candidates {
		name := textnorm.NormalizeQuery(row.Name)
		if name == "" {
			continue
		}
		if sim := fuzzy.Ratio(seed, name); sim >= s.cfg.MinSimilarity {
			matches = append(matches, scoredRow{row: row, similarity: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	if len(matches) > s.cfg.FallbackKeep {
		matches = matches[:s.cfg.FallbackKeep]
	}

	rows := make([]catalog.Item, len(matches))
	for i, m := range matches {
		rows[i] = m.row
	}
	report.Kept = len(rows)
	metrics.SearchCandidates.WithLabelValues("fallback_kept").Observe(float64(len(rows)))

	if len(rows) > 0 {
		metrics.SearchFallbackTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.SearchFallbackTotal.WithLabelValues("miss").Inc()
	}
	return rows, nil
}
