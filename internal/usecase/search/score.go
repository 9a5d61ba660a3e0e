package search

import (
	"math"

	"github.com/kailas-cloud/stockdex/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
)

// Weights scale the per-field partial ratio before taking the maximum.
type Weights struct {
	Name        float64
	GroupFamily float64
	Author      float64
	Translator  float64
	Publisher   float64
	Group       float64
}

// DefaultWeights favor the title and tags over publisher and group.
func DefaultWeights() Weights {
	return Weights{
		Name:        0.95,
		GroupFamily: 0.90,
		Author:      0.75,
		Translator:  0.65,
		Publisher:   0.55,
		Group:       0.50,
	}
}

// WeightsFromMap reads weights keyed by name, author, translator, publisher,
// groupfamily and group. Missing keys keep their defaults.
func WeightsFromMap(m map[string]float64) Weights {
	w := DefaultWeights()
	for k, v := range m {
		switch k {
		case "name":
			w.Name = v
		case "groupfamily":
			w.GroupFamily = v
		case "author":
			w.Author = v
		case "translator":
			w.Translator = v
		case "publisher":
			w.Publisher = v
		case "group":
			w.Group = v
		}
	}
	return w
}

// Score returns floor(max(partial ratio x weight)) over the display fields,
// or 0 when query is empty. query must already be normalized.
func (w Weights) Score(query string, it *result.Item) int {
	if query == "" {
		return 0
	}
	best := math.Max(
		math.Max(
			float64(fuzzy.PartialRatio(query, it.Name))*w.Name,
			float64(fuzzy.PartialRatio(query, it.GroupFamily))*w.GroupFamily,
		),
		math.Max(
			math.Max(
				float64(fuzzy.PartialRatio(query, it.Author))*w.Author,
				float64(fuzzy.PartialRatio(query, it.Translator))*w.Translator,
			),
			math.Max(
				float64(fuzzy.PartialRatio(query, it.Publisher))*w.Publisher,
				float64(fuzzy.PartialRatio(query, it.Group))*w.Group,
			),
		),
	)
	return int(math.Floor(best))
}

func scoreAll(items []result.Item, query string, w Weights) {
	for i := range items {
		items[i].Score = w.Score(query, &items[i])
	}
}
