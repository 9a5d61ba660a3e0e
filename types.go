package stockdex

import (
	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	"github.com/kailas-cloud/stockdex/internal/domain/search/sorting"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
)

// Intent is a structured search request.
type Intent = intent.Intent

// Envelope is a search response.
type Envelope = result.Envelope

// Item is one ranked result row.
type Item = result.Item

// Explanation is a compiled intent that was not executed.
type Explanation = searchuc.Explanation

// AliasStatus describes the active brand alias table.
type AliasStatus = brand.Status

// SortKey selects the ranking strategy.
type SortKey = sorting.Key

// Direction orders price and qty sorts.
type Direction = sorting.Direction

// Sort keys and directions.
const (
	SortRelevance SortKey   = sorting.Relevance
	SortPrice     SortKey   = sorting.Price
	SortQty       SortKey   = sorting.Qty
	Asc           Direction = sorting.Asc
	Desc          Direction = sorting.Desc
)

// Error kinds returned by the client. Match with errors.Is.
var (
	ErrConfiguration = domain.ErrConfiguration
	ErrValidation    = domain.ErrValidation
	ErrStoreTimeout  = domain.ErrStoreTimeout
)

// FieldError names the intent field that failed validation.
type FieldError = domain.FieldError

// NewIntent returns an intent with every field at its default.
func NewIntent() Intent {
	return intent.Default()
}

// DecodeIntent parses and validates a JSON intent.
var DecodeIntent = intent.DecodeBytes
