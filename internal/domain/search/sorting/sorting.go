package sorting

// Key is the ranking strategy.
type Key string

// Sort key constants.
const (
	// Relevance orders by computed score, always highest first.
	Relevance Key = "relevance"
	Price     Key = "price"
	// Qty orders by parsed stock quantity.
	Qty Key = "qty"
)

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	return k == Relevance || k == Price || k == Qty
}

// Direction is the ordering for price and qty sorts.
type Direction string

// Direction constants.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid checks if the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}
