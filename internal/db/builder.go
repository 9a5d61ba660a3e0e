package db

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

var flavor = sqlbuilder.SQLite

// Schema maps logical catalog fields to physical columns of one table.
type Schema struct {
	Table   string
	Columns map[predicate.Field]string
}

// Validate checks that the table and every display field are mapped.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.Table) == "" {
		return fmt.Errorf("%w: empty table name", ErrSchemaMismatch)
	}
	for _, f := range predicate.DisplayFields {
		if strings.TrimSpace(s.Columns[f]) == "" {
			return fmt.Errorf("%w: no column for field %q", ErrSchemaMismatch, f)
		}
	}
	return nil
}

func (s Schema) column(f predicate.Field) (string, error) {
	col, ok := s.Columns[f]
	if !ok || col == "" {
		return "", fmt.Errorf("%w: no column for field %q", ErrSchemaMismatch, f)
	}
	return flavor.Quote(col), nil
}

// SelectQuery is a built, parameterized catalog select.
type SelectQuery struct {
	SQL  string
	Args []any
}

// SelectBuilder is a fluent builder for catalog selects.
type SelectBuilder struct {
	schema Schema
	pred   predicate.Predicate
	limit  int
}

// NewSelect starts a select of all display fields from the schema's table.
func NewSelect(schema Schema) *SelectBuilder {
	return &SelectBuilder{schema: schema}
}

// Where sets the row filter.
func (b *SelectBuilder) Where(p predicate.Predicate) *SelectBuilder {
	b.pred = p
	return b
}

// Limit caps the number of rows. Zero means unlimited.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// Build renders the query. Values are always bound, never inlined.
func (b *SelectBuilder) Build() (*SelectQuery, error) {
	sb := flavor.NewSelectBuilder()

	cols := make([]string, 0, len(predicate.DisplayFields))
	for _, f := range predicate.DisplayFields {
		col, err := b.schema.column(f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, sb.As(col, string(f)))
	}
	sb.Select(cols...).From(flavor.Quote(b.schema.Table))

	for _, clause := range b.pred.Clauses() {
		exprs := make([]string, 0, len(clause.Conditions()))
		for _, c := range clause.Conditions() {
			expr, err := b.condition(sb, c)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
		if len(exprs) == 1 {
			sb.Where(exprs[0])
		} else {
			sb.Where(sb.Or(exprs...))
		}
	}

	if b.limit > 0 {
		sb.Limit(b.limit)
	}

	sql, args := sb.Build()
	return &SelectQuery{SQL: sql, Args: args}, nil
}

func (b *SelectBuilder) condition(sb *sqlbuilder.SelectBuilder, c predicate.Condition) (string, error) {
	col, err := b.schema.column(c.Field())
	if err != nil {
		return "", err
	}
	switch c.Op() {
	case predicate.OpContains:
		return sb.Like(col, likePattern(c.Value())), nil
	case predicate.OpNotContains:
		return sb.Or(sb.IsNull(col), sb.NotLike(col, likePattern(c.Value()))), nil
	case predicate.OpEquals:
		return sb.Equal(col, c.Value()), nil
	case predicate.OpIn:
		vals := make([]any, len(c.Values()))
		for i, v := range c.Values() {
			vals[i] = v
		}
		return sb.In(col, vals...), nil
	case predicate.OpNonEmpty:
		return sb.And(sb.IsNotNull(col), sb.NotEqual("TRIM("+col+")", "")), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op())
	}
}

// likePattern wraps a term for substring matching. Wildcards in the term
// keep their LIKE meaning.
func likePattern(term string) string {
	return "%" + term + "%"
}
