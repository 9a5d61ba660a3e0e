package predicate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field is a logical catalog field; the store maps it to a physical column.
type Field string

// Catalog fields.
const (
	FieldName        Field = "name"
	FieldQty         Field = "qty"
	FieldPrice       Field = "price"
	FieldCategory    Field = "category_code"
	FieldAuthor      Field = "author_or_type_or_age"
	FieldTranslator  Field = "translator_or_playtime"
	FieldPublisher   Field = "publisher_or_brand"
	FieldGroup       Field = "group_main"
	FieldGroupFamily Field = "groupfamily"
	FieldSystemCode  Field = "system_code"
)

// DisplayFields are the ten fields every fetch returns, in output order.
var DisplayFields = []Field{
	FieldName, FieldQty, FieldPrice, FieldCategory, FieldAuthor,
	FieldTranslator, FieldPublisher, FieldGroup, FieldSystemCode, FieldGroupFamily,
}

// Op is a condition operator.
type Op string

// Condition operators.
const (
	// OpContains matches a substring.
	OpContains Op = "contains"
	// OpNotContains is null-safe: a NULL field passes.
	OpNotContains Op = "not_contains"
	OpEquals      Op = "eq"
	OpIn          Op = "in"
	// OpNonEmpty requires a non-NULL value that is not blank after trimming.
	OpNonEmpty Op = "non_empty"
)

// Condition is a single field test.
type Condition struct {
	field  Field
	op     Op
	values []string
}

// Contains creates a substring condition.
func Contains(f Field, term string) Condition {
	return Condition{field: f, op: OpContains, values: []string{term}}
}

// NotContains creates a null-safe negated substring condition.
func NotContains(f Field, term string) Condition {
	return Condition{field: f, op: OpNotContains, values: []string{term}}
}

// Equals creates an equality condition.
func Equals(f Field, v string) Condition {
	return Condition{field: f, op: OpEquals, values: []string{v}}
}

// In creates a membership condition.
func In(f Field, vs ...string) Condition {
	return Condition{field: f, op: OpIn, values: append([]string(nil), vs...)}
}

// NonEmpty creates a presence condition.
func NonEmpty(f Field) Condition {
	return Condition{field: f, op: OpNonEmpty}
}

// Field returns the tested field.
func (c Condition) Field() Field { return c.field }

// Op returns the operator.
func (c Condition) Op() Op { return c.op }

// Values returns the bound values.
func (c Condition) Values() []string { return c.values }

// Value returns the first bound value, or "".
func (c Condition) Value() string {
	if len(c.values) == 0 {
		return ""
	}
	return c.values[0]
}

func (c Condition) String() string {
	switch c.op {
	case OpContains:
		return fmt.Sprintf("%s CONTAINS %q", c.field, c.Value())
	case OpNotContains:
		return fmt.Sprintf("(%s IS NULL OR %s NOT CONTAINS %q)", c.field, c.field, c.Value())
	case OpEquals:
		return fmt.Sprintf("%s = %q", c.field, c.Value())
	case OpIn:
		quoted := make([]string, len(c.values))
		for i, v := range c.values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return fmt.Sprintf("%s IN (%s)", c.field, strings.Join(quoted, ", "))
	case OpNonEmpty:
		return fmt.Sprintf("%s IS NOT EMPTY", c.field)
	default:
		return fmt.Sprintf("%s %s %v", c.field, c.op, c.values)
	}
}

// Clause is a disjunction of conditions.
type Clause struct {
	any []Condition
}

// AnyOf creates a clause satisfied when any condition holds.
func AnyOf(conds ...Condition) Clause {
	return Clause{any: append([]Condition(nil), conds...)}
}

// Conditions returns the OR-ed conditions.
func (c Clause) Conditions() []Condition { return c.any }

func (c Clause) String() string {
	if len(c.any) == 1 {
		return c.any[0].String()
	}
	parts := make([]string, len(c.any))
	for i, cond := range c.any {
		parts[i] = cond.String()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Predicate is an ordered conjunction of clauses. The zero value matches everything.
type Predicate struct {
	clauses []Clause
}

// New creates a predicate from clauses, dropping empty ones.
func New(clauses ...Clause) Predicate {
	var p Predicate
	for _, c := range clauses {
		p = p.And(c)
	}
	return p
}

// And returns a copy of p with the clause appended. Empty clauses are ignored.
func (p Predicate) And(c Clause) Predicate {
	if len(c.any) == 0 {
		return p
	}
	clauses := make([]Clause, len(p.clauses), len(p.clauses)+1)
	copy(clauses, p.clauses)
	return Predicate{clauses: append(clauses, c)}
}

// Clauses returns the AND-ed clauses.
func (p Predicate) Clauses() []Clause { return p.clauses }

// IsEmpty reports whether the predicate matches every row.
func (p Predicate) IsEmpty() bool { return len(p.clauses) == 0 }

// String renders the predicate for debug output.
func (p Predicate) String() string {
	if p.IsEmpty() {
		return "TRUE"
	}
	parts := make([]string, len(p.clauses))
	for i, c := range p.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

type conditionJSON struct {
	Field  Field    `json:"field"`
	Op     Op       `json:"op"`
	Values []string `json:"values,omitempty"`
}

// MarshalJSON encodes the predicate as a list of OR-groups.
func (p Predicate) MarshalJSON() ([]byte, error) {
	out := make([][]conditionJSON, len(p.clauses))
	for i, c := range p.clauses {
		group := make([]conditionJSON, len(c.any))
		for j, cond := range c.any {
			group[j] = conditionJSON{Field: cond.field, Op: cond.op, Values: cond.values}
		}
		out[i] = group
	}
	return json.Marshal(out)
}
