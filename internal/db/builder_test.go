package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

func testSchema() Schema {
	return Schema{
		Table: "products",
		Columns: map[predicate.Field]string{
			predicate.FieldName:        "title",
			predicate.FieldQty:         "qty",
			predicate.FieldPrice:       "price",
			predicate.FieldCategory:    "cat",
			predicate.FieldAuthor:      "author",
			predicate.FieldTranslator:  "translator",
			predicate.FieldPublisher:   "publisher",
			predicate.FieldGroup:       "grp",
			predicate.FieldGroupFamily: "GroupFamily",
			predicate.FieldSystemCode:  "code",
		},
	}
}

func hasArg(args []any, want any) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestSelectBuilder_Projection(t *testing.T) {
	q, err := NewSelect(testSchema()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, want := range []string{
		`"title" AS name`,
		`"cat" AS category_code`,
		`"GroupFamily" AS groupfamily`,
		`FROM "products"`,
	} {
		if !strings.Contains(q.SQL, want) {
			t.Errorf("SQL missing %q: %s", want, q.SQL)
		}
	}
	if strings.Contains(q.SQL, "WHERE") {
		t.Errorf("empty predicate must not emit WHERE: %s", q.SQL)
	}
	if strings.Contains(q.SQL, "LIMIT") {
		t.Errorf("zero limit must not emit LIMIT: %s", q.SQL)
	}
}

func TestSelectBuilder_Conditions(t *testing.T) {
	p := predicate.New(
		predicate.AnyOf(predicate.NonEmpty(predicate.FieldGroupFamily)),
		predicate.AnyOf(predicate.In(predicate.FieldCategory, "s", "l")),
		predicate.AnyOf(
			predicate.Contains(predicate.FieldPublisher, "faber"),
			predicate.Contains(predicate.FieldPublisher, "فابر"),
		),
		predicate.AnyOf(predicate.NotContains(predicate.FieldName, "کودک")),
	)

	q, err := NewSelect(testSchema()).Where(p).Limit(1200).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{
		`"GroupFamily" IS NOT NULL`,
		`TRIM("GroupFamily") <> ?`,
		`"cat" IN (?, ?)`,
		`"publisher" LIKE ?`,
		`"title" IS NULL`,
		`"title" NOT LIKE ?`,
		" OR ",
		"LIMIT",
	} {
		if !strings.Contains(q.SQL, want) {
			t.Errorf("SQL missing %q: %s", want, q.SQL)
		}
	}
	for _, want := range []any{"", "s", "l", "%faber%", "%فابر%", "%کودک%"} {
		if !hasArg(q.Args, want) {
			t.Errorf("args missing %q: %v", want, q.Args)
		}
	}
	if strings.Contains(q.SQL, "faber") {
		t.Errorf("values must be bound, not inlined: %s", q.SQL)
	}
}

func TestSelectBuilder_Equality(t *testing.T) {
	p := predicate.New(predicate.AnyOf(predicate.Equals(predicate.FieldCategory, "b")))

	q, err := NewSelect(testSchema()).Where(p).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(q.SQL, `"cat" = ?`) {
		t.Errorf("SQL = %s", q.SQL)
	}
	if len(q.Args) != 1 || q.Args[0] != "b" {
		t.Errorf("Args = %v, want [b]", q.Args)
	}
}

func TestSelectBuilder_UnmappedField(t *testing.T) {
	s := testSchema()
	delete(s.Columns, predicate.FieldGroup)

	_, err := NewSelect(s).Build()
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestSchema_Validate(t *testing.T) {
	if err := testSchema().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s := testSchema()
	s.Table = " "
	if err := s.Validate(); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("blank table: got %v", err)
	}

	s = testSchema()
	s.Columns[predicate.FieldPrice] = ""
	if err := s.Validate(); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("blank column: got %v", err)
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpSelect, Err: ErrTimeout}
	if !errors.Is(err, ErrTimeout) {
		t.Error("Error should unwrap to its cause")
	}
	if err.Error() != "SELECT: db: query timeout" {
		t.Errorf("Error() = %q", err.Error())
	}
}
