package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

// --- Fixture ---

func fixtureSchema() db.Schema {
	return db.Schema{
		Table: "products",
		Columns: map[predicate.Field]string{
			predicate.FieldName:        "نام",
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

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer conn.Close()

	conn.MustExec(`CREATE TABLE products (
		"نام" TEXT, qty INTEGER, price REAL, cat TEXT, author TEXT,
		translator TEXT, publisher TEXT, grp TEXT, GroupFamily TEXT, code TEXT
	)`)
	insert := `INSERT INTO products VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	conn.MustExec(insert, "خودکار پارکر", 3, 1500000.0, "s", nil, nil, "parker", "نوشت افزار", "قلم,هدیه", " 1001 ")
	conn.MustExec(insert, "دفتر", 0, "250,000", "s", nil, nil, "پاپکو", "نوشت افزار", "", "1002")
	conn.MustExec(insert, "شازده کوچولو", nil, nil, "b", "اگزوپری", "", "نشر", "کتاب", "رمان", "1003")
	return path
}

func openFixture(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), Config{
		Path:         writeFixture(t),
		Schema:       fixtureSchema(),
		QueryTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func selectAll(t *testing.T, s *Store, p predicate.Predicate) *db.SelectQuery {
	t.Helper()
	q, err := db.NewSelect(s.Schema()).Where(p).Limit(100).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return q
}

// --- Tests ---

func TestNewStore_MissingFile(t *testing.T) {
	_, err := NewStore(context.Background(), Config{
		Path:   filepath.Join(t.TempDir(), "nope.db"),
		Schema: fixtureSchema(),
	})
	if !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewStore_MissingColumn(t *testing.T) {
	schema := fixtureSchema()
	schema.Columns[predicate.FieldGroup] = "no_such_col"

	_, err := NewStore(context.Background(), Config{Path: writeFixture(t), Schema: schema})
	if !errors.Is(err, db.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestNewStore_MissingTable(t *testing.T) {
	schema := fixtureSchema()
	schema.Table = "items"

	_, err := NewStore(context.Background(), Config{Path: writeFixture(t), Schema: schema})
	if !errors.Is(err, db.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestStore_Accessors(t *testing.T) {
	s := openFixture(t)
	if s.Table() != "products" {
		t.Errorf("Table = %q", s.Table())
	}
	if filepath.Base(s.Path()) != "catalog.db" {
		t.Errorf("Path = %q", s.Path())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Errorf("WaitForReady: %v", err)
	}
}

func TestSelectCatalog_ScansAllStorageClasses(t *testing.T) {
	s := openFixture(t)

	p := predicate.New(predicate.AnyOf(predicate.Equals(predicate.FieldSystemCode, " 1001 ")))
	items, err := s.SelectCatalog(context.Background(), selectAll(t, s, p))
	if err != nil {
		t.Fatalf("SelectCatalog: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if it.Name != "خودکار پارکر" {
		t.Errorf("Name = %q", it.Name)
	}
	if it.Qty != "3" {
		t.Errorf("Qty = %q, want 3", it.Qty)
	}
	if it.Price != "1500000" {
		t.Errorf("Price = %q, want 1500000", it.Price)
	}
	if it.Author != "" {
		t.Errorf("NULL author = %q, want empty", it.Author)
	}
}

func TestSelectCatalog_UploadedOnly(t *testing.T) {
	s := openFixture(t)

	p := predicate.New(predicate.AnyOf(predicate.NonEmpty(predicate.FieldGroupFamily)))
	items, err := s.SelectCatalog(context.Background(), selectAll(t, s, p))
	if err != nil {
		t.Fatalf("SelectCatalog: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (blank groupfamily excluded)", len(items))
	}
}

func TestSelectCatalog_ContainsAndExclude(t *testing.T) {
	s := openFixture(t)

	p := predicate.New(
		predicate.AnyOf(predicate.Equals(predicate.FieldCategory, "s")),
		predicate.AnyOf(predicate.NotContains(predicate.FieldName, "دفتر")),
	)
	items, err := s.SelectCatalog(context.Background(), selectAll(t, s, p))
	if err != nil {
		t.Fatalf("SelectCatalog: %v", err)
	}
	if len(items) != 1 || items[0].SystemCode != " 1001 " {
		t.Fatalf("items = %+v", items)
	}

	p = predicate.New(predicate.AnyOf(predicate.NotContains(predicate.FieldAuthor, "x")))
	items, err = s.SelectCatalog(context.Background(), selectAll(t, s, p))
	if err != nil {
		t.Fatalf("SelectCatalog: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("NULL author must pass an exclude filter, got %d rows", len(items))
	}
}

func TestSelectCatalog_ReadOnly(t *testing.T) {
	s := openFixture(t)

	_, err := s.db.ExecContext(context.Background(), `DELETE FROM products`)
	if err == nil {
		t.Fatal("expected write to fail on a read-only connection")
	}
}

func TestSelectCatalog_Canceled(t *testing.T) {
	s := openFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SelectCatalog(ctx, selectAll(t, s, predicate.Predicate{}))
	if err == nil {
		t.Fatal("expected error on canceled context")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSelect {
		t.Errorf("expected SELECT db.Error, got %v", err)
	}
}

func TestText_Scan(t *testing.T) {
	tests := []struct {
		src  any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{[]byte("xyz"), "xyz"},
		{int64(42), "42"},
		{float64(12), "12"},
		{1500000.5, "1500000.5"},
		{true, "true"},
	}
	for _, tc := range tests {
		var got Text
		if err := got.Scan(tc.src); err != nil {
			t.Fatalf("Scan(%v): %v", tc.src, err)
		}
		if string(got) != tc.want {
			t.Errorf("Scan(%v) = %q, want %q", tc.src, got, tc.want)
		}
	}

	var bad Text
	if err := bad.Scan(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
