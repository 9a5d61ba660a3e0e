// Package sqlite serves the product catalog from a read-only SQLite file.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain/catalog"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds catalog database parameters.
type Config struct {
	Driver       string // sqlite or sqlite3
	Path         string
	Schema       db.Schema
	QueryTimeout time.Duration
}

// Store runs catalog selects against a read-only SQLite database.
type Store struct {
	db      *sqlx.DB
	path    string
	schema  db.Schema
	timeout time.Duration
}

// NewStore opens the catalog file read-only and probes its schema.
// A missing file yields db.ErrNotFound; missing columns yield db.ErrSchemaMismatch.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if err := cfg.Schema.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &db.Error{Op: db.OpOpen, Err: fmt.Errorf("%w: %s", db.ErrNotFound, cfg.Path)}
		}
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}

	conn, err := sqlx.Open(cfg.Driver, readOnlyDSN(cfg.Path))
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}

	s := &Store{db: conn, path: cfg.Path, schema: cfg.Schema, timeout: cfg.QueryTimeout}
	if err := s.probe(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro"
}

// Path returns the catalog file path.
func (s *Store) Path() string { return s.path }

// Table returns the catalog table name.
func (s *Store) Table() string { return s.schema.Table }

// Schema returns the column mapping the store was opened with.
func (s *Store) Schema() db.Schema { return s.schema }

// Ping checks that the database file is still readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// SelectCatalog runs a built select and scans every row.
func (s *Store) SelectCatalog(ctx context.Context, q *db.SelectQuery) ([]catalog.Item, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q.SQL, q.Args...); err != nil {
		return nil, s.wrap(ctx, db.OpSelect, err)
	}

	items := make([]catalog.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].item()
	}
	return items, nil
}

// probe selects a single row to confirm the table and every mapped column exist.
func (s *Store) probe(ctx context.Context) error {
	q, err := db.NewSelect(s.schema).Limit(1).Build()
	if err != nil {
		return &db.Error{Op: db.OpProbe, Err: err}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return s.wrap(ctx, db.OpProbe, err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return s.wrap(ctx, db.OpProbe, err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) wrap(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrTimeout, err)}
	case isSchemaErr(err):
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrSchemaMismatch, err)}
	default:
		return &db.Error{Op: op, Err: err}
	}
}

func isSchemaErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

// row mirrors the display-field aliases produced by db.SelectBuilder.
type row struct {
	Name        Text `db:"name"`
	Qty         Text `db:"qty"`
	Price       Text `db:"price"`
	Category    Text `db:"category_code"`
	Author      Text `db:"author_or_type_or_age"`
	Translator  Text `db:"translator_or_playtime"`
	Publisher   Text `db:"publisher_or_brand"`
	Group       Text `db:"group_main"`
	SystemCode  Text `db:"system_code"`
	GroupFamily Text `db:"groupfamily"`
}

func (r *row) item() catalog.Item {
	return catalog.Item{
		Name:        string(r.Name),
		Qty:         string(r.Qty),
		Price:       string(r.Price),
		Category:    string(r.Category),
		Author:      string(r.Author),
		Translator:  string(r.Translator),
		Publisher:   string(r.Publisher),
		Group:       string(r.Group),
		SystemCode:  string(r.SystemCode),
		GroupFamily: string(r.GroupFamily),
	}
}
