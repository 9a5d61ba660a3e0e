package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound    = errors.New("db: key not found")
	ErrNotFound       = errors.New("db: database file not found")
	ErrSchemaMismatch = errors.New("db: schema mismatch")
	ErrTimeout        = errors.New("db: query timeout")
)

// Op constants name the failing operation for error context.
const (
	OpOpen   = "OPEN"
	OpPing   = "PING"
	OpProbe  = "PROBE"
	OpSelect = "SELECT"
	OpScan   = "SCAN"
	OpGet    = "GET"
	OpSet    = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
