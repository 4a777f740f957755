// Package persistence implements the aspect index on SQLite and
// PostgreSQL/pgvector backends via GORM.
package persistence

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch indicates an embedding whose dimensionality differs
// from the store's. Dimensionality is fixed per store by the configured
// model; mixing dimensions would corrupt similarity ranking.
var ErrDimensionMismatch = errors.New("persistence: embedding dimension mismatch")

// StoreError represents a backend failure: the database is unreachable,
// rejects the statement, or returns inconsistent data. Store errors are
// fatal for the operation in progress, unlike per-item image or provider
// failures.
type StoreError struct {
	op  string
	err error
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{op: op, err: err}
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.op, e.err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error { return e.err }

// Op returns the name of the failed store operation.
func (e *StoreError) Op() string { return e.op }
