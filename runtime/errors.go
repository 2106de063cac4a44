// Package runtime implements the lazy queryset, record mapping and the
// ambient batch scope over a compiled-query executor.
package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single-record lookup matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrNoActiveBatch is returned when a statement is added to a batch
	// scope that does not exist. This is a programmer error; callers are
	// expected to check for an active scope and fall back to immediate
	// execution.
	ErrNoActiveBatch = errors.New("no active batch scope")
)

// QueryError wraps an execution failure with the statement that caused it.
type QueryError struct {
	Op    string
	Table string
	CQL   string
	Cause error
}

func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Table, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying execution error.
func (e *QueryError) Unwrap() error { return e.Cause }

func queryErr(op, table, cql string, cause error) error {
	return &QueryError{Op: op, Table: table, CQL: cql, Cause: cause}
}
