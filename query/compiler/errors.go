package compiler

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the compiler. All are returned synchronously and
// are never retried.
var (
	// ErrCompile marks malformed compiler input: an unsupported operator
	// suffix, a non-sequence value for an IN filter, or an empty
	// update/collection payload.
	ErrCompile = errors.New("compile error")

	// ErrUnsafeOperation marks statements the store cannot execute safely:
	// a delete with no predicates or one whose predicates do not cover the
	// partition key. The compiler refuses to emit them.
	ErrUnsafeOperation = errors.New("unsafe operation")

	// ErrSchema marks a structurally invalid schema, such as a table
	// without partition keys.
	ErrSchema = errors.New("schema error")
)

func compileErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCompile, fmt.Sprintf(format, args...))
}

func unsafeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsafeOperation, fmt.Sprintf(format, args...))
}

func schemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}
