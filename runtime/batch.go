package runtime

import (
	"context"
	"sync"
)

// contextKey is a private type for context keys.
type contextKey string

// batchKey is the context key for the active batch scope.
const batchKey contextKey = "casql_batch"

// Batch accumulates statements for deferred atomic execution. A batch is
// discovered through the context rather than passed explicitly, so the
// scope is local to one logical execution path and concurrent batches never
// interleave statements.
type Batch struct {
	mu    sync.Mutex
	stmts []Statement
}

// Add appends a statement to the pending list, preserving add order.
func (b *Batch) Add(cql string, params []any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stmts = append(b.stmts, Statement{CQL: cql, Params: params})
}

// Len returns the number of pending statements.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stmts)
}

// Statements returns a copy of the pending list.
func (b *Batch) Statements() []Statement {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Statement(nil), b.stmts...)
}

// WithBatch derives a context carrying a fresh batch scope. A nested scope
// shadows the outer one; the two pending lists are never merged.
func WithBatch(ctx context.Context) (context.Context, *Batch) {
	b := &Batch{}
	return context.WithValue(ctx, batchKey, b), b
}

// BatchFromContext returns the innermost active batch scope, if any.
func BatchFromContext(ctx context.Context) (*Batch, bool) {
	b, ok := ctx.Value(batchKey).(*Batch)
	return b, ok
}

// AddToBatch appends a statement to the active scope, failing with
// ErrNoActiveBatch when none encloses the context.
func AddToBatch(ctx context.Context, cql string, params []any) error {
	b, ok := BatchFromContext(ctx)
	if !ok {
		return ErrNoActiveBatch
	}
	b.Add(cql, params)
	return nil
}

// InBatch runs fn inside a fresh batch scope. If fn returns nil the pending
// statements are submitted as one atomic unit; if fn fails they are
// discarded unexecuted.
func InBatch(ctx context.Context, exec Executor, fn func(ctx context.Context) error) error {
	ctx, b := WithBatch(ctx)
	if err := fn(ctx); err != nil {
		return err
	}
	stmts := b.Statements()
	if len(stmts) == 0 {
		return nil
	}
	return exec.ExecBatch(ctx, stmts)
}
