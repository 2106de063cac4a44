package schemasync

import (
	"context"
	"errors"
	"fmt"

	"github.com/casql/casql/query/compiler"
	"github.com/casql/casql/schema"
	"github.com/casql/casql/internal/debug"
)

// Introspector reads the store's metadata catalog. A nil LiveSchema with a
// nil error means the table does not exist.
type Introspector interface {
	TableSchema(ctx context.Context, table string) (*LiveSchema, error)
	Indexes(ctx context.Context, table string) (map[string]struct{}, error)
}

// Executor applies DDL statements. Satisfied by the Cassandra adapter.
type Executor interface {
	Exec(ctx context.Context, cql string, params ...any) error
}

// ErrIndexCreation wraps per-index creation failures. Index creation is
// independent per field; a failure is logged and skipped, never fatal to the
// remaining indexes.
var ErrIndexCreation = errors.New("index creation failed")

// Options control a synchronization run.
type Options struct {
	// AutoApply executes the additive changes. Without it the run only
	// reports the diff.
	AutoApply bool

	// Verbose logs every statement and advisory report.
	Verbose bool
}

// Synchronizer reconciles declared schemas with live tables. Each run moves
// through introspect, compare and one of: no-op, create, additive alter, or
// unsafe report.
type Synchronizer struct {
	exec  Executor
	intro Introspector
}

// New returns a synchronizer over the given collaborators.
func New(exec Executor, intro Introspector) *Synchronizer {
	return &Synchronizer{exec: exec, intro: intro}
}

// Sync reconciles one declared schema. The returned diff is nil when the
// table had to be created from scratch. Additive column changes already
// applied before a later failure are not rolled back; each ALTER commits
// independently.
func (s *Synchronizer) Sync(ctx context.Context, model *schema.TableSchema, opts Options) (*Diff, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	live, err := s.intro.TableSchema(ctx, model.TableName)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", model.TableName, err)
	}

	if live == nil {
		return nil, s.createTable(ctx, model, opts)
	}

	diff := Compare(model, live)
	if diff.Empty() {
		debug.Debug("schema in sync", "table", model.TableName)
		return diff, nil
	}

	s.report(model, diff, opts)

	if !opts.AutoApply {
		return diff, nil
	}
	if err := s.apply(ctx, model, diff, opts); err != nil {
		return diff, err
	}
	return diff, s.syncIndexes(ctx, model, opts)
}

// createTable handles the table-absent path: create plus every declared
// index. The diff logic never runs here.
func (s *Synchronizer) createTable(ctx context.Context, model *schema.TableSchema, opts Options) error {
	cql, err := compiler.CompileCreateTable(model)
	if err != nil {
		return err
	}
	if opts.Verbose {
		debug.Info("creating table", "table", model.TableName, "cql", cql)
	}
	if err := s.exec.Exec(ctx, cql); err != nil {
		return fmt.Errorf("create table %s: %w", model.TableName, err)
	}
	return s.syncIndexes(ctx, model, opts)
}

// apply executes the additive column changes. A primary-key mismatch aborts
// before any ALTER is attempted. Column drops and type changes are advisory
// only; the store cannot apply them safely.
func (s *Synchronizer) apply(ctx context.Context, model *schema.TableSchema, diff *Diff, opts Options) error {
	if diff.PKMismatch != nil {
		return fmt.Errorf("%w: primary key of %s cannot be altered in place (%s); the table must be recreated manually",
			compiler.ErrSchema, model.TableName, diff.PKMismatch)
	}

	for _, field := range diff.FieldsToAdd {
		cql := compiler.CompileAddColumn(model.TableName, field, model.Fields[field].Type)
		if opts.Verbose {
			debug.Info("adding column", "table", model.TableName, "cql", cql)
		}
		if err := s.exec.Exec(ctx, cql); err != nil {
			debug.Error("add column failed", "table", model.TableName, "column", field, "error", err)
		}
	}

	for _, field := range diff.FieldsToRemove {
		debug.Warn("column removal is never applied automatically",
			"manual_ddl", compiler.CompileDropColumn(model.TableName, field))
	}
	for _, mismatch := range diff.TypeMismatches {
		debug.Warn("column type change is never applied automatically", "mismatch", mismatch.String())
	}

	return nil
}

// syncIndexes creates every declared secondary index that the live table
// does not already have. Failures are logged per index and skipped.
func (s *Synchronizer) syncIndexes(ctx context.Context, model *schema.TableSchema, opts Options) error {
	if len(model.Indexes) == 0 {
		return nil
	}

	existing, err := s.intro.Indexes(ctx, model.TableName)
	if err != nil {
		return fmt.Errorf("introspect indexes of %s: %w", model.TableName, err)
	}

	for _, field := range model.Indexes {
		name := compiler.IndexName(model.TableName, field)
		if _, ok := existing[name]; ok {
			if opts.Verbose {
				debug.Debug("index exists", "index", name)
			}
			continue
		}
		cql := compiler.CompileCreateIndex(model.TableName, field)
		if opts.Verbose {
			debug.Info("creating index", "index", name, "cql", cql)
		}
		if err := s.exec.Exec(ctx, cql); err != nil {
			debug.Error("index creation skipped",
				"index", name, "error", fmt.Errorf("%w: %v", ErrIndexCreation, err))
			continue
		}
	}
	return nil
}

// report logs the diff without applying anything.
func (s *Synchronizer) report(model *schema.TableSchema, diff *Diff, opts Options) {
	debug.Warn("schema out of sync", "table", model.TableName)
	if !opts.Verbose {
		return
	}
	for _, field := range diff.FieldsToAdd {
		debug.Info("field to add", "table", model.TableName, "field", field, "type", model.Fields[field].Type)
	}
	for _, field := range diff.FieldsToRemove {
		debug.Info("field to remove (manual)", "table", model.TableName, "field", field)
	}
	for _, mismatch := range diff.TypeMismatches {
		debug.Info("type mismatch (manual)", "table", model.TableName, "mismatch", mismatch.String())
	}
	if diff.PKMismatch != nil {
		debug.Error("primary key mismatch", "table", model.TableName, "mismatch", diff.PKMismatch.String())
	}
}
