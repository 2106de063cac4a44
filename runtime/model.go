package runtime

import (
	"context"
	"sort"

	"github.com/casql/casql/query/compiler"
	"github.com/casql/casql/schema"
	"github.com/casql/casql/internal/debug"
)

// Record is one typed row keyed by the schema's field names. Values are
// populated by iterating the schema's field order, so every declared field
// is present (nil when the store returned no value).
type Record map[string]any

// Model binds a schema descriptor to an executor and is the entry point for
// querying and writing a table.
type Model struct {
	schema *schema.TableSchema
	exec   Executor
}

// NewModel validates the descriptor and returns the model handle.
func NewModel(s *schema.TableSchema, exec Executor) (*Model, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Model{schema: s, exec: exec}, nil
}

// Schema returns the model's descriptor. Shared by reference; callers must
// not mutate it.
func (m *Model) Schema() *schema.TableSchema { return m.schema }

// Query returns an empty queryset over the model.
func (m *Model) Query() *QuerySet {
	return newQuerySet(m)
}

// Filter returns a queryset with one predicate applied.
func (m *Model) Filter(path string, value any) *QuerySet {
	return m.Query().Filter(path, value)
}

// Get returns the single record matching the predicates, or ErrNotFound.
func (m *Model) Get(ctx context.Context, path string, value any) (Record, error) {
	rec, err := m.Filter(path, value).First(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Insert writes one record. Parameter values follow the schema's field
// order; missing fields bind nil, which the store treats as an unset column.
// Inside an active batch scope the statement is deferred to the scope's
// atomic submission instead of executing immediately.
func (m *Model) Insert(ctx context.Context, rec Record) error {
	cql, err := compiler.CompileInsert(m.schema)
	if err != nil {
		return err
	}
	params := make([]any, 0, len(m.schema.FieldOrder))
	for _, field := range m.schema.FieldOrder {
		params = append(params, rec[field])
	}

	if b, ok := BatchFromContext(ctx); ok {
		b.Add(cql, params)
		debug.Debug("insert deferred to batch", "table", m.schema.TableName)
		return nil
	}
	if err := m.exec.Exec(ctx, cql, params...); err != nil {
		return queryErr("insert", m.schema.TableName, cql, err)
	}
	return nil
}

// BulkInsert writes the records through a single batch scope, submitted
// atomically once every statement is staged.
func (m *Model) BulkInsert(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	return InBatch(ctx, m.exec, func(ctx context.Context) error {
		for _, rec := range recs {
			if err := m.Insert(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update sets the given fields on the row identified by keys, which must
// name every primary-key field. Set fields are ordered by name so repeated
// calls compile identically.
func (m *Model) Update(ctx context.Context, set map[string]any, keys map[string]any) error {
	assignments := compiler.NewAssignments()
	for _, field := range sortedKeys(set) {
		assignments.Set(field, set[field])
	}
	cql, params, err := compiler.CompileUpdate(m.schema, assignments, keys)
	if err != nil {
		return err
	}
	if err := m.exec.Exec(ctx, cql, params...); err != nil {
		return queryErr("update", m.schema.TableName, cql, err)
	}
	return nil
}

// UpdateCollection appends to or removes from a collection column on the
// row identified by keys.
func (m *Model) UpdateCollection(ctx context.Context, field string, add, remove any, keys map[string]any) error {
	cql, params, err := compiler.CompileCollectionUpdate(m.schema, field, add, remove, keys)
	if err != nil {
		return err
	}
	if err := m.exec.Exec(ctx, cql, params...); err != nil {
		return queryErr("update collection", m.schema.TableName, cql, err)
	}
	return nil
}

// mapRow converts an executor row into a record by iterating the schema's
// field order.
func (m *Model) mapRow(row Row) Record {
	rec := make(Record, len(m.schema.FieldOrder))
	for _, field := range m.schema.FieldOrder {
		rec[field] = row[field]
	}
	return rec
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
