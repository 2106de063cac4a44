package runtime

import (
	"context"
	"sync"

	"github.com/casql/casql/internal/debug"
	"github.com/casql/casql/query/compiler"
)

// QuerySet is a lazy, chainable query over one model. Every builder method
// returns a new queryset with copied state, so any queryset value is safe to
// hand to multiple callers; the original is never mutated. The query
// executes at most once, on the first terminal operation, and the result
// cache is served for every read after that.
type QuerySet struct {
	model          *Model
	filters        *compiler.Filters
	limit          int
	ordering       []string
	allowFiltering bool

	// err holds the first builder error (an unsupported operator suffix,
	// for instance) and is surfaced by the next terminal operation.
	err error

	// mu guards the result cache. Builder state is never written after the
	// clone that created it, so only the materialization transition needs
	// synchronization; a queryset value can be shared across goroutines.
	mu           sync.Mutex
	results      []Record
	materialized bool
}

func newQuerySet(m *Model) *QuerySet {
	return &QuerySet{model: m, filters: compiler.NewFilters()}
}

// clone copies builder state into a fresh, unmaterialized queryset. Builder
// calls after materialization therefore start a new query instead of
// touching the realized one.
func (qs *QuerySet) clone() *QuerySet {
	return &QuerySet{
		model:          qs.model,
		filters:        qs.filters.Clone(),
		limit:          qs.limit,
		ordering:       append([]string(nil), qs.ordering...),
		allowFiltering: qs.allowFiltering,
		err:            qs.err,
	}
}

// Filter adds one predicate. The path grammar is "field" or "field__op"
// with op one of exact, gt, gte, lt, lte, in, contains, startswith,
// endswith. A later predicate on the same path overwrites the earlier
// value. Predicates on fields that are neither primary keys nor indexed are
// allowed but logged, since the store may reject them without an explicit
// scan opt-in.
func (qs *QuerySet) Filter(path string, value any) *QuerySet {
	clone := qs.clone()

	field, _, err := compiler.ParsePath(path)
	if err != nil {
		if clone.err == nil {
			clone.err = err
		}
		return clone
	}
	if debug.Enabled() && !qs.model.schema.IsQueryable(field) {
		debug.Warn("predicate on field that is neither a primary key nor indexed; the query may need AllowFiltering",
			"table", qs.model.schema.TableName, "field", field)
	}

	clone.filters.Set(path, value)
	return clone
}

// Limit caps the number of returned rows.
func (qs *QuerySet) Limit(n int) *QuerySet {
	clone := qs.clone()
	clone.limit = n
	return clone
}

// OrderBy replaces the ordering. A "-" prefix selects descending order.
func (qs *QuerySet) OrderBy(fields ...string) *QuerySet {
	clone := qs.clone()
	clone.ordering = append([]string(nil), fields...)
	return clone
}

// AllowFiltering opts the query into an unindexed scan. Use with care; the
// store walks every partition to serve it.
func (qs *QuerySet) AllowFiltering() *QuerySet {
	clone := qs.clone()
	clone.allowFiltering = true
	return clone
}

// CQL compiles the queryset without executing it. Useful for logging and
// tests.
func (qs *QuerySet) CQL() (string, []any, error) {
	if qs.err != nil {
		return "", nil, qs.err
	}
	return compiler.CompileSelect(qs.model.schema, nil, qs.filters, qs.limit, qs.ordering, qs.allowFiltering)
}

// materialize compiles and executes the query, filling the result cache
// exactly once. The lock covers the whole transition, so concurrent
// terminals wait for the first execution instead of issuing their own. A
// failed or canceled execution leaves the queryset unmaterialized so a
// retry recompiles and re-executes cleanly.
func (qs *QuerySet) materialize(ctx context.Context) error {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	if qs.materialized {
		return nil
	}
	cql, params, err := qs.CQL()
	if err != nil {
		return err
	}
	rows, err := qs.model.exec.Query(ctx, cql, params...)
	if err != nil {
		return queryErr("select", qs.model.schema.TableName, cql, err)
	}
	results := make([]Record, 0, len(rows))
	for _, row := range rows {
		results = append(results, qs.model.mapRow(row))
	}
	qs.results = results
	qs.materialized = true
	return nil
}

// cached returns the result cache and whether it has been filled.
func (qs *QuerySet) cached() ([]Record, bool) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	return qs.results, qs.materialized
}

// All executes the query on first call and returns every matching record.
// Subsequent calls return the cached slice without touching the store.
func (qs *QuerySet) All(ctx context.Context) ([]Record, error) {
	if err := qs.materialize(ctx); err != nil {
		return nil, err
	}
	records, _ := qs.cached()
	return records, nil
}

// Each materializes the query and invokes fn per record, stopping on the
// first error.
func (qs *QuerySet) Each(ctx context.Context, fn func(Record) error) error {
	records, err := qs.All(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// First returns the first matching record, or nil when nothing matches.
// When the queryset is unmaterialized and carries no limit, a LIMIT 1 is
// applied before compiling so no surplus rows are fetched.
func (qs *QuerySet) First(ctx context.Context) (Record, error) {
	if records, ok := qs.cached(); ok {
		if len(records) == 0 {
			return nil, nil
		}
		return records[0], nil
	}
	if qs.limit == 0 {
		return qs.Limit(1).First(ctx)
	}
	records, err := qs.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Count returns the number of matching rows via the count compiler path,
// short-circuiting to the cache length when already materialized.
func (qs *QuerySet) Count(ctx context.Context) (int64, error) {
	if records, ok := qs.cached(); ok {
		return int64(len(records)), nil
	}
	if qs.err != nil {
		return 0, qs.err
	}
	cql, params, err := compiler.CompileCount(qs.model.schema, qs.filters)
	if err != nil {
		return 0, err
	}
	rows, err := qs.model.exec.Query(ctx, cql, params...)
	if err != nil {
		return 0, queryErr("count", qs.model.schema.TableName, cql, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return countValue(rows[0]), nil
}

// Exists reports whether at least one row matches, using a LIMIT 1 select
// over the first partition-key column. Short-circuits on the cache.
func (qs *QuerySet) Exists(ctx context.Context) (bool, error) {
	if records, ok := qs.cached(); ok {
		return len(records) > 0, nil
	}
	if qs.err != nil {
		return false, qs.err
	}
	cols := qs.model.schema.PartitionKeys[:1]
	cql, params, err := compiler.CompileSelect(qs.model.schema, cols, qs.filters, 1, nil, qs.allowFiltering)
	if err != nil {
		return false, err
	}
	rows, err := qs.model.exec.Query(ctx, cql, params...)
	if err != nil {
		return false, queryErr("exists", qs.model.schema.TableName, cql, err)
	}
	return len(rows) > 0, nil
}

// Delete removes the rows matching the predicates. The predicate set must
// be non-empty and cover every partition key; both this guard and the
// compiler's own must hold before anything is dispatched. The returned
// count is a sentinel meaning "operation accepted": the store does not
// report exact row counts for partition deletes.
func (qs *QuerySet) Delete(ctx context.Context) (int64, error) {
	if qs.err != nil {
		return 0, qs.err
	}
	if qs.filters.Len() == 0 {
		return 0, queryErr("delete", qs.model.schema.TableName, "",
			compiler.ErrUnsafeOperation)
	}
	filtered := make(map[string]bool, qs.filters.Len())
	for _, path := range qs.filters.Paths() {
		filtered[compiler.FieldName(path)] = true
	}
	for _, pk := range qs.model.schema.PartitionKeys {
		if !filtered[pk] {
			return 0, queryErr("delete", qs.model.schema.TableName, "",
				compiler.ErrUnsafeOperation)
		}
	}

	cql, params, err := compiler.CompileDelete(qs.model.schema, qs.filters)
	if err != nil {
		return 0, err
	}
	if err := qs.model.exec.Exec(ctx, cql, params...); err != nil {
		return 0, queryErr("delete", qs.model.schema.TableName, cql, err)
	}
	debug.Info("deleted records", "table", qs.model.schema.TableName, "filters", qs.filters.String())
	return 1, nil
}

// Page holds one page of results plus the opaque continuation token for the
// next page. The token is produced and consumed only by the executor.
type Page struct {
	Records   []Record
	PageState []byte
	HasMore   bool
}

// Page fetches one page of results. Pass nil pageState for the first page
// and the previous page's token afterwards. Paged reads never touch the
// result cache.
func (qs *QuerySet) Page(ctx context.Context, pageSize int, pageState []byte) (*Page, error) {
	if qs.err != nil {
		return nil, qs.err
	}
	cql, params, err := compiler.CompileSelect(qs.model.schema, nil, qs.filters, 0, qs.ordering, qs.allowFiltering)
	if err != nil {
		return nil, err
	}
	rows, next, more, err := qs.model.exec.QueryPage(ctx, cql, params, pageSize, pageState)
	if err != nil {
		return nil, queryErr("page", qs.model.schema.TableName, cql, err)
	}
	page := &Page{PageState: next, HasMore: more, Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		page.Records = append(page.Records, qs.model.mapRow(row))
	}
	return page, nil
}

// countValue extracts the aggregate from a COUNT(*) result row.
func countValue(row Row) int64 {
	for _, v := range row {
		switch n := v.(type) {
		case int64:
			return n
		case int:
			return int64(n)
		}
	}
	return 0
}
