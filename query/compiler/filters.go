package compiler

import (
	"fmt"
	"reflect"
	"strings"
)

// Operator is a filter comparison operator, resolved once from the
// "field__op" path suffix when the filter is added. Unknown suffixes are
// rejected at that point rather than deep in statement emission.
type Operator int

const (
	// OpEq is plain equality, the default when no suffix is given.
	OpEq Operator = iota
	OpGt
	OpGte
	OpLt
	OpLte
	// OpIn expands its sequence value into one placeholder per element.
	OpIn
	// OpContains, OpStartsWith and OpEndsWith compare against collection
	// membership or string equality per the store's capability; Cassandra
	// has no LIKE, so they emit CONTAINS or equality.
	OpContains
	OpStartsWith
	OpEndsWith
)

var operatorNames = map[string]Operator{
	"exact":      OpEq,
	"gt":         OpGt,
	"gte":        OpGte,
	"lt":         OpLt,
	"lte":        OpLte,
	"in":         OpIn,
	"contains":   OpContains,
	"startswith": OpStartsWith,
	"endswith":   OpEndsWith,
}

// symbol returns the CQL comparison token for the operator. OpIn is handled
// separately because it expands placeholders.
func (op Operator) symbol() string {
	switch op {
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpContains:
		return "CONTAINS"
	default:
		// exact, startswith and endswith all resolve to equality.
		return "="
	}
}

// ParsePath splits a filter path into its field name and operator. The path
// grammar is "field" or "field__op".
func ParsePath(path string) (field string, op Operator, err error) {
	field, suffix, found := strings.Cut(path, "__")
	if !found {
		return path, OpEq, nil
	}
	op, ok := operatorNames[suffix]
	if !ok {
		return "", 0, compileErrorf("unsupported filter operator: %q", suffix)
	}
	return field, op, nil
}

// FieldName returns the field part of a filter path, ignoring any operator
// suffix. Used by callers that only need to know which column is filtered.
func FieldName(path string) string {
	field, _, _ := strings.Cut(path, "__")
	return field
}

// Filters is an ordered predicate set mapping filter paths to values.
// Setting an existing path overwrites its value but keeps its original
// position, so merged filter chains compile deterministically.
type Filters struct {
	paths  []string
	values map[string]any
}

// NewFilters returns an empty predicate set.
func NewFilters() *Filters {
	return &Filters{values: make(map[string]any)}
}

// Set adds or overwrites a predicate and returns the receiver for chaining.
func (f *Filters) Set(path string, value any) *Filters {
	if _, ok := f.values[path]; !ok {
		f.paths = append(f.paths, path)
	}
	f.values[path] = value
	return f
}

// Len returns the number of predicates.
func (f *Filters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.paths)
}

// Paths returns the predicate paths in insertion order.
func (f *Filters) Paths() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.paths...)
}

// Get returns the value stored for path.
func (f *Filters) Get(path string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[path]
	return v, ok
}

// Clone returns an independent copy. Used by the queryset's copy-on-write
// builder chain.
func (f *Filters) Clone() *Filters {
	clone := NewFilters()
	if f == nil {
		return clone
	}
	clone.paths = append(clone.paths, f.paths...)
	for k, v := range f.values {
		clone.values[k] = v
	}
	return clone
}

// condition is a normalized predicate ready for emission.
type condition struct {
	field string
	op    Operator
	value any
}

// normalize resolves every path in insertion order, failing on the first
// unsupported operator suffix.
func (f *Filters) normalize() ([]condition, error) {
	if f.Len() == 0 {
		return nil, nil
	}
	conds := make([]condition, 0, len(f.paths))
	for _, path := range f.paths {
		field, op, err := ParsePath(path)
		if err != nil {
			return nil, err
		}
		conds = append(conds, condition{field: field, op: op, value: f.values[path]})
	}
	return conds, nil
}

// sequenceValues converts an IN filter value into its elements. Anything
// that is not a slice or array is an input-contract error.
func sequenceValues(field string, value any) ([]any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, compileErrorf("value for %q __in filter must be a sequence, got %T", field, value)
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, nil
}

// Assignments is an ordered field to value mapping used by update
// compilation. Same structural contract as Filters, without operator paths.
type Assignments struct {
	fields []string
	values map[string]any
}

// NewAssignments returns an empty assignment set.
func NewAssignments() *Assignments {
	return &Assignments{values: make(map[string]any)}
}

// Set adds or overwrites an assignment, preserving first-set order.
func (a *Assignments) Set(field string, value any) *Assignments {
	if _, ok := a.values[field]; !ok {
		a.fields = append(a.fields, field)
	}
	a.values[field] = value
	return a
}

// Len returns the number of assignments.
func (a *Assignments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.fields)
}

// Fields returns the assigned field names in insertion order.
func (a *Assignments) Fields() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.fields...)
}

// Get returns the value assigned to field.
func (a *Assignments) Get(field string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[field]
	return v, ok
}

// String renders the predicate set for diagnostics.
func (f *Filters) String() string {
	if f.Len() == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, path := range f.paths {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", path, f.values[path])
	}
	b.WriteByte('}')
	return b.String()
}
