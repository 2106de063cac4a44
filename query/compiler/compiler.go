// Package compiler turns schema descriptors and declarative operation
// parameters into CQL text plus positional parameters. Every function is
// pure: no I/O, no state, identical output for identical input.
package compiler

import (
	"fmt"
	"strings"

	"github.com/casql/casql/schema"
)

// CompileInsert emits an INSERT covering every declared field in schema
// order. The caller binds values in the same order. Cassandra inserts are
// plain upserts; the statement carries no IF NOT EXISTS clause, so the last
// write wins by timestamp.
func CompileInsert(s *schema.TableSchema) (string, error) {
	if len(s.FieldOrder) == 0 {
		return "", schemaErrorf("table %q declares no fields", s.TableName)
	}
	placeholders := strings.Repeat(", ?", len(s.FieldOrder))[2:]
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.TableName, strings.Join(s.FieldOrder, ", "), placeholders), nil
}

// CompileSelect emits a SELECT. Parameter order is exactly clause emission
// order: filter values first (filter insertion order, IN filters expanding
// to one placeholder per element), then the limit when set. A zero limit
// means no LIMIT clause.
func CompileSelect(s *schema.TableSchema, columns []string, filters *Filters, limit int, ordering []string, allowFiltering bool) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(columns) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(columns, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(s.TableName)

	params, err := writeWhere(&b, filters)
	if err != nil {
		return "", nil, err
	}

	if len(ordering) > 0 {
		b.WriteString(" ORDER BY ")
		for i, field := range ordering {
			if i > 0 {
				b.WriteString(", ")
			}
			if name, ok := strings.CutPrefix(field, "-"); ok {
				b.WriteString(name)
				b.WriteString(" DESC")
			} else {
				b.WriteString(field)
				b.WriteString(" ASC")
			}
		}
	}

	if limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, limit)
	}

	if allowFiltering {
		b.WriteString(" ALLOW FILTERING")
	}

	return b.String(), params, nil
}

// CompileCount emits a SELECT COUNT(*) with the same filter handling as
// CompileSelect. Count queries are assumed to need full-partition scans, so
// the ALLOW FILTERING suffix is always appended.
func CompileCount(s *schema.TableSchema, filters *Filters) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(s.TableName)

	params, err := writeWhere(&b, filters)
	if err != nil {
		return "", nil, err
	}

	b.WriteString(" ALLOW FILTERING")
	return b.String(), params, nil
}

// CompileDelete emits a DELETE. The store resolves deletes by partition, so
// the predicate set must be non-empty, cover every partition key, and name
// only primary-key fields with exact matches. The WHERE clause is emitted in
// primary-key schema order for determinism, not filter insertion order.
func CompileDelete(s *schema.TableSchema, filters *Filters) (string, []any, error) {
	if filters.Len() == 0 {
		return "", nil, unsafeErrorf("delete on %s without predicates is not allowed", s.TableName)
	}

	byField := make(map[string]any, filters.Len())
	for _, path := range filters.Paths() {
		field, op, err := ParsePath(path)
		if err != nil {
			return "", nil, err
		}
		if op != OpEq {
			return "", nil, compileErrorf("delete predicate on %q must be an exact match", field)
		}
		if !s.IsPrimaryKey(field) {
			return "", nil, unsafeErrorf("delete predicate on %q is not a primary key of %s", field, s.TableName)
		}
		v, _ := filters.Get(path)
		byField[field] = v
	}

	for _, pk := range s.PartitionKeys {
		if _, ok := byField[pk]; !ok {
			return "", nil, unsafeErrorf("delete on %s must specify every partition key, missing %q", s.TableName, pk)
		}
	}

	var clauses []string
	var params []any
	for _, key := range s.PrimaryKeys() {
		if v, ok := byField[key]; ok {
			clauses = append(clauses, key+" = ?")
			params = append(params, v)
		}
	}

	cql := fmt.Sprintf("DELETE FROM %s WHERE %s", s.TableName, strings.Join(clauses, " AND "))
	return cql, params, nil
}

// CompileUpdate emits an UPDATE. Assignments keep their insertion order in
// the SET clause; the WHERE clause names every primary-key field in schema
// order. Parameters are the update values followed by the key values.
func CompileUpdate(s *schema.TableSchema, set *Assignments, keys map[string]any) (string, []any, error) {
	if set.Len() == 0 {
		return "", nil, compileErrorf("update on %s has no fields to set", s.TableName)
	}

	var setClauses []string
	var params []any
	for _, field := range set.Fields() {
		setClauses = append(setClauses, field+" = ?")
		v, _ := set.Get(field)
		params = append(params, v)
	}

	whereClauses, keyParams, err := primaryKeyWhere(s, keys, "update")
	if err != nil {
		return "", nil, err
	}
	params = append(params, keyParams...)

	cql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		s.TableName, strings.Join(setClauses, ", "), strings.Join(whereClauses, " AND "))
	return cql, params, nil
}

// CompileCollectionUpdate emits an UPDATE appending to or removing from a
// collection column: "SET f = f + ?" for adds and "SET f = f - ?" for
// removals, both in one statement when both are given.
func CompileCollectionUpdate(s *schema.TableSchema, field string, add, remove any, keys map[string]any) (string, []any, error) {
	if add == nil && remove == nil {
		return "", nil, compileErrorf("collection update on %s.%s requires elements to add or remove", s.TableName, field)
	}
	if !s.HasField(field) {
		return "", nil, compileErrorf("collection update on unknown field %s.%s", s.TableName, field)
	}

	var setClauses []string
	var params []any
	if add != nil {
		setClauses = append(setClauses, fmt.Sprintf("%s = %s + ?", field, field))
		params = append(params, add)
	}
	if remove != nil {
		setClauses = append(setClauses, fmt.Sprintf("%s = %s - ?", field, field))
		params = append(params, remove)
	}

	whereClauses, keyParams, err := primaryKeyWhere(s, keys, "collection update")
	if err != nil {
		return "", nil, err
	}
	params = append(params, keyParams...)

	cql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		s.TableName, strings.Join(setClauses, ", "), strings.Join(whereClauses, " AND "))
	return cql, params, nil
}

// CompileCreateTable emits a CREATE TABLE IF NOT EXISTS with the primary key
// derived from the descriptor. A composite partition key is parenthesized as
// a tuple; a single partition key is written bare, matching the store's
// shorthand.
func CompileCreateTable(s *schema.TableSchema) (string, error) {
	if len(s.PartitionKeys) == 0 {
		return "", schemaErrorf("table %q has no partition key", s.TableName)
	}

	defs := make([]string, 0, len(s.FieldOrder)+1)
	for _, name := range s.FieldOrder {
		defs = append(defs, name+" "+s.Fields[name].Type)
	}

	var pk string
	if len(s.PartitionKeys) > 1 {
		pk = "(" + strings.Join(s.PartitionKeys, ", ") + ")"
	} else {
		pk = s.PartitionKeys[0]
	}
	if len(s.ClusteringKeys) > 0 {
		pk += ", " + strings.Join(s.ClusteringKeys, ", ")
	}
	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", pk))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.TableName, strings.Join(defs, ", ")), nil
}

// CompileAddColumn emits the ALTER adding a single column.
func CompileAddColumn(table, column, cqlType string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s %s;", table, column, cqlType)
}

// CompileDropColumn emits the ALTER dropping a single column. The
// synchronizer never executes this automatically; it is reported for manual
// use only.
func CompileDropColumn(table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP %s;", table, column)
}

// CompileCreateIndex emits a secondary index creation for one field. The
// index name follows the <table>_<field>_idx convention.
func CompileCreateIndex(table, field string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);", IndexName(table, field), table, field)
}

// IndexName returns the conventional secondary index name for a field.
func IndexName(table, field string) string {
	return fmt.Sprintf("%s_%s_idx", table, field)
}

// writeWhere appends a WHERE clause for the predicate set, returning the
// bound parameters in emission order. No clause is written for an empty set.
func writeWhere(b *strings.Builder, filters *Filters) ([]any, error) {
	conds, err := filters.normalize()
	if err != nil {
		return nil, err
	}
	if len(conds) == 0 {
		return nil, nil
	}

	var params []any
	b.WriteString(" WHERE ")
	for i, cond := range conds {
		if i > 0 {
			b.WriteString(" AND ")
		}
		if cond.op == OpIn {
			elems, err := sequenceValues(cond.field, cond.value)
			if err != nil {
				return nil, err
			}
			placeholders := make([]string, len(elems))
			for j := range elems {
				placeholders[j] = "?"
			}
			fmt.Fprintf(b, "%s IN (%s)", cond.field, strings.Join(placeholders, ", "))
			params = append(params, elems...)
			continue
		}
		fmt.Fprintf(b, "%s %s ?", cond.field, cond.op.symbol())
		params = append(params, cond.value)
	}
	return params, nil
}

// primaryKeyWhere builds the WHERE clause covering every primary-key field
// in schema order from a plain field to value map.
func primaryKeyWhere(s *schema.TableSchema, keys map[string]any, op string) ([]string, []any, error) {
	if len(keys) == 0 {
		return nil, nil, compileErrorf("%s on %s requires primary key values", op, s.TableName)
	}
	var clauses []string
	var params []any
	for _, key := range s.PrimaryKeys() {
		v, ok := keys[key]
		if !ok {
			return nil, nil, unsafeErrorf("%s on %s must name every primary key, missing %q", op, s.TableName, key)
		}
		clauses = append(clauses, key+" = ?")
		params = append(params, v)
	}
	return clauses, params, nil
}
