package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casql/casql/query/compiler"
	"github.com/casql/casql/schema"
)

func userSchema() *schema.TableSchema {
	return &schema.TableSchema{
		TableName:  "users",
		FieldOrder: []string{"id", "name", "age", "emails"},
		Fields: map[string]schema.FieldSpec{
			"id":     {Type: "uuid", Required: true},
			"name":   {Type: "text"},
			"age":    {Type: "int"},
			"emails": {Type: "set<text>"},
		},
		PartitionKeys: []string{"id"},
	}
}

func orderSchema() *schema.TableSchema {
	return &schema.TableSchema{
		TableName:  "orders",
		FieldOrder: []string{"user_id", "order_id", "amount"},
		Fields: map[string]schema.FieldSpec{
			"user_id":  {Type: "uuid", Required: true},
			"order_id": {Type: "uuid", Required: true},
			"amount":   {Type: "decimal"},
		},
		PartitionKeys:  []string{"user_id"},
		ClusteringKeys: []string{"order_id"},
	}
}

func filters(pairs ...any) *compiler.Filters {
	f := compiler.NewFilters()
	for i := 0; i < len(pairs); i += 2 {
		f.Set(pairs[i].(string), pairs[i+1])
	}
	return f
}

func TestCompileInsert(t *testing.T) {
	cql, err := compiler.CompileInsert(userSchema())
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (id, name, age, emails) VALUES (?, ?, ?, ?)", cql)
}

func TestCompileSelect(t *testing.T) {
	tests := []struct {
		name           string
		columns        []string
		filters        *compiler.Filters
		limit          int
		ordering       []string
		allowFiltering bool
		wantCQL        string
		wantParams     []any
	}{
		{
			name:    "no filters",
			wantCQL: "SELECT * FROM users",
		},
		{
			name:       "exact filter",
			filters:    filters("id", "123"),
			wantCQL:    "SELECT * FROM users WHERE id = ?",
			wantParams: []any{"123"},
		},
		{
			name:       "two exact filters",
			filters:    filters("name", "Alice", "age", 30),
			wantCQL:    "SELECT * FROM users WHERE name = ? AND age = ?",
			wantParams: []any{"Alice", 30},
		},
		{
			name:       "greater than",
			filters:    filters("age__gt", 25),
			wantCQL:    "SELECT * FROM users WHERE age > ?",
			wantParams: []any{25},
		},
		{
			name:       "less than with explicit exact",
			filters:    filters("age__lt", 40, "name__exact", "Bob"),
			wantCQL:    "SELECT * FROM users WHERE age < ? AND name = ?",
			wantParams: []any{40, "Bob"},
		},
		{
			name:       "in expands one placeholder per element",
			filters:    filters("id__in", []string{"1", "2", "3"}),
			wantCQL:    "SELECT * FROM users WHERE id IN (?, ?, ?)",
			wantParams: []any{"1", "2", "3"},
		},
		{
			name:       "limit only",
			limit:      10,
			wantCQL:    "SELECT * FROM users LIMIT ?",
			wantParams: []any{10},
		},
		{
			name:       "filter and limit",
			filters:    filters("age__gte", 18),
			limit:      5,
			wantCQL:    "SELECT * FROM users WHERE age >= ? LIMIT ?",
			wantParams: []any{18, 5},
		},
		{
			name:     "ascending order",
			ordering: []string{"name"},
			wantCQL:  "SELECT * FROM users ORDER BY name ASC",
		},
		{
			name:     "mixed order",
			ordering: []string{"-age", "name"},
			wantCQL:  "SELECT * FROM users ORDER BY age DESC, name ASC",
		},
		{
			name:           "allow filtering suffix",
			filters:        filters("age__gt", 25),
			allowFiltering: true,
			wantCQL:        "SELECT * FROM users WHERE age > ? ALLOW FILTERING",
			wantParams:     []any{25},
		},
		{
			name:    "explicit columns",
			columns: []string{"name", "age"},
			wantCQL: "SELECT name, age FROM users",
		},
		{
			name:       "contains maps to CONTAINS",
			filters:    filters("emails__contains", "a@b.com"),
			wantCQL:    "SELECT * FROM users WHERE emails CONTAINS ?",
			wantParams: []any{"a@b.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cql, params, err := compiler.CompileSelect(userSchema(), tt.columns, tt.filters, tt.limit, tt.ordering, tt.allowFiltering)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCQL, cql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestCompileSelect_ParamCountMatchesExpansion(t *testing.T) {
	// An IN filter with N values contributes N params, plus one for limit.
	f := filters("id__in", []string{"a", "b", "c", "d"}, "age__gt", 1)
	_, params, err := compiler.CompileSelect(userSchema(), nil, f, 7, nil, false)
	require.NoError(t, err)
	assert.Len(t, params, 6)
}

func TestCompileSelect_UnsupportedOperator(t *testing.T) {
	_, _, err := compiler.CompileSelect(userSchema(), nil, filters("name__unsupported", "x"), 0, nil, false)
	require.ErrorIs(t, err, compiler.ErrCompile)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestCompileSelect_InRequiresSequence(t *testing.T) {
	_, _, err := compiler.CompileSelect(userSchema(), nil, filters("id__in", "1,2,3"), 0, nil, false)
	require.ErrorIs(t, err, compiler.ErrCompile)
}

func TestCompileCount(t *testing.T) {
	tests := []struct {
		name       string
		filters    *compiler.Filters
		wantCQL    string
		wantParams []any
	}{
		{
			name:    "no filters",
			wantCQL: "SELECT COUNT(*) FROM users ALLOW FILTERING",
		},
		{
			name:       "with comparison",
			filters:    filters("age__gt", 25),
			wantCQL:    "SELECT COUNT(*) FROM users WHERE age > ? ALLOW FILTERING",
			wantParams: []any{25},
		},
		{
			name:       "with in filter",
			filters:    filters("id__in", []string{"1", "2"}),
			wantCQL:    "SELECT COUNT(*) FROM users WHERE id IN (?, ?) ALLOW FILTERING",
			wantParams: []any{"1", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cql, params, err := compiler.CompileCount(userSchema(), tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCQL, cql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestCompileDelete(t *testing.T) {
	cql, params, err := compiler.CompileDelete(userSchema(), filters("id", "123"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id = ?", cql)
	assert.Equal(t, []any{"123"}, params)
}

func TestCompileDelete_CompositeKeySchemaOrder(t *testing.T) {
	// WHERE order follows the primary-key schema order, not filter order.
	f := filters("order_id", "o1", "user_id", "u1")
	cql, params, err := compiler.CompileDelete(orderSchema(), f)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM orders WHERE user_id = ? AND order_id = ?", cql)
	assert.Equal(t, []any{"u1", "o1"}, params)
}

func TestCompileDelete_PartitionKeyOnly(t *testing.T) {
	// Partition key coverage without clustering keys is legal; the delete
	// removes the whole partition.
	cql, params, err := compiler.CompileDelete(orderSchema(), filters("user_id", "u1"))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM orders WHERE user_id = ?", cql)
	assert.Equal(t, []any{"u1"}, params)
}

func TestCompileDelete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.TableSchema
		filters *compiler.Filters
		wantErr error
	}{
		{
			name:    "no filters",
			schema:  userSchema(),
			filters: compiler.NewFilters(),
			wantErr: compiler.ErrUnsafeOperation,
		},
		{
			name:    "missing partition key",
			schema:  userSchema(),
			filters: filters("name", "Alice"),
			wantErr: compiler.ErrUnsafeOperation,
		},
		{
			name:    "clustering without partition key",
			schema:  orderSchema(),
			filters: filters("order_id", "o1"),
			wantErr: compiler.ErrUnsafeOperation,
		},
		{
			name:    "non-exact predicate",
			schema:  userSchema(),
			filters: filters("id__gt", "1"),
			wantErr: compiler.ErrCompile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compiler.CompileDelete(tt.schema, tt.filters)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompileUpdate(t *testing.T) {
	set := compiler.NewAssignments().Set("name", "Bob")
	cql, params, err := compiler.CompileUpdate(userSchema(), set, map[string]any{"id": "123"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name = ? WHERE id = ?", cql)
	assert.Equal(t, []any{"Bob", "123"}, params)
}

func TestCompileUpdate_MultipleFieldsKeepInsertionOrder(t *testing.T) {
	set := compiler.NewAssignments().Set("age", 31).Set("name", "Charlie")
	cql, params, err := compiler.CompileUpdate(userSchema(), set, map[string]any{"id": "456"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET age = ?, name = ? WHERE id = ?", cql)
	assert.Equal(t, []any{31, "Charlie", "456"}, params)
}

func TestCompileUpdate_CompositeKey(t *testing.T) {
	set := compiler.NewAssignments().Set("amount", 9)
	cql, params, err := compiler.CompileUpdate(orderSchema(), set, map[string]any{"order_id": "o1", "user_id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE orders SET amount = ? WHERE user_id = ? AND order_id = ?", cql)
	assert.Equal(t, []any{9, "u1", "o1"}, params)
}

func TestCompileUpdate_Errors(t *testing.T) {
	_, _, err := compiler.CompileUpdate(userSchema(), compiler.NewAssignments(), map[string]any{"id": "1"})
	require.ErrorIs(t, err, compiler.ErrCompile)

	set := compiler.NewAssignments().Set("name", "Bob")
	_, _, err = compiler.CompileUpdate(userSchema(), set, nil)
	require.ErrorIs(t, err, compiler.ErrCompile)

	// Missing one primary-key field on a composite key.
	_, _, err = compiler.CompileUpdate(orderSchema(), set, map[string]any{"user_id": "u1"})
	require.ErrorIs(t, err, compiler.ErrUnsafeOperation)
}

func TestCompileCollectionUpdate(t *testing.T) {
	keys := map[string]any{"id": "123"}

	cql, params, err := compiler.CompileCollectionUpdate(userSchema(), "emails", []string{"a@b.com"}, nil, keys)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET emails = emails + ? WHERE id = ?", cql)
	assert.Equal(t, []any{[]string{"a@b.com"}, "123"}, params)

	cql, params, err = compiler.CompileCollectionUpdate(userSchema(), "emails", nil, []string{"c@d.com"}, keys)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET emails = emails - ? WHERE id = ?", cql)
	assert.Equal(t, []any{[]string{"c@d.com"}, "123"}, params)

	cql, params, err = compiler.CompileCollectionUpdate(userSchema(), "emails", []string{"x@y.com"}, []string{"z@w.com"}, keys)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET emails = emails + ?, emails = emails - ? WHERE id = ?", cql)
	assert.Equal(t, []any{[]string{"x@y.com"}, []string{"z@w.com"}, "123"}, params)
}

func TestCompileCollectionUpdate_RequiresAddOrRemove(t *testing.T) {
	_, _, err := compiler.CompileCollectionUpdate(userSchema(), "emails", nil, nil, map[string]any{"id": "123"})
	require.ErrorIs(t, err, compiler.ErrCompile)
}

func TestCompileCreateTable(t *testing.T) {
	cql, err := compiler.CompileCreateTable(userSchema())
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS users (id uuid, name text, age int, emails set<text>, PRIMARY KEY (id))", cql)
}

func TestCompileCreateTable_CompositePrimaryKey(t *testing.T) {
	cql, err := compiler.CompileCreateTable(orderSchema())
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS orders (user_id uuid, order_id uuid, amount decimal, PRIMARY KEY (user_id, order_id))", cql)
}

func TestCompileCreateTable_CompositePartitionKey(t *testing.T) {
	s := &schema.TableSchema{
		TableName:  "events",
		FieldOrder: []string{"tenant_id", "region", "created_at", "payload"},
		Fields: map[string]schema.FieldSpec{
			"tenant_id":  {Type: "text", Required: true},
			"region":     {Type: "text", Required: true},
			"created_at": {Type: "timestamp", Required: true},
			"payload":    {Type: "blob"},
		},
		PartitionKeys:  []string{"tenant_id", "region"},
		ClusteringKeys: []string{"created_at"},
	}
	cql, err := compiler.CompileCreateTable(s)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS events (tenant_id text, region text, created_at timestamp, payload blob, PRIMARY KEY ((tenant_id, region), created_at))", cql)
}

func TestCompileCreateTable_NoPartitionKey(t *testing.T) {
	s := &schema.TableSchema{
		TableName:  "orphans",
		FieldOrder: []string{"id"},
		Fields:     map[string]schema.FieldSpec{"id": {Type: "uuid"}},
	}
	_, err := compiler.CompileCreateTable(s)
	require.ErrorIs(t, err, compiler.ErrSchema)
}

func TestDDLEmitters(t *testing.T) {
	assert.Equal(t, "ALTER TABLE users ADD address text;", compiler.CompileAddColumn("users", "address", "text"))
	assert.Equal(t, "ALTER TABLE users DROP address;", compiler.CompileDropColumn("users", "address"))
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS users_address_idx ON users (address);", compiler.CompileCreateIndex("users", "address"))
}

func TestCompileIsDeterministic(t *testing.T) {
	f := filters("name", "Alice", "age__gt", 30)
	first, firstParams, err := compiler.CompileSelect(userSchema(), nil, f, 10, []string{"-age"}, true)
	require.NoError(t, err)
	second, secondParams, err := compiler.CompileSelect(userSchema(), nil, f, 10, []string{"-age"}, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstParams, secondParams)
}

func TestFilters_LaterKeyWins(t *testing.T) {
	f := filters("name", "Alice").Set("name", "Bob")
	cql, params, err := compiler.CompileSelect(userSchema(), nil, f, 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE name = ?", cql)
	assert.Equal(t, []any{"Bob"}, params)
}
