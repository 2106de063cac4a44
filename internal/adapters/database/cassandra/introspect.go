package cassandra

import (
	"context"
	"fmt"
	"sort"

	"github.com/casql/casql/schemasync"
)

// columnRow is one system_schema.columns entry.
type columnRow struct {
	name     string
	kind     string
	position int
	cqlType  string
}

// TableSchema reads the live definition of a table from the metadata
// catalog. Returns nil with no error when the table does not exist.
func (a *Adapter) TableSchema(ctx context.Context, table string) (*schemasync.LiveSchema, error) {
	iter := a.session.Query(`
		SELECT column_name, kind, position, type
		FROM system_schema.columns
		WHERE keyspace_name = ? AND table_name = ?
	`, a.keyspace, table).WithContext(ctx).Iter()

	var cols []columnRow
	var col columnRow
	for iter.Scan(&col.name, &col.kind, &col.position, &col.cqlType) {
		cols = append(cols, col)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("cassandra: columns of %s.%s: %w", a.keyspace, table, err)
	}
	if len(cols) == 0 {
		return nil, nil
	}

	live := &schemasync.LiveSchema{Fields: make(map[string]schemasync.LiveField, len(cols))}
	var partition, clustering []columnRow
	for _, c := range cols {
		live.Fields[c.name] = schemasync.LiveField{Type: c.cqlType, Kind: c.kind}
		switch c.kind {
		case "partition_key":
			partition = append(partition, c)
		case "clustering":
			clustering = append(clustering, c)
		}
	}

	// system_schema does not allow ORDER BY here; key order comes from the
	// position column.
	sort.Slice(partition, func(i, j int) bool { return partition[i].position < partition[j].position })
	sort.Slice(clustering, func(i, j int) bool { return clustering[i].position < clustering[j].position })
	for _, c := range partition {
		live.PartitionKeys = append(live.PartitionKeys, c.name)
	}
	for _, c := range clustering {
		live.ClusteringKeys = append(live.ClusteringKeys, c.name)
	}

	return live, nil
}

// Indexes returns the names of the table's live secondary indexes.
func (a *Adapter) Indexes(ctx context.Context, table string) (map[string]struct{}, error) {
	iter := a.session.Query(`
		SELECT index_name
		FROM system_schema.indexes
		WHERE keyspace_name = ? AND table_name = ?
	`, a.keyspace, table).WithContext(ctx).Iter()

	indexes := make(map[string]struct{})
	var name string
	for iter.Scan(&name) {
		indexes[name] = struct{}{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("cassandra: indexes of %s.%s: %w", a.keyspace, table, err)
	}
	return indexes, nil
}
