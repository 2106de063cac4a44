package runtime

import "context"

// Row is one result row keyed by column name, as returned by the execution
// collaborator.
type Row map[string]any

// Statement is one compiled query with its positional parameters.
type Statement struct {
	CQL    string
	Params []any
}

// Executor is the execution collaborator boundary. The runtime performs no
// network I/O itself; every compiled statement crosses this interface.
// Implementations own connection pooling, consistency levels, prepared
// statement caching and timeouts.
type Executor interface {
	// Query runs a statement returning rows.
	Query(ctx context.Context, cql string, params ...any) ([]Row, error)

	// QueryPage runs a statement with an explicit page size and an opaque
	// continuation token. The token is produced and consumed only by the
	// implementation; nil requests the first page.
	QueryPage(ctx context.Context, cql string, params []any, pageSize int, pageState []byte) (rows []Row, nextPageState []byte, hasMore bool, err error)

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, cql string, params ...any) error

	// ExecBatch submits the statements as one atomic logged batch.
	ExecBatch(ctx context.Context, stmts []Statement) error
}
