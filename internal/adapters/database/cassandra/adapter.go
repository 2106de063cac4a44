// Package cassandra implements the execution and introspection boundary on
// gocql. The adapter owns the session, consistency level and prepared
// statement reuse; everything above it works with compiled CQL only.
package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/casql/casql/schemasync"
	"github.com/casql/casql/internal/debug"
	"github.com/casql/casql/runtime"
)

// Config holds cluster connection settings.
type Config struct {
	Hosts          []string
	Port           int
	Keyspace       string
	Username       string
	Password       string
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// Adapter wraps a gocql session. It satisfies runtime.Executor as well as
// the synchronizer's Executor and Introspector interfaces.
type Adapter struct {
	session  *gocql.Session
	keyspace string
}

// Connect builds the cluster configuration, opens a session and verifies it
// with a probe against system.local.
func Connect(cfg Config) (*Adapter, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("cassandra: at least one host is required")
	}
	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.Port != 0 {
		cluster.Port = cfg.Port
	}
	if cfg.Keyspace != "" {
		cluster.Keyspace = cfg.Keyspace
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	if cluster.Timeout == 0 {
		cluster.Timeout = 10 * time.Second
	}
	cluster.ConnectTimeout = cfg.ConnectTimeout
	if cluster.ConnectTimeout == 0 {
		cluster.ConnectTimeout = 10 * time.Second
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: connect: %w", err)
	}
	if err := session.Query("SELECT release_version FROM system.local").Scan(new(string)); err != nil {
		session.Close()
		return nil, fmt.Errorf("cassandra: connection probe: %w", err)
	}

	debug.Debug("connected to cassandra", "hosts", cfg.Hosts, "keyspace", cfg.Keyspace)
	return &Adapter{session: session, keyspace: cfg.Keyspace}, nil
}

// Close shuts the session down.
func (a *Adapter) Close() {
	a.session.Close()
}

// Keyspace returns the session's keyspace.
func (a *Adapter) Keyspace() string { return a.keyspace }

// Query runs a statement and collects every row.
func (a *Adapter) Query(ctx context.Context, cql string, params ...any) ([]runtime.Row, error) {
	iter := a.session.Query(cql, params...).WithContext(ctx).Iter()
	var rows []runtime.Row
	for {
		row := make(map[string]any)
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, runtime.Row(row))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryPage runs a statement returning a single page. Setting a page state
// on the query disables the driver's auto paging, so the iterator holds
// exactly one page; the returned token resumes from the page boundary.
func (a *Adapter) QueryPage(ctx context.Context, cql string, params []any, pageSize int, pageState []byte) ([]runtime.Row, []byte, bool, error) {
	q := a.session.Query(cql, params...).WithContext(ctx).PageSize(pageSize).PageState(pageState)
	iter := q.Iter()
	next := iter.PageState()

	var rows []runtime.Row
	for {
		row := make(map[string]any)
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, runtime.Row(row))
	}
	if err := iter.Close(); err != nil {
		return nil, nil, false, err
	}
	return rows, next, len(next) > 0, nil
}

// Exec runs a statement that returns no rows.
func (a *Adapter) Exec(ctx context.Context, cql string, params ...any) error {
	return a.session.Query(cql, params...).WithContext(ctx).Exec()
}

// ExecBatch submits the statements as one logged batch, giving the group
// atomic visibility.
func (a *Adapter) ExecBatch(ctx context.Context, stmts []runtime.Statement) error {
	batch := a.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, stmt := range stmts {
		batch.Query(stmt.CQL, stmt.Params...)
	}
	return a.session.ExecuteBatch(batch)
}

var _ runtime.Executor = (*Adapter)(nil)
var _ schemasync.Introspector = (*Adapter)(nil)
var _ schemasync.Executor = (*Adapter)(nil)
