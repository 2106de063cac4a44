package runtime_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/casql/casql/schema"
	"github.com/casql/casql/internal/debug"
	"github.com/casql/casql/runtime"
)

func TestMain(m *testing.M) {
	debug.Silence()
	os.Exit(m.Run())
}

// fakeExecutor records every call so tests can assert execution count,
// statement text and parameter order without a live cluster.
type fakeExecutor struct {
	mu sync.Mutex

	queryCalls int
	execCalls  int
	batchCalls int

	rows     []runtime.Row
	queryErr error
	execErr  error

	lastCQL    string
	lastParams []any

	batches [][]runtime.Statement

	pageRows []runtime.Row
	pageNext []byte
	pageMore bool
}

func (f *fakeExecutor) Query(_ context.Context, cql string, params ...any) ([]runtime.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	f.lastCQL = cql
	f.lastParams = params
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeExecutor) QueryPage(_ context.Context, cql string, params []any, _ int, _ []byte) ([]runtime.Row, []byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	f.lastCQL = cql
	f.lastParams = params
	if f.queryErr != nil {
		return nil, nil, false, f.queryErr
	}
	return f.pageRows, f.pageNext, f.pageMore, nil
}

func (f *fakeExecutor) Exec(_ context.Context, cql string, params ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls++
	f.lastCQL = cql
	f.lastParams = params
	return f.execErr
}

func (f *fakeExecutor) ExecBatch(_ context.Context, stmts []runtime.Statement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	f.batches = append(f.batches, stmts)
	return f.execErr
}

func eventSchema() *schema.TableSchema {
	return &schema.TableSchema{
		TableName:  "events",
		FieldOrder: []string{"tenant_id", "created_at", "status", "payload"},
		Fields: map[string]schema.FieldSpec{
			"tenant_id":  {Type: "text", Required: true},
			"created_at": {Type: "timestamp", Required: true},
			"status":     {Type: "text"},
			"payload":    {Type: "blob"},
		},
		PartitionKeys:  []string{"tenant_id"},
		ClusteringKeys: []string{"created_at"},
		Indexes:        []string{"status"},
	}
}

func newEventModel(t *testing.T, exec *fakeExecutor) *runtime.Model {
	t.Helper()
	m, err := runtime.NewModel(eventSchema(), exec)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}
