package sqlbase

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB records every executed statement and answers the schema-version
// query with a fixed value, so migration ordering and skipping can be
// asserted without a real database.
type fakeDB struct {
	currentVersion int64
	execs          []string
	applied        []int64
	failOn         string
	rollbacks      int
	commits        int
}

func (f *fakeDB) Open(_ string) (driver.Conn, error) { return &fakeConn{db: f}, nil }

type fakeConn struct {
	db *fakeDB
}

func (c *fakeConn) Prepare(_ string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare is not supported")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) { return &fakeTx{db: c.db}, nil }

func (c *fakeConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return execOn(c.db, query, args)
}

func (c *fakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if strings.Contains(query, "COALESCE(MAX(version), 0)") {
		return &versionRows{version: c.db.currentVersion}, nil
	}

	return nil, fmt.Errorf("unexpected query: %s", query)
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Commit() error {
	t.db.commits++

	return nil
}

func (t *fakeTx) Rollback() error {
	t.db.rollbacks++

	return nil
}

func execOn(db *fakeDB, query string, args []driver.NamedValue) (driver.Result, error) {
	if db.failOn != "" && strings.Contains(query, db.failOn) {
		return nil, fmt.Errorf("statement rejected")
	}

	db.execs = append(db.execs, query)

	if strings.Contains(query, "INSERT INTO schema_migrations") {
		db.applied = append(db.applied, args[0].Value.(int64))
	}

	return driver.RowsAffected(1), nil
}

type versionRows struct {
	version int64
	done    bool
}

func (r *versionRows) Columns() []string { return []string{"version"} }
func (r *versionRows) Close() error      { return nil }

func (r *versionRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}

	r.done = true
	dest[0] = r.version

	return nil
}

var fakeDriverSeq atomic.Int64

func openFake(t *testing.T, db *fakeDB) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("sqlbase-fake-%d", fakeDriverSeq.Add(1))
	sql.Register(name, db)

	conn, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunMigrations_AppliesInVersionOrder(t *testing.T) {
	db := &fakeDB{}
	migrations := map[int]string{
		3: "CREATE TABLE third (id TEXT)",
		1: "CREATE TABLE first (id TEXT)",
		2: "CREATE TABLE second (id TEXT)",
	}

	manager := NewMigrationManager(discardLogger(), openFake(t, db), migrations)
	require.NoError(t, manager.RunMigrations(context.Background()))

	// Map iteration order must never leak into application order.
	assert.Equal(t, []int64{1, 2, 3}, db.applied)
	assert.Equal(t, 3, db.commits)
	assert.Zero(t, db.rollbacks)

	var ddl []string

	for _, stmt := range db.execs {
		if strings.HasPrefix(stmt, "CREATE TABLE ") && !strings.Contains(stmt, "schema_migrations") {
			ddl = append(ddl, stmt)
		}
	}

	assert.Equal(t, []string{migrations[1], migrations[2], migrations[3]}, ddl)
}

func TestRunMigrations_SkipsAppliedVersions(t *testing.T) {
	db := &fakeDB{currentVersion: 2}
	migrations := map[int]string{
		1: "CREATE TABLE first (id TEXT)",
		2: "CREATE TABLE second (id TEXT)",
		3: "CREATE TABLE third (id TEXT)",
	}

	manager := NewMigrationManager(discardLogger(), openFake(t, db), migrations)
	require.NoError(t, manager.RunMigrations(context.Background()))

	assert.Equal(t, []int64{3}, db.applied)
	assert.Equal(t, 1, db.commits)
}

func TestRunMigrations_NoPendingMigrations(t *testing.T) {
	db := &fakeDB{currentVersion: 1}

	manager := NewMigrationManager(discardLogger(), openFake(t, db), map[int]string{
		1: "CREATE TABLE first (id TEXT)",
	})
	require.NoError(t, manager.RunMigrations(context.Background()))

	assert.Empty(t, db.applied)
	assert.Zero(t, db.commits)

	// Only the bookkeeping table is touched.
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS schema_migrations")
}

func TestRunMigrations_RollsBackFailedMigration(t *testing.T) {
	db := &fakeDB{failOn: "CREATE TABLE broken"}
	migrations := map[int]string{
		1: "CREATE TABLE first (id TEXT)",
		2: "CREATE TABLE broken (id TEXT)",
	}

	manager := NewMigrationManager(discardLogger(), openFake(t, db), migrations)
	err := manager.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2")

	assert.Equal(t, []int64{1}, db.applied)
	assert.Equal(t, 1, db.commits)
	assert.Equal(t, 1, db.rollbacks)
}
