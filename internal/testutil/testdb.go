package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/plansheet/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory sheet database that is closed when
// the test ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening sheet database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps database in the production unit of work.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows returns how many records table holds.
func CountRows(t testing.TB, conn db.DBTX, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
