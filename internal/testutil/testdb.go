package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory ledger database that is closed when
// the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening in-memory ledger")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
