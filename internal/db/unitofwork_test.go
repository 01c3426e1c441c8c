package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func openLedgerDB(t *testing.T) (*sql.DB, *tracetest.SpanRecorder, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return database, rec, db.NewSQLiteUnitOfWork(database, db.WithTracerProvider(tp))
}

func insertConsultant(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO consultants (id, name, email, created_at) VALUES (?, ?, '', ?)`,
		id, "consultant "+id, time.Now().UTC().Format(time.RFC3339))
	return err
}

func consultantExists(t *testing.T, database *sql.DB, id string) bool {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM consultants WHERE id = ?`, id).Scan(&n))
	return n == 1
}

func TestWithinTx_Commits(t *testing.T) {
	database, rec, uow := openLedgerDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertConsultant(ctx, tx, "c1")
	})
	require.NoError(t, err)
	assert.True(t, consultantExists(t, database, "c1"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sqlite.tx", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	database, rec, uow := openLedgerDB(t)
	boom := errors.New("budget check failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertConsultant(ctx, tx, "c2"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, consultantExists(t, database, "c2"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	database, _, uow := openLedgerDB(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertConsultant(ctx, tx, "c3")
			panic("boom")
		})
	})
	assert.False(t, consultantExists(t, database, "c3"))

	// The single in-memory connection is usable again.
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertConsultant(ctx, tx, "c4")
	})
	require.NoError(t, err)
}
