package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UnitOfWork runs a ledger write inside one transaction. The callback gets a
// DBTX backed by the *sql.Tx and builds tx-scoped repositories from it.
// Nothing inside the callback may touch the pool: an in-memory database has
// a single connection and the transaction owns it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork is the database/sql UnitOfWork. Each transaction is
// traced as a "sqlite.tx" span.
type SQLiteUnitOfWork struct {
	db     *sql.DB
	tracer trace.Tracer
}

type UnitOfWorkOption func(*SQLiteUnitOfWork)

// WithTracerProvider traces transactions on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) UnitOfWorkOption {
	return func(u *SQLiteUnitOfWork) {
		u.tracer = tp.Tracer("github.com/alexanderramin/staffplan/internal/db")
	}
}

func NewSQLiteUnitOfWork(db *sql.DB, opts ...UnitOfWorkOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{
		db:     db,
		tracer: otel.Tracer("github.com/alexanderramin/staffplan/internal/db"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	ctx, span := u.tracer.Start(ctx, "sqlite.tx")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning ledger transaction: %w", err)
	}
	return runTx(ctx, tx, fn)
}

// runTx calls fn with tx, committing on success and rolling back on error or
// panic. A panic is re-raised after the rollback.
func runTx(ctx context.Context, tx *sql.Tx, fn func(ctx context.Context, tx DBTX) error) error {
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		finished = true
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger transaction: %w", err)
	}
	finished = true
	return nil
}
