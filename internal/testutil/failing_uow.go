package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/staffplan/internal/db"
)

// FailingExecUoW injects Err into the FailOn-th write inside a transaction,
// so rollback tests can break a multi-row ledger write halfway through.
// When Table is set only statements mentioning that table are counted.
// Reads are never counted.
type FailingExecUoW struct {
	DB     *sql.DB
	Table  string
	FailOn int32
	Err    error
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingExec{DBTX: tx, table: u.Table, failOn: u.FailOn, err: u.Err}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingExec struct {
	db.DBTX
	table  string
	seen   atomic.Int32
	failOn int32
	err    error
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.table == "" || strings.Contains(query, f.table) {
		if f.seen.Add(1) == f.failOn {
			return nil, f.err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
