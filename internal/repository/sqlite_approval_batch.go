package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// SQLiteApprovalBatchRepo implements ApprovalBatchRepo using a SQLite database.
type SQLiteApprovalBatchRepo struct {
	db db.DBTX
}

// NewSQLiteApprovalBatchRepo creates a new SQLiteApprovalBatchRepo.
func NewSQLiteApprovalBatchRepo(conn db.DBTX) *SQLiteApprovalBatchRepo {
	return &SQLiteApprovalBatchRepo{db: conn}
}

func (r *SQLiteApprovalBatchRepo) Create(ctx context.Context, b *domain.ApprovalBatch) error {
	query := `INSERT INTO approval_batches (id, action, item_count, updated_count, failed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		b.ID, string(b.Action), b.ItemCount, b.UpdatedCount, b.FailedCount, formatTime(b.CreatedAt)); err != nil {
		return fmt.Errorf("inserting approval batch: %w", err)
	}
	return nil
}

func (r *SQLiteApprovalBatchRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalBatch, error) {
	var b domain.ApprovalBatch
	var action, createdAt string
	err := r.db.QueryRowContext(ctx, `SELECT id, action, item_count, updated_count, failed_count, created_at
		FROM approval_batches WHERE id = ?`, id).
		Scan(&b.ID, &action, &b.ItemCount, &b.UpdatedCount, &b.FailedCount, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("approval batch", id)
		}
		return nil, fmt.Errorf("scanning approval batch: %w", err)
	}
	b.Action = domain.WeeklyEvent(action)
	if b.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &b, nil
}
