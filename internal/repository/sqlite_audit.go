package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// SQLiteAuditRepo implements AuditRepo using a SQLite database.
type SQLiteAuditRepo struct {
	db db.DBTX
}

// NewSQLiteAuditRepo creates a new SQLiteAuditRepo.
func NewSQLiteAuditRepo(conn db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: conn}
}

func (r *SQLiteAuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	query := `INSERT INTO allocation_audit (id, phase_allocation_id, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query,
		e.ID, e.PhaseAllocationID, string(e.Action), e.Detail, formatTime(e.CreatedAt)); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// ListByAllocation returns the trail of an allocation, oldest first. Entries
// survive the deletion of the allocation.
func (r *SQLiteAuditRepo) ListByAllocation(ctx context.Context, phaseAllocationID string) ([]*domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, phase_allocation_id, action, detail, created_at
		FROM allocation_audit WHERE phase_allocation_id = ? ORDER BY created_at, rowid`, phaseAllocationID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var action, createdAt string
		if err := rows.Scan(&e.ID, &e.PhaseAllocationID, &action, &e.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Action = domain.AuditAction(action)
		if e.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return out, nil
}
