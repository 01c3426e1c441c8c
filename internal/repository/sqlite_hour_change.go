package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// SQLiteHourChangeRepo implements HourChangeRepo using a SQLite database.
type SQLiteHourChangeRepo struct {
	db db.DBTX
}

// NewSQLiteHourChangeRepo creates a new SQLiteHourChangeRepo.
func NewSQLiteHourChangeRepo(conn db.DBTX) *SQLiteHourChangeRepo {
	return &SQLiteHourChangeRepo{db: conn}
}

const hourChangeColumns = `id, phase_allocation_id, change_type, requested_hours,
	from_week_start, to_week_start, reason, status, rejection_reason, decided_at, created_at`

func (r *SQLiteHourChangeRepo) Create(ctx context.Context, hc *domain.HourChangeRequest) error {
	query := `INSERT INTO hour_change_requests (` + hourChangeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		hc.ID,
		hc.PhaseAllocationID,
		string(hc.ChangeType),
		hoursToValue(hc.RequestedHours),
		nullableTimeToString(hc.FromWeekStart, domain.DateLayout),
		nullableTimeToString(hc.ToWeekStart, domain.DateLayout),
		hc.Reason,
		string(hc.Status),
		nullableString(hc.RejectionReason),
		nullableTimeToString(hc.DecidedAt, time.RFC3339Nano),
		formatTime(hc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting hour change request: %w", err)
	}
	return nil
}

func (r *SQLiteHourChangeRepo) GetByID(ctx context.Context, id string) (*domain.HourChangeRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+hourChangeColumns+` FROM hour_change_requests WHERE id = ?`, id)
	hc, err := scanHourChange(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("hour change request", id)
		}
		return nil, err
	}
	return hc, nil
}

// List returns requests with the given status, or every request when status
// is empty.
func (r *SQLiteHourChangeRepo) List(ctx context.Context, status domain.HourChangeStatus) ([]*domain.HourChangeRequest, error) {
	query := `SELECT ` + hourChangeColumns + ` FROM hour_change_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing hour change requests: %w", err)
	}
	defer rows.Close()

	var out []*domain.HourChangeRequest
	for rows.Next() {
		hc, err := scanHourChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, hc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hour change requests: %w", err)
	}
	return out, nil
}

func (r *SQLiteHourChangeRepo) Update(ctx context.Context, hc *domain.HourChangeRequest) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hour_change_requests SET
		status = ?, rejection_reason = ?, decided_at = ? WHERE id = ?`,
		string(hc.Status),
		nullableString(hc.RejectionReason),
		nullableTimeToString(hc.DecidedAt, time.RFC3339Nano),
		hc.ID,
	)
	if err != nil {
		return fmt.Errorf("updating hour change request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("hour change request", hc.ID)
	}
	return nil
}

func scanHourChange(s rowScanner) (*domain.HourChangeRequest, error) {
	var hc domain.HourChangeRequest
	var changeType, requested, status, createdAt string
	var from, to, rejection, decidedAt sql.NullString

	err := s.Scan(&hc.ID, &hc.PhaseAllocationID, &changeType, &requested,
		&from, &to, &hc.Reason, &status, &rejection, &decidedAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning hour change request: %w", err)
	}
	hc.ChangeType = domain.HourChangeType(changeType)
	if hc.RequestedHours, err = parseHours(requested, "requested_hours"); err != nil {
		return nil, err
	}
	hc.FromWeekStart = parseNullableTime(from, domain.DateLayout)
	hc.ToWeekStart = parseNullableTime(to, domain.DateLayout)
	hc.Status = domain.HourChangeStatus(status)
	hc.RejectionReason = stringPtr(rejection)
	hc.DecidedAt = parseNullableTime(decidedAt, time.RFC3339Nano)
	if hc.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &hc, nil
}
