package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// SQLiteWeeklyAllocationRepo implements WeeklyAllocationRepo using a SQLite
// database.
type SQLiteWeeklyAllocationRepo struct {
	db db.DBTX
}

// NewSQLiteWeeklyAllocationRepo creates a new SQLiteWeeklyAllocationRepo.
func NewSQLiteWeeklyAllocationRepo(conn db.DBTX) *SQLiteWeeklyAllocationRepo {
	return &SQLiteWeeklyAllocationRepo{db: conn}
}

const weeklyAllocationColumns = `id, phase_allocation_id, week_start_date, week_end_date,
	week_number, year, proposed_hours, approved_hours, planning_status, rejection_reason,
	consultant_description, submission_batch_id, created_at, updated_at`

func (r *SQLiteWeeklyAllocationRepo) Create(ctx context.Context, w *domain.WeeklyAllocation) error {
	query := `INSERT INTO weekly_allocations (` + weeklyAllocationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.PhaseAllocationID,
		formatDate(w.WeekStartDate),
		formatDate(w.WeekEndDate),
		w.WeekNumber,
		w.Year,
		nullableHoursToValue(w.ProposedHours),
		nullableHoursToValue(w.ApprovedHours),
		string(w.PlanningStatus),
		nullableString(w.RejectionReason),
		w.ConsultantDescription,
		w.SubmissionBatchID,
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting weekly allocation: %w", err)
	}
	return nil
}

func (r *SQLiteWeeklyAllocationRepo) GetByID(ctx context.Context, id string) (*domain.WeeklyAllocation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+weeklyAllocationColumns+` FROM weekly_allocations WHERE id = ?`, id)
	w, err := scanWeeklyAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("weekly allocation", id)
		}
		return nil, err
	}
	return w, nil
}

// GetByWeek returns the cell of phaseAllocationID for the week containing
// weekStart, or a NotFound error.
func (r *SQLiteWeeklyAllocationRepo) GetByWeek(ctx context.Context, phaseAllocationID string, weekStart time.Time) (*domain.WeeklyAllocation, error) {
	ws := domain.WeekStart(weekStart)
	row := r.db.QueryRowContext(ctx, `SELECT `+weeklyAllocationColumns+` FROM weekly_allocations
		WHERE phase_allocation_id = ? AND week_start_date = ?`, phaseAllocationID, formatDate(ws))
	w, err := scanWeeklyAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("weekly allocation", phaseAllocationID+"@"+formatDate(ws))
		}
		return nil, err
	}
	return w, nil
}

func (r *SQLiteWeeklyAllocationRepo) ListByAllocation(ctx context.Context, phaseAllocationID string) ([]*domain.WeeklyAllocation, error) {
	return r.list(ctx, `SELECT `+weeklyAllocationColumns+` FROM weekly_allocations
		WHERE phase_allocation_id = ? ORDER BY week_start_date`, phaseAllocationID)
}

func (r *SQLiteWeeklyAllocationRepo) ListByStatus(ctx context.Context, status domain.WeeklyPlanningStatus) ([]*domain.WeeklyAllocation, error) {
	return r.list(ctx, `SELECT `+weeklyAllocationColumns+` FROM weekly_allocations
		WHERE planning_status = ? ORDER BY created_at, week_start_date`, string(status))
}

func (r *SQLiteWeeklyAllocationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.WeeklyAllocation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing weekly allocations: %w", err)
	}
	defer rows.Close()

	var out []*domain.WeeklyAllocation
	for rows.Next() {
		w, err := scanWeeklyAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weekly allocations: %w", err)
	}
	return out, nil
}

// ListCapacityRows returns the weeks that count toward consultant load:
// weeks of APPROVED or DELETION_PENDING allocations that were not rejected.
func (r *SQLiteWeeklyAllocationRepo) ListCapacityRows(ctx context.Context, f CapacityFilter) ([]CapacityRow, error) {
	query := `SELECT w.id, w.phase_allocation_id, pa.consultant_id, p.project_id, pr.name,
			p.id, p.name, w.week_start_date, w.proposed_hours, w.approved_hours, w.planning_status
		FROM weekly_allocations w
		JOIN phase_allocations pa ON pa.id = w.phase_allocation_id
		JOIN phases p ON p.id = pa.phase_id
		JOIN projects pr ON pr.id = p.project_id
		WHERE pa.approval_status IN (?, ?)
		  AND w.planning_status != ?
		  AND w.week_start_date >= ? AND w.week_start_date <= ?`
	args := []any{
		string(domain.PhaseApproved), string(domain.PhaseDeletionPending),
		string(domain.WeeklyRejected),
		formatDate(f.From), formatDate(f.To),
	}
	if len(f.ConsultantIDs) > 0 {
		query += ` AND pa.consultant_id IN (` + placeholders(len(f.ConsultantIDs)) + `)`
		for _, id := range f.ConsultantIDs {
			args = append(args, id)
		}
	}
	if strings.TrimSpace(f.ExcludeProjectID) != "" {
		query += ` AND p.project_id != ?`
		args = append(args, f.ExcludeProjectID)
	}
	query += ` ORDER BY pa.consultant_id, w.week_start_date, pr.name, p.order_index`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing capacity rows: %w", err)
	}
	defer rows.Close()

	var out []CapacityRow
	for rows.Next() {
		var row CapacityRow
		var weekStart, status string
		var proposed, approved sql.NullString
		if err := rows.Scan(&row.WeeklyAllocationID, &row.PhaseAllocationID, &row.ConsultantID,
			&row.ProjectID, &row.ProjectName, &row.PhaseID, &row.PhaseName,
			&weekStart, &proposed, &approved, &status); err != nil {
			return nil, fmt.Errorf("scanning capacity row: %w", err)
		}
		if row.WeekStart, err = parseDate(weekStart, "week_start_date"); err != nil {
			return nil, err
		}
		p, err := parseNullableHours(proposed, "proposed_hours")
		if err != nil {
			return nil, err
		}
		a, err := parseNullableHours(approved, "approved_hours")
		if err != nil {
			return nil, err
		}
		row.Hours = domain.CoalesceHours(a, p)
		row.PlanningStatus = domain.WeeklyPlanningStatus(status)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating capacity rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteWeeklyAllocationRepo) Update(ctx context.Context, w *domain.WeeklyAllocation) error {
	query := `UPDATE weekly_allocations SET
		proposed_hours = ?, approved_hours = ?, planning_status = ?, rejection_reason = ?,
		consultant_description = ?, submission_batch_id = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableHoursToValue(w.ProposedHours),
		nullableHoursToValue(w.ApprovedHours),
		string(w.PlanningStatus),
		nullableString(w.RejectionReason),
		w.ConsultantDescription,
		w.SubmissionBatchID,
		formatTime(w.UpdatedAt),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating weekly allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("weekly allocation", w.ID)
	}
	return nil
}

// Reparent moves a week to another phase allocation.
func (r *SQLiteWeeklyAllocationRepo) Reparent(ctx context.Context, id, phaseAllocationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE weekly_allocations SET phase_allocation_id = ?, updated_at = ? WHERE id = ?`,
		phaseAllocationID, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("reparenting weekly allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("weekly allocation", id)
	}
	return nil
}

func (r *SQLiteWeeklyAllocationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weekly_allocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting weekly allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("weekly allocation", id)
	}
	return nil
}

func scanWeeklyAllocation(s rowScanner) (*domain.WeeklyAllocation, error) {
	var w domain.WeeklyAllocation
	var weekStart, weekEnd, status, createdAt, updatedAt string
	var proposed, approved, rejection sql.NullString

	err := s.Scan(
		&w.ID, &w.PhaseAllocationID, &weekStart, &weekEnd,
		&w.WeekNumber, &w.Year, &proposed, &approved, &status, &rejection,
		&w.ConsultantDescription, &w.SubmissionBatchID, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning weekly allocation: %w", err)
	}

	if w.WeekStartDate, err = parseDate(weekStart, "week_start_date"); err != nil {
		return nil, err
	}
	if w.WeekEndDate, err = parseDate(weekEnd, "week_end_date"); err != nil {
		return nil, err
	}
	if w.ProposedHours, err = parseNullableHours(proposed, "proposed_hours"); err != nil {
		return nil, err
	}
	if w.ApprovedHours, err = parseNullableHours(approved, "approved_hours"); err != nil {
		return nil, err
	}
	w.PlanningStatus = domain.WeeklyPlanningStatus(status)
	w.RejectionReason = stringPtr(rejection)
	if w.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &w, nil
}
