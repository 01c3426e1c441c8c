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

// SQLitePhaseAllocationRepo implements PhaseAllocationRepo using a SQLite
// database. The composition log lives in allocation_compositions and is only
// ever appended to.
type SQLitePhaseAllocationRepo struct {
	db db.DBTX
}

// NewSQLitePhaseAllocationRepo creates a new SQLitePhaseAllocationRepo.
func NewSQLitePhaseAllocationRepo(conn db.DBTX) *SQLitePhaseAllocationRepo {
	return &SQLitePhaseAllocationRepo{db: conn}
}

const phaseAllocationColumns = `id, consultant_id, phase_id, total_hours, approval_status,
	rejection_reason, modification_reason, is_composite, parent_allocation_id,
	realloc_from_phase_id, realloc_unplanned_hours, realloc_notes,
	approved_at, created_at, updated_at`

func (r *SQLitePhaseAllocationRepo) Create(ctx context.Context, a *domain.PhaseAllocation) error {
	query := `INSERT INTO phase_allocations (` + phaseAllocationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	fromPhase, unplanned, notes := reallocationValues(a.ReallocationSource)
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ConsultantID,
		a.PhaseID,
		hoursToValue(a.TotalHours),
		string(a.ApprovalStatus),
		nullableString(a.RejectionReason),
		nullableString(a.ModificationReason),
		boolToInt(a.IsComposite),
		nullableString(a.ParentAllocationID),
		fromPhase,
		unplanned,
		notes,
		nullableTimeToString(a.ApprovedAt, time.RFC3339Nano),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting phase allocation: %w", err)
	}
	return r.appendComposition(ctx, a, 0)
}

func (r *SQLitePhaseAllocationRepo) GetByID(ctx context.Context, id string) (*domain.PhaseAllocation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseAllocationColumns+` FROM phase_allocations WHERE id = ?`, id)
	a, err := scanPhaseAllocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("phase allocation", id)
		}
		return nil, err
	}
	if err := r.loadComposition(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *SQLitePhaseAllocationRepo) ListByConsultantPhase(ctx context.Context, consultantID, phaseID string, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error) {
	query := `SELECT ` + phaseAllocationColumns + ` FROM phase_allocations
		WHERE consultant_id = ? AND phase_id = ? AND approval_status = ?
		ORDER BY created_at, id`
	return r.list(ctx, query, consultantID, phaseID, string(status))
}

func (r *SQLitePhaseAllocationRepo) ListByStatus(ctx context.Context, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error) {
	query := `SELECT ` + phaseAllocationColumns + ` FROM phase_allocations
		WHERE approval_status = ? ORDER BY created_at, id`
	return r.list(ctx, query, string(status))
}

func (r *SQLitePhaseAllocationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.PhaseAllocation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing phase allocations: %w", err)
	}
	var out []*domain.PhaseAllocation
	for rows.Next() {
		a, err := scanPhaseAllocation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating phase allocations: %w", err)
	}
	rows.Close()

	// Composition is loaded after the cursor is closed: an in-memory database
	// has a single connection.
	for _, a := range out {
		if err := r.loadComposition(ctx, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update writes the allocation row and appends composition entries that are
// not stored yet.
func (r *SQLitePhaseAllocationRepo) Update(ctx context.Context, a *domain.PhaseAllocation) error {
	query := `UPDATE phase_allocations SET
		total_hours = ?, approval_status = ?, rejection_reason = ?, modification_reason = ?,
		is_composite = ?, parent_allocation_id = ?, realloc_from_phase_id = ?,
		realloc_unplanned_hours = ?, realloc_notes = ?, approved_at = ?, updated_at = ?
		WHERE id = ?`
	fromPhase, unplanned, notes := reallocationValues(a.ReallocationSource)
	res, err := r.db.ExecContext(ctx, query,
		hoursToValue(a.TotalHours),
		string(a.ApprovalStatus),
		nullableString(a.RejectionReason),
		nullableString(a.ModificationReason),
		boolToInt(a.IsComposite),
		nullableString(a.ParentAllocationID),
		fromPhase,
		unplanned,
		notes,
		nullableTimeToString(a.ApprovedAt, time.RFC3339Nano),
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating phase allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("phase allocation", a.ID)
	}

	var stored int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM allocation_compositions WHERE phase_allocation_id = ?`, a.ID).Scan(&stored); err != nil {
		return fmt.Errorf("counting composition entries: %w", err)
	}
	return r.appendComposition(ctx, a, stored)
}

func (r *SQLitePhaseAllocationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phase_allocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting phase allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("phase allocation", id)
	}
	return nil
}

func (r *SQLitePhaseAllocationRepo) appendComposition(ctx context.Context, a *domain.PhaseAllocation, stored int) error {
	query := `INSERT INTO allocation_compositions (phase_allocation_id, seq, original_hours,
		reallocated_hours, reallocated_from_phase_id, source_allocation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, e := range a.NewCompositionEntries(stored) {
		_, err := r.db.ExecContext(ctx, query,
			a.ID,
			e.Seq,
			nullableHoursToValue(e.OriginalHours),
			nullableHoursToValue(e.ReallocatedHours),
			nullableString(e.ReallocatedFromPhaseID),
			nullableString(e.SourceAllocationID),
			formatTime(e.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("appending composition entry %d: %w", e.Seq, err)
		}
	}
	return nil
}

func (r *SQLitePhaseAllocationRepo) loadComposition(ctx context.Context, a *domain.PhaseAllocation) error {
	rows, err := r.db.QueryContext(ctx, `SELECT seq, original_hours, reallocated_hours,
		reallocated_from_phase_id, source_allocation_id, created_at
		FROM allocation_compositions WHERE phase_allocation_id = ? ORDER BY seq`, a.ID)
	if err != nil {
		return fmt.Errorf("loading composition: %w", err)
	}
	defer rows.Close()

	a.CompositionMetadata = nil
	for rows.Next() {
		var e domain.CompositionEntry
		var original, reallocated, fromPhase, source sql.NullString
		var createdAt string
		if err := rows.Scan(&e.Seq, &original, &reallocated, &fromPhase, &source, &createdAt); err != nil {
			return fmt.Errorf("scanning composition entry: %w", err)
		}
		if e.OriginalHours, err = parseNullableHours(original, "original_hours"); err != nil {
			return err
		}
		if e.ReallocatedHours, err = parseNullableHours(reallocated, "reallocated_hours"); err != nil {
			return err
		}
		e.ReallocatedFromPhaseID = stringPtr(fromPhase)
		e.SourceAllocationID = stringPtr(source)
		if e.Timestamp, err = parseTime(createdAt, "created_at"); err != nil {
			return err
		}
		a.CompositionMetadata = append(a.CompositionMetadata, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating composition: %w", err)
	}
	return nil
}

func reallocationValues(src *domain.ReallocationSource) (fromPhase, unplanned, notes interface{}) {
	if src == nil {
		return nil, nil, nil
	}
	return src.FromPhaseID, hoursToValue(src.UnplannedHours), src.Notes
}

func scanPhaseAllocation(s rowScanner) (*domain.PhaseAllocation, error) {
	var a domain.PhaseAllocation
	var total, status, createdAt, updatedAt string
	var rejection, modification, parent, fromPhase, unplanned, notes, approvedAt sql.NullString
	var composite int

	err := s.Scan(
		&a.ID, &a.ConsultantID, &a.PhaseID, &total, &status,
		&rejection, &modification, &composite, &parent,
		&fromPhase, &unplanned, &notes,
		&approvedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning phase allocation: %w", err)
	}

	if a.TotalHours, err = parseHours(total, "total_hours"); err != nil {
		return nil, err
	}
	a.ApprovalStatus = domain.PhaseApprovalStatus(status)
	a.RejectionReason = stringPtr(rejection)
	a.ModificationReason = stringPtr(modification)
	a.IsComposite = intToBool(composite)
	a.ParentAllocationID = stringPtr(parent)
	if fromPhase.Valid {
		src := &domain.ReallocationSource{FromPhaseID: fromPhase.String, Notes: notes.String}
		if unplanned.Valid {
			if src.UnplannedHours, err = parseHours(unplanned.String, "realloc_unplanned_hours"); err != nil {
				return nil, err
			}
		}
		a.ReallocationSource = src
	}
	a.ApprovedAt = parseNullableTime(approvedAt, time.RFC3339Nano)
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
