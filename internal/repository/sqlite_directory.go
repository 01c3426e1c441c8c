package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// SQLiteConsultantRepo implements ConsultantRepo using a SQLite database.
type SQLiteConsultantRepo struct {
	db db.DBTX
}

// NewSQLiteConsultantRepo creates a new SQLiteConsultantRepo.
func NewSQLiteConsultantRepo(conn db.DBTX) *SQLiteConsultantRepo {
	return &SQLiteConsultantRepo{db: conn}
}

func (r *SQLiteConsultantRepo) Create(ctx context.Context, c *domain.Consultant) error {
	query := `INSERT INTO consultants (id, name, email, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Email, formatTime(c.CreatedAt)); err != nil {
		return fmt.Errorf("inserting consultant: %w", err)
	}
	return nil
}

func (r *SQLiteConsultantRepo) GetByID(ctx context.Context, id string) (*domain.Consultant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, email, created_at FROM consultants WHERE id = ?`, id)
	var c domain.Consultant
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("consultant", id)
		}
		return nil, fmt.Errorf("scanning consultant: %w", err)
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteConsultantRepo) List(ctx context.Context) ([]*domain.Consultant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM consultants ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing consultants: %w", err)
	}
	defer rows.Close()

	var out []*domain.Consultant
	for rows.Next() {
		var c domain.Consultant
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning consultant row: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating consultants: %w", err)
	}
	return out, nil
}

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, formatTime(p.CreatedAt)); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, id)
	var p domain.Project
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("project", id)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*domain.Project
	for rows.Next() {
		var p domain.Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

// SQLitePhaseRepo implements PhaseRepo using a SQLite database.
type SQLitePhaseRepo struct {
	db db.DBTX
}

// NewSQLitePhaseRepo creates a new SQLitePhaseRepo.
func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

const phaseColumns = `id, project_id, name, start_date, end_date, order_index, created_at`

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	query := `INSERT INTO phases (` + phaseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Name, formatDate(p.StartDate), formatDate(p.EndDate), p.OrderIndex, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting phase: %w", err)
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM phases WHERE id = ?`, id)
	p, err := scanPhase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("phase", id)
	}
	return p, err
}

func (r *SQLitePhaseRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE project_id = ? ORDER BY order_index, start_date`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing phases: %w", err)
	}
	defer rows.Close()

	var out []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phases: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhase(s rowScanner) (*domain.Phase, error) {
	var p domain.Phase
	var start, end, createdAt string
	if err := s.Scan(&p.ID, &p.ProjectID, &p.Name, &start, &end, &p.OrderIndex, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning phase: %w", err)
	}
	var err error
	if p.StartDate, err = parseDate(start, "start_date"); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseDate(end, "end_date"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
