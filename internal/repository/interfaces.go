package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

// CapacityRow is a committed weekly cell joined with the names a capacity
// view needs.
type CapacityRow struct {
	WeeklyAllocationID string
	PhaseAllocationID  string
	ConsultantID       string
	ProjectID          string
	ProjectName        string
	PhaseID            string
	PhaseName          string
	WeekStart          time.Time
	Hours              decimal.Decimal
	PlanningStatus     domain.WeeklyPlanningStatus
}

// CapacityFilter narrows a capacity read. Rows are returned when their stored
// week start lies within [From, To].
type CapacityFilter struct {
	From             time.Time
	To               time.Time
	ConsultantIDs    []string
	ExcludeProjectID string
}

type ConsultantRepo interface {
	Create(ctx context.Context, c *domain.Consultant) error
	GetByID(ctx context.Context, id string) (*domain.Consultant, error)
	List(ctx context.Context) ([]*domain.Consultant, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
}

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
}

type PhaseAllocationRepo interface {
	Create(ctx context.Context, a *domain.PhaseAllocation) error
	GetByID(ctx context.Context, id string) (*domain.PhaseAllocation, error)
	ListByConsultantPhase(ctx context.Context, consultantID, phaseID string, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error)
	ListByStatus(ctx context.Context, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error)
	Update(ctx context.Context, a *domain.PhaseAllocation) error
	Delete(ctx context.Context, id string) error
}

type WeeklyAllocationRepo interface {
	Create(ctx context.Context, w *domain.WeeklyAllocation) error
	GetByID(ctx context.Context, id string) (*domain.WeeklyAllocation, error)
	GetByWeek(ctx context.Context, phaseAllocationID string, weekStart time.Time) (*domain.WeeklyAllocation, error)
	ListByAllocation(ctx context.Context, phaseAllocationID string) ([]*domain.WeeklyAllocation, error)
	ListByStatus(ctx context.Context, status domain.WeeklyPlanningStatus) ([]*domain.WeeklyAllocation, error)
	ListCapacityRows(ctx context.Context, f CapacityFilter) ([]CapacityRow, error)
	Update(ctx context.Context, w *domain.WeeklyAllocation) error
	Reparent(ctx context.Context, id, phaseAllocationID string) error
	Delete(ctx context.Context, id string) error
}

type AuditRepo interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
	ListByAllocation(ctx context.Context, phaseAllocationID string) ([]*domain.AuditEntry, error)
}

type HourChangeRepo interface {
	Create(ctx context.Context, r *domain.HourChangeRequest) error
	GetByID(ctx context.Context, id string) (*domain.HourChangeRequest, error)
	List(ctx context.Context, status domain.HourChangeStatus) ([]*domain.HourChangeRequest, error)
	Update(ctx context.Context, r *domain.HourChangeRequest) error
}

type ApprovalBatchRepo interface {
	Create(ctx context.Context, b *domain.ApprovalBatch) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalBatch, error)
}
