package service

import (
	"context"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/importer"
)

type DirectoryService interface {
	CreateConsultant(ctx context.Context, name, email string) (*domain.Consultant, error)
	GetConsultant(ctx context.Context, id string) (*domain.Consultant, error)
	ListConsultants(ctx context.Context) ([]*domain.Consultant, error)
	CreateProject(ctx context.Context, name string) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]*domain.Project, error)
	CreatePhase(ctx context.Context, p *domain.Phase) error
	ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error)
}

// LedgerService owns allocation and weekly records and enforces the budget
// on every write.
type LedgerService interface {
	app.SubmitWeeklyHoursUseCase
	app.CreateAllocationUseCase
	GetAllocation(ctx context.Context, id string) (*app.AllocationDetail, error)
	ListAllocations(ctx context.Context, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error)
}

// ApprovalService drives the phase and weekly approval ladders.
type ApprovalService interface {
	app.PhaseActionUseCase
	app.WeeklyActionUseCase
	ListPendingSubmissions(ctx context.Context) ([]app.PendingSubmission, error)
}

type BatchService interface {
	app.BatchApprovalUseCase
}

type AvailabilityService interface {
	app.AvailabilityUseCase
}

type HourChangeService interface {
	Create(ctx context.Context, req app.HourChangeRequest) (*domain.HourChangeRequest, error)
	Decide(ctx context.Context, req app.HourChangeDecision) (*domain.HourChangeRequest, error)
	List(ctx context.Context, status domain.HourChangeStatus) ([]*domain.HourChangeRequest, error)
}

// ImportResult summarizes an imported staffing plan.
type ImportResult struct {
	Project            *domain.Project
	PhaseCount         int
	ConsultantsCreated int
	ConsultantsReused  int
	// Allocations are the PENDING requests the plan produced, one per
	// consultant and phase.
	Allocations []*domain.PhaseAllocation
}

type ImportService interface {
	ImportPlan(ctx context.Context, filePath string) (*ImportResult, error)
	ImportPlanFromSchema(ctx context.Context, plan *importer.PlanImport) (*ImportResult, error)
}
