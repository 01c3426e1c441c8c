package testutil

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Monday is a fixed week start used across tests: Monday 2025-03-03.
var Monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// Week returns the Monday n weeks after Monday.
func Week(n int) time.Time {
	return Monday.AddDate(0, 0, 7*n)
}

// Hours parses a literal hour amount, panicking on malformed input.
func Hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func NewTestConsultant(name string) *domain.Consultant {
	return &domain.Consultant{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTestProject(name string) *domain.Project {
	return &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Phase options
type PhaseOption func(*domain.Phase)

func WithPhaseDates(start, end time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.StartDate = start
		p.EndDate = end
	}
}

func WithOrderIndex(i int) PhaseOption {
	return func(p *domain.Phase) {
		p.OrderIndex = i
	}
}

// NewTestPhase builds a phase spanning twelve weeks from Monday.
func NewTestPhase(projectID, name string, opts ...PhaseOption) *domain.Phase {
	p := &domain.Phase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		StartDate: Monday,
		EndDate:   Monday.AddDate(0, 0, 7*12-1),
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PhaseAllocation options
type AllocationOption func(*domain.PhaseAllocation)

func WithApprovalStatus(s domain.PhaseApprovalStatus) AllocationOption {
	return func(a *domain.PhaseAllocation) {
		a.ApprovalStatus = s
	}
}

func WithParentAllocation(id string) AllocationOption {
	return func(a *domain.PhaseAllocation) {
		a.ParentAllocationID = &id
	}
}

// WithComposition makes the allocation composite with one entry per amount.
// TotalHours becomes their sum.
func WithComposition(amounts ...string) AllocationOption {
	return func(a *domain.PhaseAllocation) {
		a.IsComposite = true
		a.CompositionMetadata = nil
		a.TotalHours = decimal.Zero
		for i, s := range amounts {
			h := Hours(s)
			a.CompositionMetadata = append(a.CompositionMetadata, domain.CompositionEntry{
				Seq:           i + 1,
				OriginalHours: domain.SomeHours(h),
				Timestamp:     a.CreatedAt,
			})
			a.TotalHours = a.TotalHours.Add(h)
		}
	}
}

func NewTestAllocation(consultantID, phaseID, total string, opts ...AllocationOption) *domain.PhaseAllocation {
	now := time.Now().UTC()
	a := &domain.PhaseAllocation{
		ID:             uuid.New().String(),
		ConsultantID:   consultantID,
		PhaseID:        phaseID,
		TotalHours:     Hours(total),
		ApprovalStatus: domain.PhasePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.ApprovalStatus == domain.PhaseApproved && a.ApprovedAt == nil {
		a.ApprovedAt = &now
	}
	return a
}

// WeeklyAllocation options
type WeekOption func(*domain.WeeklyAllocation)

func WithApproved(hours string) WeekOption {
	return func(w *domain.WeeklyAllocation) {
		w.ApprovedHours = domain.SomeHours(Hours(hours))
		w.PlanningStatus = domain.WeeklyApproved
	}
}

func WithPlanningStatus(s domain.WeeklyPlanningStatus) WeekOption {
	return func(w *domain.WeeklyAllocation) {
		w.PlanningStatus = s
	}
}

func WithTimestamps(created, updated time.Time) WeekOption {
	return func(w *domain.WeeklyAllocation) {
		w.CreatedAt = created
		w.UpdatedAt = updated
	}
}

// NewTestWeek builds a PENDING week with proposed hours.
func NewTestWeek(phaseAllocationID string, weekStart time.Time, proposed string, opts ...WeekOption) *domain.WeeklyAllocation {
	w := domain.NewWeeklyAllocation(uuid.New().String(), phaseAllocationID, weekStart, time.Now().UTC())
	if proposed != "" {
		w.ProposedHours = domain.SomeHours(Hours(proposed))
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}
