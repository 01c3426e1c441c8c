package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	engine
	observer UseCaseObserver
}

func NewLedgerService(uow db.UnitOfWork, locker lock.Locker, repos repository.Repos, observers ...UseCaseObserver) LedgerService {
	return &ledgerService{
		engine:   engine{uow: uow, locker: locker, repos: repos},
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *ledgerService) SubmitWeeklyHours(ctx context.Context, req app.SubmitWeekRequest) (week *domain.WeeklyAllocation, err error) {
	fields := map[string]any{
		"phase_allocation_id": req.PhaseAllocationID,
		"week_start":          domain.WeekStart(req.WeekStart).Format(domain.DateLayout),
		"hours":               req.Hours.String(),
	}
	ctx, done := startUseCase(ctx, s.observer, "submit-weekly-hours", fields)
	defer done(&err)

	if req.PhaseAllocationID == "" {
		return nil, domain.Validationf("phase allocation id is required")
	}
	if req.Hours.IsNegative() {
		return nil, domain.Validationf("hours must not be negative")
	}

	err = s.lockedTx(ctx, []string{lock.AllocationKey(req.PhaseAllocationID)}, func(ctx context.Context, r repository.Repos) error {
		sub, err := openSubmission(ctx, r, req.PhaseAllocationID)
		if err != nil {
			return err
		}
		now := nowUTC()
		week, err = sub.stage(req.WeekStart, req.Hours, req.ClearRejection, req.ConsultantDescription, "", now)
		if err != nil {
			return err
		}
		return sub.commit(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	fields["planning_status"] = week.PlanningStatus
	return week, nil
}

func (s *ledgerService) SubmitWeeks(ctx context.Context, req app.SubmitWeeksRequest) (resp *app.SubmitWeeksResponse, err error) {
	fields := map[string]any{
		"phase_allocation_id": req.PhaseAllocationID,
		"weeks":               len(req.Weeks),
	}
	ctx, done := startUseCase(ctx, s.observer, "submit-weeks", fields)
	defer done(&err)

	if req.PhaseAllocationID == "" {
		return nil, domain.Validationf("phase allocation id is required")
	}
	if len(req.Weeks) == 0 {
		return nil, domain.Validationf("at least one week is required")
	}
	seen := make(map[time.Time]bool, len(req.Weeks))
	for _, w := range req.Weeks {
		if w.Hours.IsNegative() {
			return nil, domain.Validationf("hours must not be negative")
		}
		ws := domain.WeekStart(w.WeekStart)
		if seen[ws] {
			return nil, domain.Validationf("week %s appears twice", ws.Format(domain.DateLayout))
		}
		seen[ws] = true
	}

	resp = &app.SubmitWeeksResponse{SubmissionBatchID: uuid.New().String()}
	fields["submission_batch_id"] = resp.SubmissionBatchID

	err = s.lockedTx(ctx, []string{lock.AllocationKey(req.PhaseAllocationID)}, func(ctx context.Context, r repository.Repos) error {
		sub, err := openSubmission(ctx, r, req.PhaseAllocationID)
		if err != nil {
			return err
		}
		now := nowUTC()
		resp.Weeks = resp.Weeks[:0]
		for _, w := range req.Weeks {
			week, err := sub.stage(w.WeekStart, w.Hours, req.ClearRejection, w.ConsultantDescription, resp.SubmissionBatchID, now)
			if err != nil {
				return err
			}
			resp.Weeks = append(resp.Weeks, week)
		}
		return sub.commit(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// submission stages consultant edits to one allocation's weeks so the
// budget is checked against the combined result before anything is written.
type submission struct {
	allocation *domain.PhaseAllocation
	phase      *domain.Phase
	weeks      []*domain.WeeklyAllocation
	created    map[string]bool
	touched    []*domain.WeeklyAllocation
}

func openSubmission(ctx context.Context, r repository.Repos, allocationID string) (*submission, error) {
	a, err := r.Allocations.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if a.ApprovalStatus != domain.PhaseApproved {
		return nil, domain.Conflictf("weekly hours need an APPROVED allocation; %s is %s", a.ID, a.ApprovalStatus)
	}
	phase, err := r.Phases.GetByID(ctx, a.PhaseID)
	if err != nil {
		return nil, err
	}
	weeks, err := r.Weeks.ListByAllocation(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &submission{allocation: a, phase: phase, weeks: weeks, created: map[string]bool{}}, nil
}

func (s *submission) stage(weekStart time.Time, hours decimal.Decimal, clearRejection bool, description, batchID string, now time.Time) (*domain.WeeklyAllocation, error) {
	key := domain.NewWeekKey(s.allocation.ID, weekStart)
	if !s.phase.OverlapsWeek(key.WeekStart) {
		return nil, domain.Validationf("week %s is outside phase %s (%s to %s)",
			key.WeekStart.Format(domain.DateLayout), s.phase.Name,
			s.phase.StartDate.Format(domain.DateLayout), s.phase.EndDate.Format(domain.DateLayout))
	}

	var existing *domain.WeeklyAllocation
	for _, w := range s.weeks {
		if w.Key() == key {
			existing = w
			break
		}
	}
	status, err := domain.ResubmitStatus(existing, hours, clearRejection)
	if err != nil {
		return nil, err
	}

	week := existing
	if week == nil {
		week = domain.NewWeeklyAllocation(uuid.New().String(), s.allocation.ID, key.WeekStart, now)
		s.created[week.ID] = true
		s.weeks = append(s.weeks, week)
	}
	week.ApplySubmission(hours, status, description, batchID, now)
	s.touched = append(s.touched, week)
	return week, nil
}

// commit checks the staged weeks against the allocation and writes them.
func (s *submission) commit(ctx context.Context, r repository.Repos) error {
	if err := s.allocation.CheckInvariants(s.weeks); err != nil {
		return err
	}
	for _, w := range s.touched {
		var err error
		if s.created[w.ID] {
			err = r.Weeks.Create(ctx, w)
			delete(s.created, w.ID)
		} else {
			err = r.Weeks.Update(ctx, w)
		}
		if err != nil {
			return fmt.Errorf("saving week %s: %w", w.WeekStartDate.Format(domain.DateLayout), err)
		}
	}
	return nil
}

func (s *ledgerService) CreateOrMergeAllocation(ctx context.Context, req app.CreateAllocationRequest) (resp *app.CreateAllocationResponse, err error) {
	fields := map[string]any{
		"consultant_id": req.ConsultantID,
		"phase_id":      req.PhaseID,
		"hours":         req.Hours.String(),
		"origin":        req.Origin.Kind,
	}
	ctx, done := startUseCase(ctx, s.observer, "create-or-merge-allocation", fields)
	defer done(&err)

	if err := validateAllocationRequest(&req); err != nil {
		return nil, err
	}
	if _, err := s.repos.Consultants.GetByID(ctx, req.ConsultantID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Phases.GetByID(ctx, req.PhaseID); err != nil {
		return nil, err
	}

	// New PENDING rows for a (consultant, phase) only appear under the
	// consultant-phase key, so the pending set read here can only shrink.
	pending, err := s.repos.Allocations.ListByConsultantPhase(ctx, req.ConsultantID, req.PhaseID, domain.PhasePending)
	if err != nil {
		return nil, err
	}
	keys := []string{lock.ConsultantPhaseKey(req.ConsultantID, req.PhaseID)}
	for _, p := range pending {
		keys = append(keys, lock.AllocationKey(p.ID))
	}

	resp = &app.CreateAllocationResponse{}
	err = s.lockedTx(ctx, keys, func(ctx context.Context, r repository.Repos) error {
		now := nowUTC()
		pending, err := r.Allocations.ListByConsultantPhase(ctx, req.ConsultantID, req.PhaseID, domain.PhasePending)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			target := pending[0]
			if err := foldIntoComposite(ctx, r, target, req.Hours, req.Origin, now); err != nil {
				return err
			}
			resp.Allocation = target
			resp.Merged = true
			return nil
		}

		a := &domain.PhaseAllocation{
			ID:                 uuid.New().String(),
			ConsultantID:       req.ConsultantID,
			PhaseID:            req.PhaseID,
			TotalHours:         req.Hours,
			ApprovalStatus:     domain.PhasePending,
			ReallocationSource: req.Origin.Source,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		approved, err := r.Allocations.ListByConsultantPhase(ctx, req.ConsultantID, req.PhaseID, domain.PhaseApproved)
		if err != nil {
			return err
		}
		detail := fmt.Sprintf("%s %s hours", req.Origin.Kind, req.Hours)
		if len(approved) > 0 {
			parentID := approved[0].ID
			a.ParentAllocationID = &parentID
			detail += " against approved allocation " + parentID
		}
		if err := r.Allocations.Create(ctx, a); err != nil {
			return err
		}
		resp.Allocation = a
		return appendAudit(ctx, r, a.ID, domain.AuditCreated, detail, now)
	})
	if err != nil {
		return nil, err
	}
	fields["allocation_id"] = resp.Allocation.ID
	fields["merged"] = resp.Merged
	return resp, nil
}

func validateAllocationRequest(req *app.CreateAllocationRequest) error {
	if req.ConsultantID == "" || req.PhaseID == "" {
		return domain.Validationf("consultant and phase are required")
	}
	if !req.Hours.IsPositive() {
		return domain.Validationf("hours must be greater than zero")
	}
	switch req.Origin.Kind {
	case "":
		req.Origin.Kind = domain.OriginAssignment
	case domain.OriginAssignment:
	case domain.OriginReallocation:
		if req.Origin.Source == nil || req.Origin.Source.FromPhaseID == "" {
			return domain.Validationf("a reallocation needs the phase the hours come from")
		}
	default:
		return domain.Validationf("unknown allocation origin %q", req.Origin.Kind)
	}
	if req.Origin.Kind == domain.OriginAssignment {
		req.Origin.Source = nil
	}
	return nil
}

func (s *ledgerService) GetAllocation(ctx context.Context, id string) (*app.AllocationDetail, error) {
	a, err := s.repos.Allocations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	weeks, err := s.repos.Weeks.ListByAllocation(ctx, id)
	if err != nil {
		return nil, err
	}
	trail, err := s.repos.Audit.ListByAllocation(ctx, id)
	if err != nil {
		return nil, err
	}
	committed := domain.CommittedHours(weeks)
	return &app.AllocationDetail{
		Allocation: a,
		Weeks:      weeks,
		Audit:      trail,
		Committed:  committed,
		Remaining:  decimal.Max(decimal.Zero, a.TotalHours.Sub(committed)),
	}, nil
}

func (s *ledgerService) ListAllocations(ctx context.Context, status domain.PhaseApprovalStatus) ([]*domain.PhaseAllocation, error) {
	if status != "" {
		if !slices.Contains(domain.PhaseApprovalStatuses, status) {
			return nil, domain.Validationf("unknown allocation status %q", status)
		}
		return s.repos.Allocations.ListByStatus(ctx, status)
	}

	var all []*domain.PhaseAllocation
	for _, st := range domain.PhaseApprovalStatuses {
		list, err := s.repos.Allocations.ListByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return all, nil
}
