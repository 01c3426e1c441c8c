package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/google/uuid"
)

type hourChangeService struct {
	engine
	observer UseCaseObserver
}

func NewHourChangeService(uow db.UnitOfWork, locker lock.Locker, repos repository.Repos, observers ...UseCaseObserver) HourChangeService {
	return &hourChangeService{
		engine:   engine{uow: uow, locker: locker, repos: repos},
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *hourChangeService) Create(ctx context.Context, req app.HourChangeRequest) (hc *domain.HourChangeRequest, err error) {
	fields := map[string]any{
		"phase_allocation_id": req.PhaseAllocationID,
		"change_type":         req.ChangeType,
		"hours":               req.RequestedHours.String(),
	}
	ctx, done := startUseCase(ctx, s.observer, "create-hour-change", fields)
	defer done(&err)

	hc = &domain.HourChangeRequest{
		ID:                uuid.New().String(),
		PhaseAllocationID: req.PhaseAllocationID,
		ChangeType:        req.ChangeType,
		RequestedHours:    req.RequestedHours,
		FromWeekStart:     weekStartPtr(req.FromWeekStart),
		ToWeekStart:       weekStartPtr(req.ToWeekStart),
		Reason:            strings.TrimSpace(req.Reason),
		Status:            domain.HourChangePending,
		CreatedAt:         nowUTC(),
	}
	if err := hc.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repos.Allocations.GetByID(ctx, req.PhaseAllocationID)
	if err != nil {
		return nil, err
	}
	if a.ApprovalStatus != domain.PhaseApproved {
		return nil, domain.Conflictf("hour changes need an APPROVED allocation; %s is %s", a.ID, a.ApprovalStatus)
	}
	if err := s.repos.HourChanges.Create(ctx, hc); err != nil {
		return nil, err
	}
	fields["hour_change_id"] = hc.ID
	return hc, nil
}

func (s *hourChangeService) Decide(ctx context.Context, req app.HourChangeDecision) (hc *domain.HourChangeRequest, err error) {
	fields := map[string]any{
		"hour_change_id": req.ID,
		"approve":        req.Approve,
	}
	ctx, done := startUseCase(ctx, s.observer, "decide-hour-change", fields)
	defer done(&err)

	current, err := s.repos.HourChanges.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	err = s.lockedTx(ctx, []string{lock.AllocationKey(current.PhaseAllocationID)}, func(ctx context.Context, r repository.Repos) error {
		var err error
		hc, err = r.HourChanges.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		now := nowUTC()
		if err := hc.Decide(req.Approve, req.RejectionReason, now); err != nil {
			return err
		}
		if hc.Status == domain.HourChangeApproved {
			if err := applyHourChange(ctx, r, hc, now); err != nil {
				return err
			}
		}
		return r.HourChanges.Update(ctx, hc)
	})
	if err != nil {
		return nil, err
	}
	fields["status"] = hc.Status
	return hc, nil
}

func applyHourChange(ctx context.Context, r repository.Repos, hc *domain.HourChangeRequest, now time.Time) error {
	a, err := r.Allocations.GetByID(ctx, hc.PhaseAllocationID)
	if err != nil {
		return err
	}
	if a.ApprovalStatus != domain.PhaseApproved {
		return domain.Conflictf("allocation %s is %s, hour changes apply to APPROVED allocations", a.ID, a.ApprovalStatus)
	}
	weeks, err := r.Weeks.ListByAllocation(ctx, a.ID)
	if err != nil {
		return err
	}

	var detail string
	switch hc.ChangeType {
	case domain.HourChangeAdjustment:
		if committed := domain.CommittedHours(weeks); hc.RequestedHours.LessThan(committed) {
			return domain.BudgetExceeded(committed.Sub(hc.RequestedHours))
		}
		detail = fmt.Sprintf("total %s -> %s: %s", a.TotalHours, hc.RequestedHours, hc.Reason)
		a.ResizeTo(hc.RequestedHours, now)
		a.UpdatedAt = now
		if err := a.CheckInvariants(weeks); err != nil {
			return err
		}
		if err := r.Allocations.Update(ctx, a); err != nil {
			return err
		}

	case domain.HourChangeShift:
		changed, err := shiftHours(ctx, r, a, weeks, hc, now)
		if err != nil {
			return err
		}
		for _, w := range changed {
			if err := r.Weeks.Update(ctx, w); err != nil {
				return err
			}
		}
		detail = fmt.Sprintf("%s hours from %s to %s: %s", hc.RequestedHours,
			hc.FromWeekStart.Format(domain.DateLayout), hc.ToWeekStart.Format(domain.DateLayout), hc.Reason)
	}
	return appendAudit(ctx, r, a.ID, domain.AuditHourChange, detail, now)
}

// shiftHours moves proposed hours between two weeks. Both weeks return to
// PENDING. A missing target week is created; existing ones are returned for
// update.
func shiftHours(ctx context.Context, r repository.Repos, a *domain.PhaseAllocation, weeks []*domain.WeeklyAllocation, hc *domain.HourChangeRequest, now time.Time) ([]*domain.WeeklyAllocation, error) {
	fromKey := domain.NewWeekKey(a.ID, *hc.FromWeekStart)
	toKey := domain.NewWeekKey(a.ID, *hc.ToWeekStart)

	var from, to *domain.WeeklyAllocation
	for _, w := range weeks {
		switch w.Key() {
		case fromKey:
			from = w
		case toKey:
			to = w
		}
	}
	if from == nil {
		return nil, domain.NotFound("weekly allocation", a.ID+"@"+fromKey.WeekStart.Format(domain.DateLayout))
	}
	left := domain.HoursOrZero(from.ProposedHours).Sub(hc.RequestedHours)
	if left.IsNegative() {
		return nil, domain.Validationf("week %s only has %s proposed hours",
			fromKey.WeekStart.Format(domain.DateLayout), domain.HoursOrZero(from.ProposedHours))
	}

	phase, err := r.Phases.GetByID(ctx, a.PhaseID)
	if err != nil {
		return nil, err
	}
	if !phase.OverlapsWeek(toKey.WeekStart) {
		return nil, domain.Validationf("week %s is outside phase %s", toKey.WeekStart.Format(domain.DateLayout), phase.Name)
	}

	changed := []*domain.WeeklyAllocation{from}
	if to == nil {
		to = domain.NewWeeklyAllocation(uuid.New().String(), a.ID, toKey.WeekStart, now)
		weeks = append(weeks, to)
	} else {
		changed = append(changed, to)
	}
	to.ApplySubmission(domain.HoursOrZero(to.ProposedHours).Add(hc.RequestedHours), domain.WeeklyPending, "", "", now)
	from.ApplySubmission(left, domain.WeeklyPending, "", "", now)
	if err := a.CheckInvariants(weeks); err != nil {
		return nil, err
	}
	if len(changed) == 1 {
		if err := r.Weeks.Create(ctx, to); err != nil {
			return nil, err
		}
	}
	return changed, nil
}

func weekStartPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	ws := domain.WeekStart(*t)
	return &ws
}

func (s *hourChangeService) List(ctx context.Context, status domain.HourChangeStatus) ([]*domain.HourChangeRequest, error) {
	return s.repos.HourChanges.List(ctx, status)
}
