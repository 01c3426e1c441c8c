package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/shopspring/decimal"
)

type approvalService struct {
	engine
	observer UseCaseObserver
}

func NewApprovalService(uow db.UnitOfWork, locker lock.Locker, repos repository.Repos, observers ...UseCaseObserver) ApprovalService {
	return &approvalService{
		engine:   engine{uow: uow, locker: locker, repos: repos},
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *approvalService) ApplyPhaseAction(ctx context.Context, req app.PhaseActionRequest) (resp *app.PhaseActionResponse, err error) {
	fields := map[string]any{
		"allocation_id": req.AllocationID,
		"action":        req.Action,
	}
	ctx, done := startUseCase(ctx, s.observer, "phase-action", fields)
	defer done(&err)

	current, err := s.repos.Allocations.GetByID(ctx, req.AllocationID)
	if err != nil {
		return nil, err
	}
	keys := []string{lock.AllocationKey(current.ID)}
	if current.ParentAllocationID != nil {
		keys = append(keys, lock.AllocationKey(*current.ParentAllocationID))
	}

	resp = &app.PhaseActionResponse{}
	err = s.lockedTx(ctx, keys, func(ctx context.Context, r repository.Repos) error {
		a, err := r.Allocations.GetByID(ctx, req.AllocationID)
		if err != nil {
			return err
		}
		if a.ParentAllocationID != nil && !containsKey(keys, lock.AllocationKey(*a.ParentAllocationID)) {
			return domain.Conflictf("allocation %s changed while waiting, retry", a.ID)
		}
		return applyPhaseAction(ctx, r, a, req, resp, nowUTC())
	})
	if err != nil {
		return nil, err
	}
	if resp.Allocation != nil {
		fields["status"] = resp.Allocation.ApprovalStatus
	}
	fields["deleted"] = resp.Deleted
	if resp.MergedIntoID != "" {
		fields["merged_into"] = resp.MergedIntoID
	}
	return resp, nil
}

func applyPhaseAction(ctx context.Context, r repository.Repos, a *domain.PhaseAllocation, req app.PhaseActionRequest, resp *app.PhaseActionResponse, now time.Time) error {
	t, err := domain.NextPhaseStatus(a.ApprovalStatus, req.Action)
	if err != nil {
		return err
	}
	weeks, err := r.Weeks.ListByAllocation(ctx, a.ID)
	if err != nil {
		return err
	}

	switch req.Action {
	case domain.PhaseEventReject:
		if err := domain.ValidateRejectionReason(req.RejectionReason); err != nil {
			return err
		}
		reason := strings.TrimSpace(req.RejectionReason)
		a.RejectionReason = &reason
	case domain.PhaseEventModify, domain.PhaseEventModifyAndApprove:
		if err := resizeAllocation(a, weeks, req.ModifiedHours, req.ModificationReason, now); err != nil {
			return err
		}
	case domain.PhaseEventDelete:
		if err := r.Allocations.Delete(ctx, a.ID); err != nil {
			return err
		}
		resp.Deleted = true
		return appendAudit(ctx, r, a.ID, domain.AuditDeleted,
			fmt.Sprintf("deleted with %d weeks", len(weeks)), now)
	}

	approving := t.To == domain.PhaseApproved && t.From == domain.PhasePending
	if approving && a.ParentAllocationID != nil {
		parent, err := mergeTarget(ctx, r, a)
		if err != nil {
			return err
		}
		if parent != nil {
			a.ApplyTransition(t, now)
			merged, err := mergeIntoParent(ctx, r, a, parent, weeks, now)
			if err != nil {
				return err
			}
			resp.Allocation = merged
			resp.MergedIntoID = merged.ID
			return nil
		}
		// The parent left APPROVED: the child is approved on its own.
		detached := *a.ParentAllocationID
		a.ParentAllocationID = nil
		if err := appendAudit(ctx, r, a.ID, domain.AuditParentDetached,
			fmt.Sprintf("parent %s is no longer an approved target; approved standalone", detached), now); err != nil {
			return err
		}
	}

	if t.To == domain.PhaseExpired || t.To == domain.PhaseForfeited {
		if err := closeDecidedWeeks(ctx, r, a.ID, weeks, t.To, now); err != nil {
			return err
		}
	}

	a.ApplyTransition(t, now)
	if err := a.CheckInvariants(weeks); err != nil {
		return err
	}
	if err := r.Allocations.Update(ctx, a); err != nil {
		return err
	}
	resp.Allocation = a
	return appendAudit(ctx, r, a.ID, domain.AuditTransition,
		fmt.Sprintf("%s: %s -> %s", req.Action, t.From, t.To), now)
}

// closeDecidedWeeks rejects the approved and modified weeks of an allocation
// that is expiring or being forfeited. Pending weeks are left as they are.
func closeDecidedWeeks(ctx context.Context, r repository.Repos, allocationID string, weeks []*domain.WeeklyAllocation, to domain.PhaseApprovalStatus, now time.Time) error {
	reason := "allocation " + strings.ToLower(string(to))
	closed := 0
	for _, w := range weeks {
		if !w.IsDecided() {
			continue
		}
		w.Close(reason, now)
		if err := r.Weeks.Update(ctx, w); err != nil {
			return err
		}
		closed++
	}
	if closed == 0 {
		return nil
	}
	return appendAudit(ctx, r, allocationID, domain.AuditWeeksClosed,
		fmt.Sprintf("%d decided weeks rejected: %s", closed, reason), now)
}

// resizeAllocation sets a new budget that still covers what is committed.
func resizeAllocation(a *domain.PhaseAllocation, weeks []*domain.WeeklyAllocation, hours *decimal.Decimal, reason string, now time.Time) error {
	if hours == nil {
		return domain.Validationf("modified hours are required")
	}
	if !hours.IsPositive() {
		return domain.Validationf("modified hours must be greater than zero")
	}
	if committed := domain.CommittedHours(weeks); hours.LessThan(committed) {
		return domain.BudgetExceeded(committed.Sub(*hours))
	}
	a.ResizeTo(*hours, now)
	if r := strings.TrimSpace(reason); r != "" {
		a.ModificationReason = &r
	}
	return nil
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

func (s *approvalService) ApplyWeeklyAction(ctx context.Context, req app.WeeklyActionRequest) (week *domain.WeeklyAllocation, err error) {
	fields := map[string]any{
		"weekly_allocation_id": req.WeeklyAllocationID,
		"action":               req.Action,
	}
	ctx, done := startUseCase(ctx, s.observer, "weekly-action", fields)
	defer done(&err)

	week, err = decideWeek(ctx, s.engine, req)
	if err != nil {
		return nil, err
	}
	fields["planning_status"] = week.PlanningStatus
	return week, nil
}

// decideWeek applies one approver decision to a week inside its own
// transaction under the owning allocation's lock. An approve carrying hours
// different from the proposed hours is a modify.
func decideWeek(ctx context.Context, e engine, req app.WeeklyActionRequest) (*domain.WeeklyAllocation, error) {
	switch req.Action {
	case domain.WeeklyEventApprove, domain.WeeklyEventModify, domain.WeeklyEventReject:
	default:
		return nil, domain.Validationf("unknown weekly action %q", req.Action)
	}

	current, err := e.repos.Weeks.GetByID(ctx, req.WeeklyAllocationID)
	if err != nil {
		return nil, err
	}
	allocationID := current.PhaseAllocationID

	var week *domain.WeeklyAllocation
	err = e.lockedTx(ctx, []string{lock.AllocationKey(allocationID)}, func(ctx context.Context, r repository.Repos) error {
		w, err := r.Weeks.GetByID(ctx, req.WeeklyAllocationID)
		if err != nil {
			return err
		}
		if w.PhaseAllocationID != allocationID {
			return domain.Conflictf("week %s moved to another allocation, retry", w.ID)
		}
		a, err := r.Allocations.GetByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if a.ApprovalStatus != domain.PhaseApproved {
			return domain.Conflictf("weeks of allocation %s cannot be decided while it is %s", a.ID, a.ApprovalStatus)
		}
		weeks, err := r.Weeks.ListByAllocation(ctx, a.ID)
		if err != nil {
			return err
		}
		// Work on the copy held in weeks so the invariant check sees the change.
		for _, candidate := range weeks {
			if candidate.ID == w.ID {
				w = candidate
				break
			}
		}

		now := nowUTC()
		action := req.Action
		if action == domain.WeeklyEventApprove && req.ApprovedHours != nil &&
			!(w.ProposedHours.Valid && w.ProposedHours.Decimal.Equal(*req.ApprovedHours)) {
			action = domain.WeeklyEventModify
		}
		switch action {
		case domain.WeeklyEventApprove:
			err = w.Approve(now)
		case domain.WeeklyEventModify:
			if req.ApprovedHours == nil {
				return domain.Validationf("approved hours are required to modify a week")
			}
			err = w.Modify(*req.ApprovedHours, domain.RemainingForWeek(a, weeks, w.Key()), now)
		case domain.WeeklyEventReject:
			err = w.Reject(req.RejectionReason, now)
		}
		if err != nil {
			return err
		}
		if err := a.CheckInvariants(weeks); err != nil {
			return err
		}
		if err := r.Weeks.Update(ctx, w); err != nil {
			return err
		}
		week = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return week, nil
}

// legacyGroupWindow is the rounding applied to rows submitted without a
// submission batch id.
const legacyGroupWindow = time.Minute

func (s *approvalService) ListPendingSubmissions(ctx context.Context) ([]app.PendingSubmission, error) {
	weeks, err := s.repos.Weeks.ListByStatus(ctx, domain.WeeklyPending)
	if err != nil {
		return nil, err
	}

	names := newNameCache(s.repos)
	groups := make(map[string]*app.PendingSubmission)
	var order []string
	for _, w := range weeks {
		info, err := names.allocation(ctx, w.PhaseAllocationID)
		if err != nil {
			return nil, err
		}

		key := w.SubmissionBatchID
		legacy := key == ""
		submittedAt := w.UpdatedAt
		if legacy {
			submittedAt = w.CreatedAt.Round(legacyGroupWindow)
			key = info.consultantID + "@" + submittedAt.Format(time.RFC3339)
		}

		g, ok := groups[key]
		if !ok {
			g = &app.PendingSubmission{
				Key:               key,
				SubmissionBatchID: w.SubmissionBatchID,
				ConsultantID:      info.consultantID,
				ConsultantName:    info.consultantName,
				SubmittedAt:       submittedAt,
				Legacy:            legacy,
				TotalHours:        decimal.Zero,
			}
			groups[key] = g
			order = append(order, key)
		}
		if submittedAt.After(g.SubmittedAt) {
			g.SubmittedAt = submittedAt
		}
		g.TotalHours = g.TotalHours.Add(domain.HoursOrZero(w.ProposedHours))
		g.Weeks = append(g.Weeks, app.PendingWeek{
			Week:         w,
			ConsultantID: info.consultantID,
			ProjectName:  info.projectName,
			PhaseName:    info.phaseName,
		})
	}

	out := make([]app.PendingSubmission, 0, len(order))
	for _, k := range order {
		g := groups[k]
		sort.Slice(g.Weeks, func(i, j int) bool {
			return g.Weeks[i].Week.WeekStartDate.Before(g.Weeks[j].Week.WeekStartDate)
		})
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

type allocationNames struct {
	consultantID   string
	consultantName string
	projectName    string
	phaseName      string
}

// nameCache resolves display names once per allocation.
type nameCache struct {
	repos repository.Repos
	byID  map[string]allocationNames
}

func newNameCache(repos repository.Repos) *nameCache {
	return &nameCache{repos: repos, byID: make(map[string]allocationNames)}
}

func (c *nameCache) allocation(ctx context.Context, id string) (allocationNames, error) {
	if n, ok := c.byID[id]; ok {
		return n, nil
	}
	a, err := c.repos.Allocations.GetByID(ctx, id)
	if err != nil {
		return allocationNames{}, err
	}
	n := allocationNames{consultantID: a.ConsultantID, consultantName: a.ConsultantID}
	if cons, err := c.repos.Consultants.GetByID(ctx, a.ConsultantID); err == nil {
		n.consultantName = cons.DisplayName()
	}
	if ph, err := c.repos.Phases.GetByID(ctx, a.PhaseID); err == nil {
		n.phaseName = ph.Name
		if pr, err := c.repos.Projects.GetByID(ctx, ph.ProjectID); err == nil {
			n.projectName = pr.Name
		}
	}
	c.byID[id] = n
	return n, nil
}
