package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/shopspring/decimal"
)

// originOf reconstructs how an allocation's current hours were requested.
func originOf(a *domain.PhaseAllocation) domain.AllocationOrigin {
	if a.ReallocationSource != nil {
		return domain.AllocationOrigin{Kind: domain.OriginReallocation, Source: a.ReallocationSource}
	}
	return domain.AllocationOrigin{Kind: domain.OriginAssignment}
}

// foldIntoComposite adds hours to a PENDING allocation instead of creating a
// second request for the same consultant and phase. A plain allocation is
// turned composite with its existing hours as the first log entry.
func foldIntoComposite(ctx context.Context, r repository.Repos, target *domain.PhaseAllocation, hours decimal.Decimal, origin domain.AllocationOrigin, now time.Time) error {
	if target.ApprovalStatus != domain.PhasePending {
		return domain.Conflictf("allocation %s is %s, only PENDING requests are merged", target.ID, target.ApprovalStatus)
	}
	opening := domain.CompositionEntryFor(target.TotalHours, originOf(target), target.ID, target.CreatedAt)
	entry := domain.CompositionEntryFor(hours, origin, "", now)
	target.AppendComposition(entry, opening)
	target.UpdatedAt = now

	if err := target.CheckComposition(); err != nil {
		return err
	}
	if err := r.Allocations.Update(ctx, target); err != nil {
		return err
	}
	return appendAudit(ctx, r, target.ID, domain.AuditComposed,
		fmt.Sprintf("+%s hours (%s), total %s", hours, origin.Kind, target.TotalHours), now)
}

// mergeTarget returns the parent a child request should merge into on
// approval, or nil when the parent is gone, no longer APPROVED, or belongs to
// another consultant or phase.
func mergeTarget(ctx context.Context, r repository.Repos, child *domain.PhaseAllocation) (*domain.PhaseAllocation, error) {
	parent, err := r.Allocations.GetByID(ctx, *child.ParentAllocationID)
	if domain.CodeOf(err) == domain.CodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if parent.ApprovalStatus != domain.PhaseApproved ||
		parent.ConsultantID != child.ConsultantID || parent.PhaseID != child.PhaseID {
		return nil, nil
	}
	return parent, nil
}

// mergeIntoParent folds an approved child request into its APPROVED parent:
// the parent's budget grows by the child's, the child's weeks move to the
// parent and the child row is removed. A child week whose start collides
// with a parent week is summed into it and the parent week goes back to
// PENDING for review.
func mergeIntoParent(ctx context.Context, r repository.Repos, child, parent *domain.PhaseAllocation, childWeeks []*domain.WeeklyAllocation, now time.Time) (*domain.PhaseAllocation, error) {
	parentWeeks, err := r.Weeks.ListByAllocation(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	byStart := make(map[time.Time]*domain.WeeklyAllocation, len(parentWeeks))
	for _, w := range parentWeeks {
		byStart[w.WeekStartDate] = w
	}

	if parent.IsComposite {
		parent.AppendComposition(domain.CompositionEntryFor(child.TotalHours, originOf(child), child.ID, now), domain.CompositionEntry{})
	} else {
		parent.TotalHours = parent.TotalHours.Add(child.TotalHours)
	}
	parent.UpdatedAt = now

	var summed, moved []*domain.WeeklyAllocation
	for _, cw := range childWeeks {
		pw, ok := byStart[cw.WeekStartDate]
		if !ok {
			cw.PhaseAllocationID = parent.ID
			moved = append(moved, cw)
			parentWeeks = append(parentWeeks, cw)
			continue
		}
		combined := pw.CommittedHours().Add(cw.CommittedHours())
		pw.ApplySubmission(combined, domain.WeeklyPending, "", "", now)
		summed = append(summed, pw)
	}

	if err := parent.CheckInvariants(parentWeeks); err != nil {
		return nil, err
	}
	if err := r.Allocations.Update(ctx, parent); err != nil {
		return nil, err
	}
	for _, w := range moved {
		if err := r.Weeks.Reparent(ctx, w.ID, parent.ID); err != nil {
			return nil, err
		}
		if err := appendAudit(ctx, r, parent.ID, domain.AuditWeekReparented,
			fmt.Sprintf("week %s moved from %s", w.WeekStartDate.Format(domain.DateLayout), child.ID), now); err != nil {
			return nil, err
		}
	}
	for _, w := range summed {
		if err := r.Weeks.Update(ctx, w); err != nil {
			return nil, err
		}
		if err := appendAudit(ctx, r, parent.ID, domain.AuditWeekReparented,
			fmt.Sprintf("week %s summed with %s, now %s hours pending", w.WeekStartDate.Format(domain.DateLayout),
				child.ID, w.CommittedHours()), now); err != nil {
			return nil, err
		}
	}

	// Deleting the child cascades to its collided weeks and its log.
	if err := r.Allocations.Delete(ctx, child.ID); err != nil {
		return nil, err
	}
	detail := fmt.Sprintf("%s hours merged into %s, total %s", child.TotalHours, parent.ID, parent.TotalHours)
	if err := appendAudit(ctx, r, child.ID, domain.AuditMergedIntoParent, detail, now); err != nil {
		return nil, err
	}
	if err := appendAudit(ctx, r, parent.ID, domain.AuditMergedIntoParent, detail, now); err != nil {
		return nil, err
	}
	return parent, nil
}
