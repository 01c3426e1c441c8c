package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompositionEntry is one contribution folded into a composite allocation.
// Exactly one of OriginalHours and ReallocatedHours is normally set.
type CompositionEntry struct {
	Seq                    int
	OriginalHours          decimal.NullDecimal
	ReallocatedHours       decimal.NullDecimal
	ReallocatedFromPhaseID *string
	SourceAllocationID     *string
	Timestamp              time.Time
}

// Hours is the entry's contribution: originalHours ?? reallocatedHours ?? 0.
func (e CompositionEntry) Hours() decimal.Decimal {
	return CoalesceHours(e.OriginalHours, e.ReallocatedHours)
}

// ReallocationSource records where reallocated hours came from.
type ReallocationSource struct {
	FromPhaseID    string
	UnplannedHours decimal.Decimal
	Notes          string
}

// AllocationOrigin describes the request that creates or grows an allocation.
type AllocationOrigin struct {
	Kind   OriginKind
	Source *ReallocationSource
}

// CompositionEntryFor builds the log entry recording hours contributed by
// origin.
func CompositionEntryFor(hours decimal.Decimal, origin AllocationOrigin, sourceAllocationID string, at time.Time) CompositionEntry {
	e := CompositionEntry{Timestamp: at, SourceAllocationID: StrPtr(sourceAllocationID)}
	if origin.Kind == OriginReallocation && origin.Source != nil {
		e.ReallocatedHours = SomeHours(hours)
		from := origin.Source.FromPhaseID
		e.ReallocatedFromPhaseID = StrPtr(from)
		return e
	}
	e.OriginalHours = SomeHours(hours)
	return e
}

// PhaseAllocation is one consultant's hour grant for one phase.
type PhaseAllocation struct {
	ID           string
	ConsultantID string
	PhaseID      string

	TotalHours         decimal.Decimal
	ApprovalStatus     PhaseApprovalStatus
	RejectionReason    *string
	ModificationReason *string

	IsComposite         bool
	CompositionMetadata []CompositionEntry
	ParentAllocationID  *string
	ReallocationSource  *ReallocationSource

	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CompositionTotal sums the contributions in the composition log.
func (a *PhaseAllocation) CompositionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.CompositionMetadata {
		total = total.Add(e.Hours())
	}
	return total
}

// CheckComposition enforces that a composite allocation's log sums to its
// total hours.
func (a *PhaseAllocation) CheckComposition() error {
	if !a.IsComposite {
		return nil
	}
	if sum := a.CompositionTotal(); !sum.Equal(a.TotalHours) {
		return Conflictf("composition log of allocation %s sums to %s, total is %s",
			a.ID, sum.String(), a.TotalHours.String())
	}
	return nil
}

// CheckBudget enforces that the committed hours of weeks fit in TotalHours.
func (a *PhaseAllocation) CheckBudget(weeks []*WeeklyAllocation) error {
	committed := CommittedHours(weeks)
	if committed.GreaterThan(a.TotalHours) {
		return BudgetExceeded(committed.Sub(a.TotalHours))
	}
	return nil
}

// CheckWeeklyApprovals enforces that only an APPROVED allocation carries
// decided (APPROVED or MODIFIED) weeks. DELETION_PENDING keeps its decided
// weeks until the deletion is resolved.
func (a *PhaseAllocation) CheckWeeklyApprovals(weeks []*WeeklyAllocation) error {
	if a.ApprovalStatus == PhaseApproved || a.ApprovalStatus == PhaseDeletionPending {
		return nil
	}
	for _, w := range weeks {
		if w.IsDecided() {
			return Conflictf("allocation %s is %s but week %s is %s",
				a.ID, a.ApprovalStatus, w.WeekStartDate.Format(DateLayout), w.PlanningStatus)
		}
	}
	return nil
}

// CheckInvariants runs every invariant that must hold before a write commits.
func (a *PhaseAllocation) CheckInvariants(weeks []*WeeklyAllocation) error {
	if err := a.CheckBudget(weeks); err != nil {
		return err
	}
	if err := a.CheckComposition(); err != nil {
		return err
	}
	return a.CheckWeeklyApprovals(weeks)
}

// AppendComposition adds entry to the log and grows TotalHours by its hours.
// A plain allocation becomes composite first, recording its existing total
// as the opening entry.
func (a *PhaseAllocation) AppendComposition(entry CompositionEntry, opening CompositionEntry) {
	if !a.IsComposite {
		a.IsComposite = true
		opening.Seq = len(a.CompositionMetadata) + 1
		a.CompositionMetadata = append(a.CompositionMetadata, opening)
	}
	entry.Seq = len(a.CompositionMetadata) + 1
	a.CompositionMetadata = append(a.CompositionMetadata, entry)
	a.TotalHours = a.TotalHours.Add(entry.Hours())
}

// ResizeTo sets a new budget, recording the delta in the composition log of
// a composite allocation so the log keeps summing to the total.
func (a *PhaseAllocation) ResizeTo(hours decimal.Decimal, at time.Time) {
	delta := hours.Sub(a.TotalHours)
	a.TotalHours = hours
	if a.IsComposite && !delta.IsZero() {
		a.CompositionMetadata = append(a.CompositionMetadata, CompositionEntry{
			Seq:           len(a.CompositionMetadata) + 1,
			OriginalHours: SomeHours(delta),
			Timestamp:     at,
		})
	}
}

// NewCompositionEntries returns the log entries not yet persisted, given
// the number already stored.
func (a *PhaseAllocation) NewCompositionEntries(stored int) []CompositionEntry {
	if stored >= len(a.CompositionMetadata) {
		return nil
	}
	return a.CompositionMetadata[stored:]
}

// IsActive reports whether the allocation's hours count as committed
// capacity.
func (a *PhaseAllocation) IsActive() bool {
	return a.ApprovalStatus == PhaseApproved || a.ApprovalStatus == PhaseDeletionPending
}

// ApplyTransition moves the allocation to t.To, stamping ApprovedAt on first
// approval.
func (a *PhaseAllocation) ApplyTransition(t PhaseTransition, now time.Time) {
	if t.To == PhaseApproved && t.From == PhasePending {
		at := now
		a.ApprovedAt = &at
	}
	a.ApprovalStatus = t.To
	a.UpdatedAt = now
}
