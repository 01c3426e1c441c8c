package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MinRejectionReasonLen is the shortest rejection reason an approver may give.
const MinRejectionReasonLen = 10

// ValidateRejectionReason requires a reason of at least MinRejectionReasonLen
// characters, ignoring surrounding whitespace.
func ValidateRejectionReason(reason string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(reason)); n < MinRejectionReasonLen {
		return Validationf("rejection reason must be at least %d characters (got %d)", MinRejectionReasonLen, n)
	}
	return nil
}

// PhaseTransition is the outcome of applying an event to a phase status.
type PhaseTransition struct {
	From  PhaseApprovalStatus
	Event PhaseEvent
	To    PhaseApprovalStatus
	// Deletes marks the approved-delete path: the allocation is removed
	// together with its weeks and To is meaningless.
	Deletes bool
}

func isPhaseEvent(ev PhaseEvent) bool {
	for _, e := range PhaseEvents {
		if e == ev {
			return true
		}
	}
	return false
}

// NextPhaseStatus is the phase approval ladder. It is total over
// (status, event): every pair either yields a transition or an
// ApprovalConflict, and unknown inputs yield a ValidationError.
func NextPhaseStatus(from PhaseApprovalStatus, ev PhaseEvent) (PhaseTransition, error) {
	t := PhaseTransition{From: from, Event: ev}
	if !isPhaseEvent(ev) {
		return t, Validationf("unknown phase action %q", ev)
	}

	switch from {
	case PhasePending:
		switch ev {
		case PhaseEventApprove, PhaseEventModifyAndApprove:
			t.To = PhaseApproved
		case PhaseEventReject:
			t.To = PhaseRejected
		case PhaseEventModify:
			t.To = PhasePending
		case PhaseEventExpire:
			t.To = PhaseExpired
		case PhaseEventForfeit:
			t.To = PhaseForfeited
		}
	case PhaseApproved:
		switch ev {
		case PhaseEventRequestDeletion:
			t.To = PhaseDeletionPending
		case PhaseEventExpire:
			t.To = PhaseExpired
		case PhaseEventForfeit:
			t.To = PhaseForfeited
		}
	case PhaseDeletionPending:
		switch ev {
		case PhaseEventDelete:
			t.Deletes = true
			return t, nil
		case PhaseEventRejectDeletion:
			t.To = PhaseApproved
		}
	case PhaseRejected, PhaseExpired, PhaseForfeited:
		// terminal
	default:
		return t, Validationf("unknown phase status %q", from)
	}

	if t.To == "" {
		return t, Conflictf("cannot %s an allocation that is %s", ev, from)
	}
	return t, nil
}

// NextWeeklyStatus is the approver ladder for a week. Only PENDING weeks
// accept decisions; a rejected week returns to PENDING solely through a
// consultant resubmission (see ResubmitStatus).
func NextWeeklyStatus(from WeeklyPlanningStatus, ev WeeklyEvent) (WeeklyPlanningStatus, error) {
	switch ev {
	case WeeklyEventApprove, WeeklyEventModify, WeeklyEventReject:
	default:
		return "", Validationf("unknown weekly action %q", ev)
	}

	switch from {
	case WeeklyPending:
		switch ev {
		case WeeklyEventApprove:
			return WeeklyApproved, nil
		case WeeklyEventModify:
			return WeeklyModified, nil
		case WeeklyEventReject:
			return WeeklyRejected, nil
		}
	case WeeklyApproved, WeeklyModified, WeeklyRejected:
		return "", Conflictf("cannot %s a week that is %s", ev, from)
	}
	return "", Validationf("unknown weekly status %q", from)
}

// ResubmitStatus computes the planning status a consultant submission of
// hours leaves on existing (nil for a new week). Resubmitting the same value
// keeps the current status; any other edit returns the week to PENDING.
// A REJECTED week is only reopened when clearRejection is set.
func ResubmitStatus(existing *WeeklyAllocation, hours decimal.Decimal, clearRejection bool) (WeeklyPlanningStatus, error) {
	if existing == nil {
		return WeeklyPending, nil
	}
	if existing.PlanningStatus == WeeklyRejected {
		if !clearRejection {
			return "", Conflictf("week %s was rejected; resubmit with clearRejection to reopen it",
				existing.WeekStartDate.Format(DateLayout))
		}
		return WeeklyPending, nil
	}
	if existing.ProposedHours.Valid && existing.ProposedHours.Decimal.Equal(hours) {
		return existing.PlanningStatus, nil
	}
	return WeeklyPending, nil
}

// ApplySubmission records a consultant's proposed hours. A decided week sent
// back to PENDING loses its approved figure.
func (w *WeeklyAllocation) ApplySubmission(hours decimal.Decimal, status WeeklyPlanningStatus, description, batchID string, now time.Time) {
	if status == WeeklyPending && w.PlanningStatus != WeeklyPending {
		w.ApprovedHours = decimal.NullDecimal{}
	}
	w.ProposedHours = SomeHours(hours)
	w.PlanningStatus = status
	w.RejectionReason = nil
	if description != "" {
		w.ConsultantDescription = description
	}
	if batchID != "" {
		w.SubmissionBatchID = batchID
	}
	w.UpdatedAt = now
}

// Approve accepts the proposed hours as approved.
func (w *WeeklyAllocation) Approve(now time.Time) error {
	next, err := NextWeeklyStatus(w.PlanningStatus, WeeklyEventApprove)
	if err != nil {
		return err
	}
	w.ApprovedHours = SomeHours(HoursOrZero(w.ProposedHours))
	w.PlanningStatus = next
	w.UpdatedAt = now
	return nil
}

// Modify approves a different amount than proposed. remaining is what the
// allocation has left once every other week's commitment is subtracted.
func (w *WeeklyAllocation) Modify(hours, remaining decimal.Decimal, now time.Time) error {
	next, err := NextWeeklyStatus(w.PlanningStatus, WeeklyEventModify)
	if err != nil {
		return err
	}
	if !hours.IsPositive() {
		return Validationf("approved hours must be greater than zero")
	}
	if w.ProposedHours.Valid && w.ProposedHours.Decimal.Equal(hours) {
		return Validationf("approved hours equal the proposed hours; approve instead of modify")
	}
	if hours.GreaterThan(remaining) {
		return ExceedsRemainingBudget(hours, remaining)
	}
	w.ApprovedHours = SomeHours(hours)
	w.PlanningStatus = next
	w.UpdatedAt = now
	return nil
}

// Reject denies the week with a reason.
func (w *WeeklyAllocation) Reject(reason string, now time.Time) error {
	next, err := NextWeeklyStatus(w.PlanningStatus, WeeklyEventReject)
	if err != nil {
		return err
	}
	if err := ValidateRejectionReason(reason); err != nil {
		return err
	}
	r := strings.TrimSpace(reason)
	w.RejectionReason = &r
	w.ApprovedHours = decimal.NullDecimal{}
	w.PlanningStatus = next
	w.UpdatedAt = now
	return nil
}

// IsDecided reports whether an approver has granted hours for the week.
func (w *WeeklyAllocation) IsDecided() bool {
	return w.PlanningStatus == WeeklyApproved || w.PlanningStatus == WeeklyModified
}

// Close rejects a decided week because its allocation ended (expired or
// forfeited). The approved figure is kept as the record of what was granted,
// so the allocation's committed total does not move.
func (w *WeeklyAllocation) Close(reason string, now time.Time) {
	r := strings.TrimSpace(reason)
	w.RejectionReason = &r
	w.PlanningStatus = WeeklyRejected
	w.UpdatedAt = now
}

// RemainingForWeek is the budget of a left for the week at key once every
// other week's committed hours are subtracted; never negative.
func RemainingForWeek(a *PhaseAllocation, weeks []*WeeklyAllocation, key WeekKey) decimal.Decimal {
	remaining := a.TotalHours.Sub(CommittedHoursExcept(weeks, key))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
