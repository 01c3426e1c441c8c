package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPhaseStatus_IsTotal(t *testing.T) {
	for _, from := range PhaseApprovalStatuses {
		for _, ev := range PhaseEvents {
			tr, err := NextPhaseStatus(from, ev)
			if err != nil {
				assert.ErrorIs(t, err, ErrApprovalConflict, "%s + %s should be an approval conflict", from, ev)
				continue
			}
			assert.True(t, tr.Deletes || tr.To != "", "%s + %s must land somewhere", from, ev)
		}
	}
}

func TestNextPhaseStatus_Ladder(t *testing.T) {
	tests := []struct {
		from PhaseApprovalStatus
		ev   PhaseEvent
		to   PhaseApprovalStatus
	}{
		{PhasePending, PhaseEventApprove, PhaseApproved},
		{PhasePending, PhaseEventReject, PhaseRejected},
		{PhasePending, PhaseEventModify, PhasePending},
		{PhasePending, PhaseEventModifyAndApprove, PhaseApproved},
		{PhaseApproved, PhaseEventRequestDeletion, PhaseDeletionPending},
		{PhaseDeletionPending, PhaseEventRejectDeletion, PhaseApproved},
		{PhaseApproved, PhaseEventExpire, PhaseExpired},
		{PhaseApproved, PhaseEventForfeit, PhaseForfeited},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.ev), func(t *testing.T) {
			tr, err := NextPhaseStatus(tt.from, tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.to, tr.To)
			assert.False(t, tr.Deletes)
		})
	}
}

func TestNextPhaseStatus_DeleteFromDeletionPending(t *testing.T) {
	tr, err := NextPhaseStatus(PhaseDeletionPending, PhaseEventDelete)
	require.NoError(t, err)
	assert.True(t, tr.Deletes)
}

func TestNextPhaseStatus_DoubleApprovalConflicts(t *testing.T) {
	_, err := NextPhaseStatus(PhaseApproved, PhaseEventApprove)
	assert.ErrorIs(t, err, ErrApprovalConflict)
}

func TestNextPhaseStatus_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []PhaseApprovalStatus{PhaseRejected, PhaseExpired, PhaseForfeited} {
		for _, ev := range PhaseEvents {
			_, err := NextPhaseStatus(from, ev)
			assert.ErrorIs(t, err, ErrApprovalConflict, "%s + %s", from, ev)
		}
	}
}

func TestNextPhaseStatus_UnknownInputs(t *testing.T) {
	_, err := NextPhaseStatus(PhasePending, PhaseEvent("escalate"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NextPhaseStatus(PhaseApprovalStatus("ARCHIVED"), PhaseEventApprove)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNextWeeklyStatus_IsTotal(t *testing.T) {
	for _, from := range WeeklyPlanningStatuses {
		for _, ev := range WeeklyEvents {
			next, err := NextWeeklyStatus(from, ev)
			if from == WeeklyPending {
				require.NoError(t, err)
				assert.NotEqual(t, WeeklyPending, next)
				continue
			}
			assert.ErrorIs(t, err, ErrApprovalConflict, "%s + %s", from, ev)
		}
	}
}

func TestValidateRejectionReason(t *testing.T) {
	assert.ErrorIs(t, ValidateRejectionReason("too long"), ErrValidation)
	assert.ErrorIs(t, ValidateRejectionReason("   short    "), ErrValidation)
	assert.NoError(t, ValidateRejectionReason("too many hours this week"))
	assert.NoError(t, ValidateRejectionReason("exactly10!"))
}

func weekFixture(status WeeklyPlanningStatus, proposed string) *WeeklyAllocation {
	w := NewWeeklyAllocation("w1", "a1", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Now())
	w.PlanningStatus = status
	if proposed != "" {
		w.ProposedHours = SomeHours(decimal.RequireFromString(proposed))
	}
	return w
}

func TestResubmitStatus(t *testing.T) {
	five := decimal.NewFromInt(5)

	st, err := ResubmitStatus(nil, five, false)
	require.NoError(t, err)
	assert.Equal(t, WeeklyPending, st)

	_, err = ResubmitStatus(weekFixture(WeeklyRejected, "8"), five, false)
	assert.ErrorIs(t, err, ErrApprovalConflict)

	st, err = ResubmitStatus(weekFixture(WeeklyRejected, "8"), five, true)
	require.NoError(t, err)
	assert.Equal(t, WeeklyPending, st)

	st, err = ResubmitStatus(weekFixture(WeeklyApproved, "5"), five, false)
	require.NoError(t, err)
	assert.Equal(t, WeeklyApproved, st, "resubmitting the same value keeps the status")

	st, err = ResubmitStatus(weekFixture(WeeklyApproved, "8"), five, false)
	require.NoError(t, err)
	assert.Equal(t, WeeklyPending, st)
}

func TestWeeklyAllocation_ApplySubmissionClearsApprovalOnEdit(t *testing.T) {
	w := weekFixture(WeeklyPending, "8")
	require.NoError(t, w.Approve(time.Now()))
	assert.Equal(t, "8", w.ApprovedHours.Decimal.String())

	w.ApplySubmission(decimal.NewFromInt(6), WeeklyPending, "", "", time.Now())
	assert.Equal(t, WeeklyPending, w.PlanningStatus)
	assert.False(t, w.ApprovedHours.Valid)
	assert.Equal(t, "6", w.ProposedHours.Decimal.String())
}

func TestWeeklyAllocation_Approve(t *testing.T) {
	w := weekFixture(WeeklyPending, "7.5")
	require.NoError(t, w.Approve(time.Now()))
	assert.Equal(t, WeeklyApproved, w.PlanningStatus)
	assert.Equal(t, "7.5", w.ApprovedHours.Decimal.String())

	err := w.Approve(time.Now())
	assert.ErrorIs(t, err, ErrApprovalConflict)
	assert.Equal(t, "7.5", w.ApprovedHours.Decimal.String())
}

func TestWeeklyAllocation_Modify(t *testing.T) {
	ten := decimal.NewFromInt(10)

	w := weekFixture(WeeklyPending, "8")
	assert.ErrorIs(t, w.Modify(decimal.Zero, ten, time.Now()), ErrValidation)
	assert.ErrorIs(t, w.Modify(decimal.NewFromInt(8), ten, time.Now()), ErrValidation)

	err := w.Modify(decimal.NewFromInt(12), ten, time.Now())
	require.ErrorIs(t, err, ErrExceedsRemainingBudget)
	var ae *AllocationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "10", ae.RemainingHours.String())
	assert.Equal(t, WeeklyPending, w.PlanningStatus, "failed modify leaves the week untouched")

	require.NoError(t, w.Modify(decimal.NewFromInt(6), ten, time.Now()))
	assert.Equal(t, WeeklyModified, w.PlanningStatus)
	assert.Equal(t, "6", w.ApprovedHours.Decimal.String())
}

func TestWeeklyAllocation_Reject(t *testing.T) {
	w := weekFixture(WeeklyPending, "8")
	assert.ErrorIs(t, w.Reject("no", time.Now()), ErrValidation)
	assert.Equal(t, WeeklyPending, w.PlanningStatus)

	require.NoError(t, w.Reject("too many hours this week", time.Now()))
	assert.Equal(t, WeeklyRejected, w.PlanningStatus)
	require.NotNil(t, w.RejectionReason)
	assert.Equal(t, "too many hours this week", *w.RejectionReason)
}
