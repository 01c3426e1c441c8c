package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeeklyAllocation is one (phase allocation, week) cell.
type WeeklyAllocation struct {
	ID                string
	PhaseAllocationID string

	// WeekStartDate and WeekEndDate identify the week; WeekNumber and Year
	// are derived for display only.
	WeekStartDate time.Time
	WeekEndDate   time.Time
	WeekNumber    int
	Year          int

	ProposedHours   decimal.NullDecimal
	ApprovedHours   decimal.NullDecimal
	PlanningStatus  WeeklyPlanningStatus
	RejectionReason *string

	ConsultantDescription string
	SubmissionBatchID     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWeeklyAllocation builds an empty PENDING cell for the week containing
// weekStart.
func NewWeeklyAllocation(id, phaseAllocationID string, weekStart time.Time, now time.Time) *WeeklyAllocation {
	ws := WeekStart(weekStart)
	year, week := ws.ISOWeek()
	return &WeeklyAllocation{
		ID:                id,
		PhaseAllocationID: phaseAllocationID,
		WeekStartDate:     ws,
		WeekEndDate:       WeekEnd(ws),
		WeekNumber:        week,
		Year:              year,
		PlanningStatus:    WeeklyPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Key returns the composite identity of the cell.
func (w *WeeklyAllocation) Key() WeekKey {
	return NewWeekKey(w.PhaseAllocationID, w.WeekStartDate)
}

// CommittedHours is approvedHours ?? proposedHours ?? 0.
func (w *WeeklyAllocation) CommittedHours() decimal.Decimal {
	return CoalesceHours(w.ApprovedHours, w.ProposedHours)
}

// CommittedHours sums the committed hours of weeks.
func CommittedHours(weeks []*WeeklyAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weeks {
		total = total.Add(w.CommittedHours())
	}
	return total
}

// CommittedHoursExcept sums committed hours of every week but skip.
func CommittedHoursExcept(weeks []*WeeklyAllocation, skip WeekKey) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weeks {
		if w.Key() == skip {
			continue
		}
		total = total.Add(w.CommittedHours())
	}
	return total
}
