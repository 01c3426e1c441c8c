package app

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SubmitWeekRequest is a consultant's proposal of hours for one week.
type SubmitWeekRequest struct {
	PhaseAllocationID     string
	WeekStart             time.Time
	Hours                 decimal.Decimal
	ClearRejection        bool
	ConsultantDescription string
}

// WeekHours is one week of a multi-week submission.
type WeekHours struct {
	WeekStart             time.Time
	Hours                 decimal.Decimal
	ConsultantDescription string
}

type SubmitWeeksRequest struct {
	PhaseAllocationID string
	Weeks             []WeekHours
	ClearRejection    bool
}

type SubmitWeeksResponse struct {
	SubmissionBatchID string
	Weeks             []*domain.WeeklyAllocation
}

// CreateAllocationRequest asks for hours for a consultant in a phase, from an
// assignment or a reallocation.
type CreateAllocationRequest struct {
	ConsultantID string
	PhaseID      string
	Hours        decimal.Decimal
	Origin       domain.AllocationOrigin
}

// CreateAllocationResponse reports how the request was recorded.
type CreateAllocationResponse struct {
	Allocation *domain.PhaseAllocation
	// Merged is set when the hours were folded into an existing PENDING
	// allocation instead of creating a row.
	Merged bool
}

// AllocationDetail is an allocation with its weeks and audit trail.
type AllocationDetail struct {
	Allocation *domain.PhaseAllocation
	Weeks      []*domain.WeeklyAllocation
	Audit      []*domain.AuditEntry
	Committed  decimal.Decimal
	Remaining  decimal.Decimal
}
