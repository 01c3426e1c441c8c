package app

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

type PhaseActionRequest struct {
	AllocationID       string
	Action             domain.PhaseEvent
	RejectionReason    string
	ModifiedHours      *decimal.Decimal
	ModificationReason string
}

type PhaseActionResponse struct {
	// Allocation is the record after the action: the parent when the
	// allocation was merged, nil when it was deleted.
	Allocation   *domain.PhaseAllocation
	Deleted      bool
	MergedIntoID string
}

type WeeklyActionRequest struct {
	WeeklyAllocationID string
	Action             domain.WeeklyEvent
	ApprovedHours      *decimal.Decimal
	RejectionReason    string
}

// BatchItem is one week in a batch decision. ApprovedHours differing from
// the proposed hours turns an approve into a modify.
type BatchItem struct {
	ID            string
	ApprovedHours *decimal.Decimal
}

type BatchRequest struct {
	Items           []BatchItem
	DefaultAction   domain.WeeklyEvent
	RejectionReason string
}

// BatchFailure names an item that was skipped and the error code why.
type BatchFailure struct {
	ID      string
	Reason  domain.ErrorCode
	Message string
}

type BatchResponse struct {
	BatchID string
	Updated int
	Failed  []BatchFailure
	// Warnings carry problems that did not undo any applied item.
	Warnings []string
}

// PendingWeek is a PENDING week with the names an approver needs.
type PendingWeek struct {
	Week         *domain.WeeklyAllocation
	ConsultantID string
	ProjectName  string
	PhaseName    string
}

// PendingSubmission groups the weeks a consultant submitted together.
type PendingSubmission struct {
	Key               string
	SubmissionBatchID string
	ConsultantID      string
	ConsultantName    string
	SubmittedAt       time.Time
	// Legacy marks a group reconstructed from timestamps because its rows
	// carry no submission batch id.
	Legacy     bool
	TotalHours decimal.Decimal
	Weeks      []PendingWeek
}
