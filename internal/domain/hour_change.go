package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HourChangeRequest asks an approver to change an approved allocation
// outside the weekly ladder: ADJUSTMENT resets the budget to RequestedHours,
// SHIFT moves RequestedHours of proposed time from one week to another.
type HourChangeRequest struct {
	ID                string
	PhaseAllocationID string
	ChangeType        HourChangeType
	RequestedHours    decimal.Decimal
	FromWeekStart     *time.Time
	ToWeekStart       *time.Time
	Reason            string
	Status            HourChangeStatus
	RejectionReason   *string
	DecidedAt         *time.Time
	CreatedAt         time.Time
}

// Validate checks the request is well formed for its change type.
func (r *HourChangeRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return Validationf("a reason is required")
	}
	switch r.ChangeType {
	case HourChangeAdjustment:
		if !r.RequestedHours.IsPositive() {
			return Validationf("adjusted total hours must be greater than zero")
		}
	case HourChangeShift:
		if !r.RequestedHours.IsPositive() {
			return Validationf("shifted hours must be greater than zero")
		}
		if r.FromWeekStart == nil || r.ToWeekStart == nil {
			return Validationf("a shift needs both a source and a target week")
		}
		if WeekStart(*r.FromWeekStart).Equal(WeekStart(*r.ToWeekStart)) {
			return Validationf("source and target week are the same")
		}
	default:
		return Validationf("unknown change type %q", r.ChangeType)
	}
	return nil
}

// Decide moves a PENDING request to APPROVED or REJECTED.
func (r *HourChangeRequest) Decide(approve bool, reason string, now time.Time) error {
	if r.Status != HourChangePending {
		return Conflictf("hour change request %s is already %s", r.ID, r.Status)
	}
	if approve {
		r.Status = HourChangeApproved
	} else {
		if err := ValidateRejectionReason(reason); err != nil {
			return err
		}
		rr := strings.TrimSpace(reason)
		r.RejectionReason = &rr
		r.Status = HourChangeRejected
	}
	at := now
	r.DecidedAt = &at
	return nil
}
