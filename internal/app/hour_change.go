package app

import (
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

type HourChangeRequest struct {
	PhaseAllocationID string
	ChangeType        domain.HourChangeType
	RequestedHours    decimal.Decimal
	FromWeekStart     *time.Time
	ToWeekStart       *time.Time
	Reason            string
}

type HourChangeDecision struct {
	ID              string
	Approve         bool
	RejectionReason string
}
