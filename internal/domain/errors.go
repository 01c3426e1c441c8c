package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode classifies an AllocationError. Values double as the wire error
// names returned to collaborators.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "ValidationError"
	CodeBudgetExceeded         ErrorCode = "BudgetExceeded"
	CodeExceedsRemainingBudget ErrorCode = "ExceedsRemainingBudget"
	CodeApprovalConflict       ErrorCode = "ApprovalConflict"
	CodeNotFound               ErrorCode = "NotFound"
)

// AllocationError is the typed failure of every engine operation. A failed
// operation never writes, so callers can retry after adjusting the request.
type AllocationError struct {
	Code    ErrorCode
	Message string

	// ExcessHours is set for BudgetExceeded.
	ExcessHours decimal.Decimal
	// RemainingHours is set for ExceedsRemainingBudget.
	RemainingHours decimal.Decimal
}

func (e *AllocationError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Is matches any AllocationError carrying the same code, so the sentinels
// below work with errors.Is.
func (e *AllocationError) Is(target error) bool {
	t, ok := target.(*AllocationError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation             = &AllocationError{Code: CodeValidation}
	ErrBudgetExceeded         = &AllocationError{Code: CodeBudgetExceeded}
	ErrExceedsRemainingBudget = &AllocationError{Code: CodeExceedsRemainingBudget}
	ErrApprovalConflict       = &AllocationError{Code: CodeApprovalConflict}
	ErrNotFound               = &AllocationError{Code: CodeNotFound}
)

func Validationf(format string, args ...any) *AllocationError {
	return &AllocationError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *AllocationError {
	return &AllocationError{Code: CodeApprovalConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown id for the named entity.
func NotFound(entity, id string) *AllocationError {
	return &AllocationError{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// BudgetExceeded reports a prospective committed sum over totalHours.
func BudgetExceeded(excess decimal.Decimal) *AllocationError {
	return &AllocationError{
		Code:        CodeBudgetExceeded,
		Message:     fmt.Sprintf("committed hours would exceed the allocation by %s", excess.String()),
		ExcessHours: excess,
	}
}

// ExceedsRemainingBudget reports an approver modification larger than what
// the allocation has left.
func ExceedsRemainingBudget(requested, remaining decimal.Decimal) *AllocationError {
	return &AllocationError{
		Code:           CodeExceedsRemainingBudget,
		Message:        fmt.Sprintf("%s hours requested, %s remaining", requested.String(), remaining.String()),
		RemainingHours: remaining,
	}
}

// CodeOf returns the code of the first AllocationError in err's chain, or ""
// if there is none.
func CodeOf(err error) ErrorCode {
	var ae *AllocationError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
