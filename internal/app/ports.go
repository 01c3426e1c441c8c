package app

import (
	"context"

	"github.com/alexanderramin/staffplan/internal/domain"
)

type SubmitWeeklyHoursUseCase interface {
	SubmitWeeklyHours(ctx context.Context, req SubmitWeekRequest) (*domain.WeeklyAllocation, error)
	SubmitWeeks(ctx context.Context, req SubmitWeeksRequest) (*SubmitWeeksResponse, error)
}

type CreateAllocationUseCase interface {
	CreateOrMergeAllocation(ctx context.Context, req CreateAllocationRequest) (*CreateAllocationResponse, error)
}

type PhaseActionUseCase interface {
	ApplyPhaseAction(ctx context.Context, req PhaseActionRequest) (*PhaseActionResponse, error)
}

type WeeklyActionUseCase interface {
	ApplyWeeklyAction(ctx context.Context, req WeeklyActionRequest) (*domain.WeeklyAllocation, error)
}

type BatchApprovalUseCase interface {
	ApproveBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
}

type AvailabilityUseCase interface {
	Availability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error)
}
