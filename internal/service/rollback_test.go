package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIntoParent_RollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.allocation(t, "10", testutil.WithApprovalStatus(domain.PhaseApproved))
	f.week(t, parent.ID, 0, "4", testutil.WithApproved("4"))
	child := f.allocation(t, "6", testutil.WithParentAllocation(parent.ID))
	f.week(t, child.ID, 1, "3")

	// The first weekly write of the merge is the reparent of week 1.
	failUoW := &testutil.FailingExecUoW{
		DB:     f.db,
		Table:  "weekly_allocations",
		FailOn: 1,
		Err:    fmt.Errorf("injected reparent failure"),
	}
	svc := NewApprovalService(failUoW, f.locker, f.repos)

	_, err := svc.ApplyPhaseAction(ctx, app.PhaseActionRequest{AllocationID: child.ID, Action: domain.PhaseEventApprove})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected reparent failure")

	storedParent, err := f.repos.Allocations.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", storedParent.TotalHours.String(), "parent total should be unchanged after rollback")

	storedChild, err := f.repos.Allocations.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePending, storedChild.ApprovalStatus)

	weeks, err := f.repos.Weeks.ListByAllocation(ctx, child.ID)
	require.NoError(t, err)
	assert.Len(t, weeks, 1, "the child's week should not have moved")
}

func TestSubmitWeeks_RollsBackOnSecondWeekFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.allocation(t, "10", testutil.WithApprovalStatus(domain.PhaseApproved))

	failUoW := &testutil.FailingExecUoW{
		DB:     f.db,
		Table:  "weekly_allocations",
		FailOn: 2,
		Err:    fmt.Errorf("injected week insert failure"),
	}
	svc := NewLedgerService(failUoW, f.locker, f.repos)

	_, err := svc.SubmitWeeks(ctx, app.SubmitWeeksRequest{
		PhaseAllocationID: a.ID,
		Weeks: []app.WeekHours{
			{WeekStart: testutil.Week(0), Hours: testutil.Hours("2")},
			{WeekStart: testutil.Week(1), Hours: testutil.Hours("2")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected week insert failure")

	weeks, err := f.repos.Weeks.ListByAllocation(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, weeks, "no week should exist after rollback")
}
