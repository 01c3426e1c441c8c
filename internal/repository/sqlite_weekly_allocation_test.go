package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyAllocationRepo_CreateGetByWeek(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)

	a := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "40")
	require.NoError(t, NewSQLitePhaseAllocationRepo(db).Create(ctx, a))

	repo := NewSQLiteWeeklyAllocationRepo(db)
	w := testutil.NewTestWeek(a.ID, testutil.Week(1), "8")
	w.ConsultantDescription = "discovery"
	require.NoError(t, repo.Create(ctx, w))

	// A Wednesday resolves to the same week.
	got, err := repo.GetByWeek(ctx, a.ID, testutil.Week(1).AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "8", got.ProposedHours.Decimal.String())
	assert.False(t, got.ApprovedHours.Valid)
	assert.Equal(t, "discovery", got.ConsultantDescription)
	assert.True(t, got.WeekEndDate.Equal(testutil.Week(1).AddDate(0, 0, 6)))

	_, err = repo.GetByWeek(ctx, a.ID, testutil.Week(5))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWeeklyAllocationRepo_UniquePerWeek(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)

	a := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "40")
	require.NoError(t, NewSQLitePhaseAllocationRepo(db).Create(ctx, a))

	repo := NewSQLiteWeeklyAllocationRepo(db)
	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(a.ID, testutil.Week(0), "8")))
	assert.Error(t, repo.Create(ctx, testutil.NewTestWeek(a.ID, testutil.Week(0), "4")))
}

func TestWeeklyAllocationRepo_UpdateReparentDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)
	paRepo := NewSQLitePhaseAllocationRepo(db)

	parent := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "40", testutil.WithApprovalStatus(domain.PhaseApproved))
	child := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "10", testutil.WithParentAllocation(parent.ID))
	require.NoError(t, paRepo.Create(ctx, parent))
	require.NoError(t, paRepo.Create(ctx, child))

	repo := NewSQLiteWeeklyAllocationRepo(db)
	w := testutil.NewTestWeek(child.ID, testutil.Week(2), "6")
	require.NoError(t, repo.Create(ctx, w))

	require.NoError(t, w.Approve(w.CreatedAt))
	require.NoError(t, repo.Update(ctx, w))
	require.NoError(t, repo.Reparent(ctx, w.ID, parent.ID))

	weeks, err := repo.ListByAllocation(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, domain.WeeklyApproved, weeks[0].PlanningStatus)
	assert.Equal(t, "6", weeks[0].ApprovedHours.Decimal.String())

	approved, err := repo.ListByStatus(ctx, domain.WeeklyApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	require.NoError(t, repo.Delete(ctx, w.ID))
	assert.ErrorIs(t, repo.Reparent(ctx, w.ID, parent.ID), domain.ErrNotFound)
}

func TestWeeklyAllocationRepo_ListCapacityRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)
	paRepo := NewSQLitePhaseAllocationRepo(db)
	repo := NewSQLiteWeeklyAllocationRepo(db)

	other := testutil.NewTestProject("Zephyr")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(ctx, other))
	otherPhase := testutil.NewTestPhase(other.ID, "Run")
	require.NoError(t, NewSQLitePhaseRepo(db).Create(ctx, otherPhase))

	approved := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "100", testutil.WithApprovalStatus(domain.PhaseApproved))
	pending := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "100")
	elsewhere := testutil.NewTestAllocation(s.consultant.ID, otherPhase.ID, "100", testutil.WithApprovalStatus(domain.PhaseDeletionPending))
	for _, a := range []*domain.PhaseAllocation{approved, pending, elsewhere} {
		require.NoError(t, paRepo.Create(ctx, a))
	}

	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(approved.ID, testutil.Week(0), "10", testutil.WithApproved("12"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(approved.ID, testutil.Week(1), "8")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(approved.ID, testutil.Week(2), "8",
		testutil.WithPlanningStatus(domain.WeeklyRejected))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(pending.ID, testutil.Week(0), "30")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestWeek(elsewhere.ID, testutil.Week(0), "5")))

	rows, err := repo.ListCapacityRows(ctx, CapacityFilter{From: testutil.Week(0), To: testutil.Week(4)})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Apollo", rows[0].ProjectName)
	assert.Equal(t, "12", rows[0].Hours.String(), "approved hours take precedence")
	assert.Equal(t, "Zephyr", rows[1].ProjectName)
	assert.Equal(t, "8", rows[2].Hours.String())

	rows, err = repo.ListCapacityRows(ctx, CapacityFilter{
		From: testutil.Week(0), To: testutil.Week(4), ExcludeProjectID: other.ID,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.ListCapacityRows(ctx, CapacityFilter{
		From: testutil.Week(0), To: testutil.Week(4), ConsultantIDs: []string{"someone-else"},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = repo.ListCapacityRows(ctx, CapacityFilter{From: testutil.Week(1), To: testutil.Week(1)})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
