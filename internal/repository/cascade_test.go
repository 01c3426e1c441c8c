package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_AllocationToWeeks verifies phase_allocations -> weekly_allocations cascade.
func TestCascadeDelete_AllocationToWeeks(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)

	paRepo := NewSQLitePhaseAllocationRepo(db)
	weekRepo := NewSQLiteWeeklyAllocationRepo(db)

	a := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "0", testutil.WithComposition("10", "5"))
	require.NoError(t, paRepo.Create(ctx, a))
	w := testutil.NewTestWeek(a.ID, testutil.Week(0), "8")
	require.NoError(t, weekRepo.Create(ctx, w))

	require.NoError(t, paRepo.Delete(ctx, a.ID))

	_, err := weekRepo.GetByID(ctx, w.ID)
	assert.Error(t, err, "week should be cascade-deleted with its allocation")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM allocation_compositions WHERE phase_allocation_id = ?`, a.ID).Scan(&n))
	assert.Zero(t, n, "composition log should be cascade-deleted with its allocation")
}

// TestCascadeDelete_ParentNulledOnChild verifies the parent link is cleared
// rather than deleting the child.
func TestCascadeDelete_ParentNulledOnChild(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)
	paRepo := NewSQLitePhaseAllocationRepo(db)

	parent := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "10")
	child := testutil.NewTestAllocation(s.consultant.ID, s.phase.ID, "5", testutil.WithParentAllocation(parent.ID))
	require.NoError(t, paRepo.Create(ctx, parent))
	require.NoError(t, paRepo.Create(ctx, child))

	require.NoError(t, paRepo.Delete(ctx, parent.ID))

	got, err := paRepo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentAllocationID)
}

// TestCascadeDelete_ProjectToPhases verifies projects -> phases cascade.
func TestCascadeDelete_ProjectToPhases(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedPhase(t, db)

	_, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, s.project.ID)
	require.NoError(t, err)

	_, err = NewSQLitePhaseRepo(db).GetByID(ctx, s.phase.ID)
	assert.Error(t, err, "phase should be cascade-deleted when project is deleted")
}
