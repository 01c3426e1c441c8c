package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixture wires every service over one in-memory database seeded with a
// consultant, a project and a twelve-week phase.
type fixture struct {
	db     *sql.DB
	uow    db.UnitOfWork
	locker lock.Locker
	repos  repository.Repos

	ledger       LedgerService
	approval     ApprovalService
	batch        BatchService
	availability AvailabilityService
	hourChanges  HourChangeService
	directory    DirectoryService

	consultant *domain.Consultant
	project    *domain.Project
	phase      *domain.Phase
}

func newFixture(t *testing.T, observers ...UseCaseObserver) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:     database,
		uow:    testutil.NewTestUoW(database),
		locker: lock.NewLocalLocker(),
		repos:  repository.NewSQLiteRepos(database),
	}
	f.ledger = NewLedgerService(f.uow, f.locker, f.repos, observers...)
	f.approval = NewApprovalService(f.uow, f.locker, f.repos, observers...)
	f.batch = NewBatchService(f.uow, f.locker, f.repos, observers...)
	f.availability = NewAvailabilityService(f.repos, DefaultAvailabilityConfig(), observers...)
	f.hourChanges = NewHourChangeService(f.uow, f.locker, f.repos, observers...)
	f.directory = NewDirectoryService(f.repos, observers...)

	ctx := context.Background()
	f.consultant = testutil.NewTestConsultant("Ada Lovelace")
	require.NoError(t, f.repos.Consultants.Create(ctx, f.consultant))
	f.project = testutil.NewTestProject("Apollo")
	require.NoError(t, f.repos.Projects.Create(ctx, f.project))
	f.phase = testutil.NewTestPhase(f.project.ID, "Build")
	require.NoError(t, f.repos.Phases.Create(ctx, f.phase))
	return f
}

// allocation stores an allocation for the fixture consultant and phase.
func (f *fixture) allocation(t *testing.T, total string, opts ...testutil.AllocationOption) *domain.PhaseAllocation {
	t.Helper()
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, total, opts...)
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))
	return a
}

func (f *fixture) week(t *testing.T, allocationID string, n int, proposed string, opts ...testutil.WeekOption) *domain.WeeklyAllocation {
	t.Helper()
	w := testutil.NewTestWeek(allocationID, testutil.Week(n), proposed, opts...)
	require.NoError(t, f.repos.Weeks.Create(context.Background(), w))
	return w
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) *domain.AllocationError {
	t.Helper()
	require.Error(t, err)
	var ae *domain.AllocationError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, code, ae.Code, "unexpected error: %v", err)
	return ae
}

func hoursPtr(s string) *decimal.Decimal {
	h := testutil.Hours(s)
	return &h
}
