package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/service"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	formatter.DisableColor()
}

type cliFixture struct {
	app        *App
	repos      repository.Repos
	consultant *domain.Consultant
	project    *domain.Project
	phase      *domain.Phase
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *cliFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	locker := lock.NewLocalLocker()
	repos := repository.NewSQLiteRepos(database)

	ledger := service.NewLedgerService(uow, locker, repos)
	f := &cliFixture{
		repos: repos,
		app: &App{
			Ledger:        ledger,
			Approval:      service.NewApprovalService(uow, locker, repos),
			Batch:         service.NewBatchService(uow, locker, repos),
			Availability:  service.NewAvailabilityService(repos, service.DefaultAvailabilityConfig()),
			HourChanges:   service.NewHourChangeService(uow, locker, repos),
			Directory:     service.NewDirectoryService(repos),
			Import:        service.NewImportService(uow, repos, ledger),
			IsInteractive: func() bool { return false },
		},
	}

	ctx := context.Background()
	f.consultant = testutil.NewTestConsultant("Ada Lovelace")
	require.NoError(t, repos.Consultants.Create(ctx, f.consultant))
	f.project = testutil.NewTestProject("Apollo")
	require.NoError(t, repos.Projects.Create(ctx, f.project))
	f.phase = testutil.NewTestPhase(f.project.ID, "Build")
	require.NoError(t, repos.Phases.Create(ctx, f.phase))
	return f
}

func (f *cliFixture) approvedAllocation(t *testing.T, total string) *domain.PhaseAllocation {
	t.Helper()
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, total, testutil.WithApprovalStatus(domain.PhaseApproved))
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))
	return a
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, domain.CodeOf(err), "unexpected error: %v", err)
}

func day(n int) string {
	return testutil.Week(n).Format(domain.DateLayout)
}

// --- directory ---

func TestConsultantAddAndList(t *testing.T) {
	f := testApp(t)

	out, err := executeCmd(t, f.app, "consultant", "add", "--name", "Grace Hopper", "--email", "grace@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Created consultant Grace Hopper")

	out, err = executeCmd(t, f.app, "consultant", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "grace@example.com")
}

func TestPhaseAdd_ByProjectName(t *testing.T) {
	f := testApp(t)

	out, err := executeCmd(t, f.app, "phase", "add", "--project", "apollo", "--name", "Launch",
		"--start", day(12), "--end", day(16))
	require.NoError(t, err)
	assert.Contains(t, out, "Created phase Launch")

	out, err = executeCmd(t, f.app, "phase", "list", "--project", f.project.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Build")
}

func TestPhaseAdd_InvertedDates(t *testing.T) {
	f := testApp(t)
	_, err := executeCmd(t, f.app, "phase", "add", "--project", f.project.ID, "--name", "Bad",
		"--start", day(4), "--end", day(1))
	requireCode(t, err, domain.CodeValidation)
}

// --- allocations ---

func TestProjectImport(t *testing.T) {
	f := testApp(t)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"project": {"name": "Gemini"},
		"phases": [{"ref": "d", "name": "Discovery", "start_date": "2025-03-03", "end_date": "2025-03-28"}],
		"consultants": [{"ref": "g", "name": "Grace Hopper", "email": "grace@example.com"}],
		"allocations": [{"consultant_ref": "g", "phase_ref": "d", "hours": "32"}]
	}`), 0o644))

	out, err := executeCmd(t, f.app, "project", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported project Gemini")
	assert.Contains(t, out, "1 phases, 1 consultants created, 0 reused")
	assert.Contains(t, out, "Grace Hopper")

	_, err = executeCmd(t, f.app, "project", "import", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "loading plan file")
}

func TestAllocationRequest_MergesPendingRequests(t *testing.T) {
	f := testApp(t)

	out, err := executeCmd(t, f.app, "allocation", "request",
		"--consultant", f.consultant.ID[:8], "--phase", f.phase.ID, "--hours", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Requested allocation")

	out, err = executeCmd(t, f.app, "alloc", "request",
		"--consultant", f.consultant.ID, "--phase", f.phase.ID[:8], "--hours", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Merged into pending allocation")
	assert.Contains(t, out, "8h")

	out, err = executeCmd(t, f.app, "allocation", "list", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Apollo / Build")
}

func TestAllocationApproveAndShow(t *testing.T) {
	f := testApp(t)
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, "12")
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))

	out, err := executeCmd(t, f.app, "allocation", "approve", a.ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "Approved")

	out, err = executeCmd(t, f.app, "allocation", "show", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Budget     12h")
	assert.Contains(t, out, "No weeks planned.")
}

func TestAllocationReject_NeedsReasonWithoutTerminal(t *testing.T) {
	f := testApp(t)
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, "12")
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))

	_, err := executeCmd(t, f.app, "allocation", "reject", a.ID)
	requireCode(t, err, domain.CodeValidation)

	out, err := executeCmd(t, f.app, "allocation", "reject", a.ID, "--reason", "Budget is not signed off yet")
	require.NoError(t, err)
	assert.Contains(t, out, "Rejected")
}

func TestAllocationDelete_RequiresYesWithoutTerminal(t *testing.T) {
	f := testApp(t)
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, "12", testutil.WithApprovalStatus(domain.PhaseDeletionPending))
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))

	_, err := executeCmd(t, f.app, "allocation", "delete", a.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := executeCmd(t, f.app, "allocation", "delete", a.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted allocation")
}

// --- weeks ---

func TestWeekSubmit_SingleAndBudget(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "10")

	out, err := executeCmd(t, f.app, "week", "submit", "--allocation", a.ID, "--week", day(0)+"=6")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 6h")

	_, err = executeCmd(t, f.app, "week", "submit", "--allocation", a.ID, "--week", day(1)+"=5")
	requireCode(t, err, domain.CodeBudgetExceeded)
}

func TestWeekSubmit_ManyWeeksShareABatch(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "40")

	out, err := executeCmd(t, f.app, "week", "submit", "--allocation", a.ID,
		"--week", day(2)+"=4", "--week", day(1)+"=8")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted 2 weeks in batch")

	out, err = executeCmd(t, f.app, "week", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "12h")
}

func TestWeekSubmit_MalformedEntry(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "40")
	_, err := executeCmd(t, f.app, "week", "submit", "--allocation", a.ID, "--week", day(0))
	requireCode(t, err, domain.CodeValidation)
}

func TestWeekBatch_All(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "40")
	_, err := executeCmd(t, f.app, "week", "submit", "--allocation", a.ID,
		"--week", day(0)+"=8", "--week", day(1)+"=8")
	require.NoError(t, err)

	out, err := executeCmd(t, f.app, "week", "batch", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "2 updated")

	out, err = executeCmd(t, f.app, "week", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing waiting for approval.")
}

func TestWeekApprove_ByPrefix(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "40")
	w := testutil.NewTestWeek(a.ID, testutil.Week(0), "8")
	require.NoError(t, f.repos.Weeks.Create(context.Background(), w))

	out, err := executeCmd(t, f.app, "week", "approve", w.ID[:8], "--hours", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Modified")
	assert.Contains(t, out, "6h")
}

// --- availability and hour changes ---

func TestAvailability(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "60")
	w := testutil.NewTestWeek(a.ID, testutil.Week(0), "20", testutil.WithApproved("20"))
	require.NoError(t, f.repos.Weeks.Create(context.Background(), w))

	out, err := executeCmd(t, f.app, "availability", "--start", day(0), "--weeks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "W10")
	assert.Contains(t, out, "W11")
	assert.Contains(t, out, "detail scale")

	_, err = executeCmd(t, f.app, "availability", "--weeks", "0")
	requireCode(t, err, domain.CodeValidation)
}

func TestHoursAdjustAndApprove(t *testing.T) {
	f := testApp(t)
	a := f.approvedAllocation(t, "10")

	out, err := executeCmd(t, f.app, "hours", "adjust", "--allocation", a.ID, "--hours", "14",
		"--reason", "client extended the scope")
	require.NoError(t, err)
	assert.Contains(t, out, "Opened adjustment request")

	list, err := f.app.HourChanges.List(context.Background(), domain.HourChangePending)
	require.NoError(t, err)
	require.Len(t, list, 1)

	out, err = executeCmd(t, f.app, "hours", "approve", list[0].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	stored, err := f.repos.Allocations.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "14", stored.TotalHours.String())
}

// --- helpers ---

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz789"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"exact", "abc123", "abc123", false},
		{"unique prefix", "xy", "xyz789", false},
		{"ambiguous prefix", "ab", "", true},
		{"no match passes through", "nope", "nope", false},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchID("week", tt.input, ids)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWeekEntries_SortsByWeek(t *testing.T) {
	weeks, err := parseWeekEntries([]string{day(3) + "=4", day(1) + "= 7.5"}, "build")
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, testutil.Week(1), weeks[0].WeekStart)
	assert.Equal(t, "7.5", weeks[0].Hours.String())
	assert.Equal(t, "build", weeks[1].ConsultantDescription)
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	f := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, serve(ctx, f.app, "127.0.0.1:0"))
}
