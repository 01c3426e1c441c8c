package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/lock"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/service"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router     *gin.Engine
	repos      repository.Repos
	consultant *domain.Consultant
	project    *domain.Project
	phase      *domain.Phase
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	locker := lock.NewLocalLocker()
	repos := repository.NewSQLiteRepos(database)
	logger, _ := test.NewNullLogger()

	svc := Services{
		Ledger:       service.NewLedgerService(uow, locker, repos),
		Approval:     service.NewApprovalService(uow, locker, repos),
		Batch:        service.NewBatchService(uow, locker, repos),
		Availability: service.NewAvailabilityService(repos, service.DefaultAvailabilityConfig()),
		HourChanges:  service.NewHourChangeService(uow, locker, repos),
		Directory:    service.NewDirectoryService(repos),
	}

	f := &apiFixture{router: NewRouter(svc, logger, Options{}), repos: repos}
	ctx := context.Background()
	f.consultant = testutil.NewTestConsultant("Grace Hopper")
	require.NoError(t, repos.Consultants.Create(ctx, f.consultant))
	f.project = testutil.NewTestProject("Mercury")
	require.NoError(t, repos.Projects.Create(ctx, f.project))
	f.phase = testutil.NewTestPhase(f.project.ID, "Discovery")
	require.NoError(t, repos.Phases.Create(ctx, f.phase))
	return f
}

func (f *apiFixture) approvedAllocation(t *testing.T, total string) *domain.PhaseAllocation {
	t.Helper()
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, total, testutil.WithApprovalStatus(domain.PhaseApproved))
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))
	return a
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func weekDate(n int) string {
	return testutil.Week(n).Format(domain.DateLayout)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
}

func TestSubmitWeek_OK(t *testing.T) {
	f := newAPIFixture(t)
	a := f.approvedAllocation(t, "10")

	rec, body := f.do(t, http.MethodPost, "/weekly-allocations", map[string]any{
		"phaseAllocationId": a.ID,
		"weekStartDate":     weekDate(0),
		"plannedHours":      6.5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	week := body["week"].(map[string]any)
	assert.Equal(t, 6.5, week["proposedHours"])
	assert.Equal(t, "PENDING", week["planningStatus"])
}

func TestSubmitWeek_BudgetExceededIsConflict(t *testing.T) {
	f := newAPIFixture(t)
	a := f.approvedAllocation(t, "10")

	rec, body := f.do(t, http.MethodPost, "/weekly-allocations", map[string]any{
		"phaseAllocationId": a.ID,
		"weekStartDate":     weekDate(1),
		"plannedHours":      "12",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "BudgetExceeded", body["error"])
	assert.Equal(t, 2.0, body["excessHours"])
}

func TestSubmitWeek_ValidationFields(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodPost, "/weekly-allocations", map[string]any{
		"weekStartDate": "03/03/2025",
		"plannedHours":  -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "phaseAllocationId")
	assert.Contains(t, fields, "weekStartDate")
	assert.Contains(t, fields, "plannedHours")
}

func TestSubmitWeek_MalformedBody(t *testing.T) {
	f := newAPIFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/weekly-allocations", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAllocation_NotFound(t *testing.T) {
	f := newAPIFixture(t)
	rec, body := f.do(t, http.MethodGet, "/phase-allocations/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body["error"])
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAllocation_MergesIntoPending(t *testing.T) {
	f := newAPIFixture(t)
	req := map[string]any{"consultantId": f.consultant.ID, "phaseId": f.phase.ID, "hours": 5}

	rec, body := f.do(t, http.MethodPost, "/phase-allocations", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, false, body["merged"])

	req["hours"] = 3
	rec, body = f.do(t, http.MethodPost, "/phase-allocations", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["merged"])
	alloc := body["allocation"].(map[string]any)
	assert.Equal(t, 8.0, alloc["totalHours"])
	assert.Equal(t, true, alloc["isComposite"])
}

func TestPhaseAction_RejectNeedsReason(t *testing.T) {
	f := newAPIFixture(t)
	a := testutil.NewTestAllocation(f.consultant.ID, f.phase.ID, "10")
	require.NoError(t, f.repos.Allocations.Create(context.Background(), a))

	rec, body := f.do(t, http.MethodPost, "/phase-allocations/"+a.ID, map[string]any{"action": "reject", "rejectionReason": "no"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", body["error"])

	rec, body = f.do(t, http.MethodPost, "/phase-allocations/"+a.ID, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", body["allocation"].(map[string]any)["approvalStatus"])

	rec, body = f.do(t, http.MethodPost, "/phase-allocations/"+a.ID, map[string]any{"action": "approve"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ApprovalConflict", body["error"])
}

func TestBatch_PartialFailure(t *testing.T) {
	f := newAPIFixture(t)
	a := f.approvedAllocation(t, "20")
	ctx := context.Background()
	w1 := testutil.NewTestWeek(a.ID, testutil.Week(0), "4")
	w2 := testutil.NewTestWeek(a.ID, testutil.Week(1), "4")
	require.NoError(t, f.repos.Weeks.Create(ctx, w1))
	require.NoError(t, f.repos.Weeks.Create(ctx, w2))

	rec, body := f.do(t, http.MethodPost, "/weekly-allocations/batch", map[string]any{
		"allocations": []map[string]any{{"id": w1.ID}, {"id": w2.ID}, {"id": "ghost"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, body["updated"])
	failed := body["failed"].([]any)
	require.Len(t, failed, 1)
	assert.Equal(t, "ghost", failed[0].(map[string]any)["id"])
	assert.Equal(t, "NotFound", failed[0].(map[string]any)["reason"])
}

func TestBatch_RequiresItems(t *testing.T) {
	f := newAPIFixture(t)
	rec, body := f.do(t, http.MethodPost, "/weekly-allocations/batch", map[string]any{"allocations": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["fields"], "allocations")
}

func TestAvailability(t *testing.T) {
	f := newAPIFixture(t)
	a := f.approvedAllocation(t, "60")
	w := testutil.NewTestWeek(a.ID, testutil.Week(0), "41", testutil.WithApproved("41"), testutil.WithPlanningStatus(domain.WeeklyApproved))
	require.NoError(t, f.repos.Weeks.Create(context.Background(), w))

	path := "/consultants/availability?startDate=" + weekDate(0) + "&endDate=" + weekDate(1)
	rec, body := f.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	consultants := body["consultants"].([]any)
	require.Len(t, consultants, 1)
	load := consultants[0].(map[string]any)
	assert.Equal(t, 41.0, load["allocatedHours"])
	weeks := load["weeklyBreakdown"].([]any)
	require.Len(t, weeks, 2)
	first := weeks[0].(map[string]any)
	assert.Equal(t, "overloaded", first["status"])
	assert.Len(t, first["allocations"], 1)
}

func TestAvailability_MissingDates(t *testing.T) {
	f := newAPIFixture(t)
	rec, body := f.do(t, http.MethodGet, "/consultants/availability", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "startDate")
	assert.Contains(t, fields, "endDate")
}

func TestDirectoryRoutes(t *testing.T) {
	f := newAPIFixture(t)

	rec, body := f.do(t, http.MethodPost, "/consultants", map[string]any{"name": "Katherine Johnson"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)

	rec, body = f.do(t, http.MethodGet, "/consultants/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Katherine Johnson", body["name"])

	rec, body = f.do(t, http.MethodPost, "/projects/"+f.project.ID+"/phases", map[string]any{
		"name":      "Launch",
		"startDate": weekDate(12),
		"endDate":   weekDate(4),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "ValidationError", body["error"])
}

func TestHourChangeRoutes(t *testing.T) {
	f := newAPIFixture(t)
	a := f.approvedAllocation(t, "10")

	rec, body := f.do(t, http.MethodPost, "/hour-change-requests", map[string]any{
		"phaseAllocationId": a.ID,
		"changeType":        "ADJUSTMENT",
		"requestedHours":    16,
		"reason":            "scope grew after discovery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "PENDING", body["status"])
	id := body["id"].(string)

	rec, body = f.do(t, http.MethodPost, "/hour-change-requests/"+id, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", body["status"])

	rec, body = f.do(t, http.MethodGet, "/phase-allocations/"+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 16.0, body["allocation"].(map[string]any)["totalHours"])
}
