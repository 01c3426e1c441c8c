package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability_ClassifiesWeeksAndSumsProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := testutil.NewTestProject("Gemini")
	require.NoError(t, f.repos.Projects.Create(ctx, other))
	otherPhase := testutil.NewTestPhase(other.ID, "Design")
	require.NoError(t, f.repos.Phases.Create(ctx, otherPhase))

	a := f.allocation(t, "100", testutil.WithApprovalStatus(domain.PhaseApproved))
	f.week(t, a.ID, 0, "30", testutil.WithApproved("25"))
	f.week(t, a.ID, 1, "10")

	b := testutil.NewTestAllocation(f.consultant.ID, otherPhase.ID, "100", testutil.WithApprovalStatus(domain.PhaseApproved))
	require.NoError(t, f.repos.Allocations.Create(ctx, b))
	f.week(t, b.ID, 0, "16")

	// Pending requests do not count.
	p := f.allocation(t, "50")
	f.week(t, p.ID, 1, "20")

	resp, err := f.availability.Availability(ctx, app.AvailabilityRequest{
		Start: testutil.Week(0),
		End:   testutil.Week(1).AddDate(0, 0, 6),
	})
	require.NoError(t, err)
	assert.Equal(t, capacity.ScaleDetail, resp.Scale)
	require.Len(t, resp.Consultants, 1)

	load := resp.Consultants[0].Load
	require.Len(t, load.Weeks, 2)
	assert.Equal(t, "41", load.Weeks[0].Hours.String())
	assert.Equal(t, capacity.TierOverloaded, load.Weeks[0].Status)
	assert.Len(t, load.Weeks[0].Contributions, 2)
	assert.Equal(t, "10", load.Weeks[1].Hours.String())
	assert.Equal(t, capacity.TierAvailable, load.Weeks[1].Status)
	assert.Equal(t, "51", load.TotalAllocated.String())
	assert.Equal(t, "25.5", load.AverageHoursPerWeek.String())
	assert.Equal(t, capacity.TierAvailable, load.OverallStatus)

	excluded, err := f.availability.Availability(ctx, app.AvailabilityRequest{
		Start:            testutil.Week(0),
		End:              testutil.Week(0).AddDate(0, 0, 6),
		ExcludeProjectID: other.ID,
		Scale:            capacity.ScaleFleet,
	})
	require.NoError(t, err)
	week := excluded.Consultants[0].Load.Weeks[0]
	assert.Equal(t, "25", week.Hours.String())
	assert.Equal(t, capacity.TierAvailable, week.Status)
}

func TestAvailability_IncludesIdleConsultants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	idle := testutil.NewTestConsultant("Grace Hopper")
	require.NoError(t, f.repos.Consultants.Create(ctx, idle))

	resp, err := f.availability.Availability(ctx, app.AvailabilityRequest{
		Start:         testutil.Week(0),
		End:           testutil.Week(2),
		ConsultantIDs: []string{idle.ID},
	})
	require.NoError(t, err)
	require.Len(t, resp.Consultants, 1)
	load := resp.Consultants[0].Load
	assert.Equal(t, idle.ID, load.ConsultantID)
	require.Len(t, load.Weeks, 3)
	for _, w := range load.Weeks {
		assert.True(t, w.Hours.IsZero())
		assert.Equal(t, capacity.TierAvailable, w.Status)
	}
}

func TestAvailability_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  app.AvailabilityRequest
		code domain.ErrorCode
	}{
		{"missing dates", app.AvailabilityRequest{}, domain.CodeValidation},
		{"inverted range", app.AvailabilityRequest{Start: testutil.Week(2), End: testutil.Week(0)}, domain.CodeValidation},
		{"unknown scale", app.AvailabilityRequest{Start: testutil.Week(0), End: testutil.Week(1), Scale: "coarse"}, domain.CodeValidation},
		{"unknown consultant", app.AvailabilityRequest{Start: testutil.Week(0), End: testutil.Week(1), ConsultantIDs: []string{"ghost"}}, domain.CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.availability.Availability(ctx, tc.req)
			requireCode(t, err, tc.code)
		})
	}
}
