package capacity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func week(n int) time.Time { return monday.AddDate(0, 0, 7*n) }

func h(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func row(consultant string, weekStart time.Time, hours string) Row {
	return Row{
		ConsultantID:      consultant,
		PhaseAllocationID: "pa-" + consultant,
		ProjectName:       "Apollo",
		PhaseName:         "Build",
		WeekStart:         weekStart,
		Hours:             h(hours),
	}
}

func TestScales_ClassifyBoundaries(t *testing.T) {
	s := DefaultScales()
	tests := []struct {
		hours  string
		detail Tier
		fleet  Tier
	}{
		{"0", TierAvailable, TierAvailable},
		{"15", TierAvailable, TierAvailable},
		{"16", TierPartiallyBusy, TierAvailable},
		{"30", TierPartiallyBusy, TierAvailable},
		{"31", TierBusy, TierFull},
		{"40", TierBusy, TierFull},
		{"41", TierOverloaded, TierOver},
	}
	for _, tt := range tests {
		t.Run(tt.hours, func(t *testing.T) {
			assert.Equal(t, tt.detail, s.Detail.Classify(h(tt.hours)))
			assert.Equal(t, tt.fleet, s.Fleet.Classify(h(tt.hours)))
		})
	}
}

func TestScales_Lookup(t *testing.T) {
	s := DefaultScales()
	got, err := s.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, ScaleDetail, got.Name)

	got, err = s.Lookup("FLEET")
	require.NoError(t, err)
	assert.Equal(t, ScaleFleet, got.Name)

	_, err = s.Lookup("quarterly")
	assert.Error(t, err)
}

func TestScale_Validate(t *testing.T) {
	assert.NoError(t, DefaultScales().Detail.Validate())
	assert.Error(t, DetailScale(h("30"), h("15"), h("40")).Validate())
	assert.Error(t, Scale{Name: "empty"}.Validate())
}

func TestProject_OverloadedWeekOnBothScales(t *testing.T) {
	loads := Project([]string{"c1"}, []Row{row("c1", week(0), "41")}, week(0), week(0).AddDate(0, 0, 6), DefaultOptions())
	require.Len(t, loads, 1)
	require.Len(t, loads[0].Weeks, 1)
	assert.Equal(t, TierOverloaded, loads[0].Weeks[0].Status)
	assert.Equal(t, TierOver, loads[0].OverallStatus)
	assert.Equal(t, "0", loads[0].TotalAvailable.String())
}

func TestProject_DriftedRowsLandInOneWeek(t *testing.T) {
	rows := []Row{
		row("c1", week(1), "10"),
		// Stored on a Tuesday and a Saturday: nearest Mondays are week 1 and week 2.
		row("c1", week(1).AddDate(0, 0, 1), "5"),
		row("c1", week(1).AddDate(0, 0, 5), "7"),
	}
	loads := Project([]string{"c1"}, rows, week(0), week(3).AddDate(0, 0, 6), DefaultOptions())
	require.Len(t, loads[0].Weeks, 4)

	assert.Equal(t, "0", loads[0].Weeks[0].Hours.String())
	assert.Equal(t, "15", loads[0].Weeks[1].Hours.String())
	assert.Equal(t, "7", loads[0].Weeks[2].Hours.String())
	assert.Equal(t, "22", loads[0].TotalAllocated.String(), "no row may be counted twice")
	require.Len(t, loads[0].Weeks[1].Contributions, 1)
	assert.Equal(t, "15", loads[0].Weeks[1].Contributions[0].Hours.String())
}

func TestProject_YearBoundary(t *testing.T) {
	// 2024-12-30 is a Monday in ISO week 1 of 2025.
	ws := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	loads := Project([]string{"c1"}, []Row{row("c1", ws, "20")}, ws, ws.AddDate(0, 0, 13), DefaultOptions())
	require.Len(t, loads[0].Weeks, 2)
	assert.Equal(t, "20", loads[0].Weeks[0].Hours.String())
	assert.Equal(t, 1, loads[0].Weeks[0].WeekNumber)
	assert.Equal(t, 2025, loads[0].Weeks[0].Year)
}

func TestProject_AveragesAndAvailability(t *testing.T) {
	rows := []Row{row("c1", week(0), "10"), row("c1", week(1), "20"), row("c2", week(0), "40")}
	loads := Project([]string{"c1", "c2", "c3"}, rows, week(0), week(1).AddDate(0, 0, 6), DefaultOptions())
	require.Len(t, loads, 3)

	c1 := loads[0]
	assert.Equal(t, "30", c1.TotalAllocated.String())
	assert.Equal(t, "15", c1.AverageHoursPerWeek.String())
	assert.Equal(t, "50", c1.TotalAvailable.String())
	assert.Equal(t, TrendUp, c1.Trend)
	assert.Equal(t, TierAvailable, c1.Weeks[0].Status)
	assert.Equal(t, TierPartiallyBusy, c1.Weeks[1].Status)

	c2 := loads[1]
	assert.Equal(t, "20", c2.AverageHoursPerWeek.String())
	assert.Equal(t, TrendDown, c2.Trend)

	c3 := loads[2]
	assert.Equal(t, "c3", c3.ConsultantID)
	assert.True(t, c3.TotalAllocated.IsZero())
	assert.Equal(t, "80", c3.TotalAvailable.String())
	assert.Equal(t, TrendStable, c3.Trend)
}

func TestComputeTrend_Hysteresis(t *testing.T) {
	mk := func(hours ...string) []WeekLoad {
		var ws []WeekLoad
		for _, s := range hours {
			ws = append(ws, WeekLoad{Hours: h(s)})
		}
		return ws
	}
	assert.Equal(t, TrendStable, ComputeTrend(mk("20")))
	assert.Equal(t, TrendStable, ComputeTrend(mk("20", "21")))
	assert.Equal(t, TrendUp, ComputeTrend(mk("20", "23")))
	assert.Equal(t, TrendDown, ComputeTrend(mk("20", "17")))
	assert.Equal(t, TrendStable, ComputeTrend(mk("0", "0", "0")))
	assert.Equal(t, TrendUp, ComputeTrend(mk("0", "0", "1")))
}

func TestRowWindow(t *testing.T) {
	from, to := RowWindow(week(0).AddDate(0, 0, 2), week(2))
	assert.True(t, from.Equal(week(0).AddDate(0, 0, -3)))
	assert.True(t, to.Equal(week(2).AddDate(0, 0, 3)))
}
