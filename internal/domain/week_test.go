package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, date("2025-03-03"), WeekStart(date("2025-03-03")))
	assert.Equal(t, date("2025-03-03"), WeekStart(date("2025-03-06")))
	assert.Equal(t, date("2025-03-03"), WeekStart(date("2025-03-09")), "Sunday belongs to the preceding Monday")
	assert.Equal(t, date("2024-12-30"), WeekStart(date("2025-01-01")), "weeks span the year boundary")
}

func TestNearestMonday(t *testing.T) {
	assert.Equal(t, date("2025-03-10"), NearestMonday(date("2025-03-09")), "Sunday rounds forward")
	assert.Equal(t, date("2025-03-03"), NearestMonday(date("2025-03-06")), "Thursday rounds back")
	assert.Equal(t, date("2025-03-10"), NearestMonday(date("2025-03-07")), "Friday rounds forward")
}

func TestWeeksInRange(t *testing.T) {
	weeks := WeeksInRange(date("2024-12-25"), date("2025-01-08"))
	assert.Equal(t, []time.Time{date("2024-12-23"), date("2024-12-30"), date("2025-01-06")}, weeks)
}

func TestNewWeeklyAllocation_DerivesISOWeekAcrossYearBoundary(t *testing.T) {
	w := NewWeeklyAllocation("w", "a", date("2024-12-31"), time.Now())
	assert.Equal(t, date("2024-12-30"), w.WeekStartDate)
	assert.Equal(t, date("2025-01-05"), w.WeekEndDate)
	assert.Equal(t, 1, w.WeekNumber)
	assert.Equal(t, 2025, w.Year)
}

func TestWeekKey_Normalizes(t *testing.T) {
	assert.Equal(t, NewWeekKey("a-1-2025", date("2025-03-03")), NewWeekKey("a-1-2025", date("2025-03-05")))
	assert.NotEqual(t, NewWeekKey("a-1", date("2025-03-03")), NewWeekKey("a", date("2025-03-03")))
}

func TestPhaseOverlapsWeek(t *testing.T) {
	p := &Phase{Name: "Build", StartDate: date("2025-03-05"), EndDate: date("2025-03-20")}
	assert.True(t, p.OverlapsWeek(date("2025-03-03")))
	assert.True(t, p.OverlapsWeek(date("2025-03-17")))
	assert.False(t, p.OverlapsWeek(date("2025-03-24")))
	assert.False(t, p.OverlapsWeek(date("2025-02-24")))
}
