package domain

import "time"

// DateLayout is the storage and wire format of calendar dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday closing the week that starts on weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return Day(weekStart).AddDate(0, 0, 6)
}

// NearestMonday rounds t to the closest Monday; a Thursday rounds back.
// Rows whose stored week start drifted a few days from the canonical
// Monday still land in exactly one week.
func NearestMonday(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	if offset <= 3 {
		return d.AddDate(0, 0, -offset)
	}
	return d.AddDate(0, 0, 7-offset)
}

// WeeksInRange returns the canonical Mondays of every week that overlaps
// [start, end].
func WeeksInRange(start, end time.Time) []time.Time {
	end = Day(end)
	var weeks []time.Time
	for w := WeekStart(start); !w.After(end); w = w.AddDate(0, 0, 7) {
		weeks = append(weeks, w)
	}
	return weeks
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// WeekKey identifies one weekly cell of a phase allocation. Week identity is
// the start date; ISO week numbers are derived and ambiguous across years.
type WeekKey struct {
	PhaseAllocationID string
	WeekStart         time.Time
}

// NewWeekKey normalizes weekStart to its Monday.
func NewWeekKey(phaseAllocationID string, weekStart time.Time) WeekKey {
	return WeekKey{PhaseAllocationID: phaseAllocationID, WeekStart: WeekStart(weekStart)}
}
