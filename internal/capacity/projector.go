package capacity

import (
	"sort"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Trend compares the second half of a window with the first.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

var (
	trendUpFactor   = decimal.RequireFromString("1.1")
	trendDownFactor = decimal.RequireFromString("0.9")
)

// Row is one committed weekly cell as read from the ledger.
type Row struct {
	ConsultantID      string
	PhaseAllocationID string
	ProjectID         string
	ProjectName       string
	PhaseID           string
	PhaseName         string
	WeekStart         time.Time
	Hours             decimal.Decimal
}

// Contribution is one allocation's share of a week.
type Contribution struct {
	PhaseAllocationID string
	ProjectID         string
	ProjectName       string
	PhaseID           string
	PhaseName         string
	Hours             decimal.Decimal
}

type WeekLoad struct {
	WeekStart     time.Time
	WeekEnd       time.Time
	WeekNumber    int
	Year          int
	Hours         decimal.Decimal
	Status        Tier
	Contributions []Contribution
}

type ConsultantLoad struct {
	ConsultantID        string
	Weeks               []WeekLoad
	TotalAllocated      decimal.Decimal
	AverageHoursPerWeek decimal.Decimal
	TotalAvailable      decimal.Decimal
	OverallStatus       Tier
	Trend               Trend
}

type Options struct {
	// WeeklyCapacity is the full-time hours of one week.
	WeeklyCapacity decimal.Decimal
	// WeekScale grades each week; OverallScale grades the weekly average.
	WeekScale    Scale
	OverallScale Scale
}

// DefaultOptions grades weeks with the detail scale and the window with the
// fleet scale against a 40 hour week.
func DefaultOptions() Options {
	s := DefaultScales()
	return Options{WeeklyCapacity: decimal.NewFromInt(40), WeekScale: s.Detail, OverallScale: s.Fleet}
}

// RowWindow widens [start, end] so rows whose stored week start drifted up
// to three days from the canonical Monday are still read.
func RowWindow(start, end time.Time) (time.Time, time.Time) {
	weeks := domain.WeeksInRange(start, end)
	if len(weeks) == 0 {
		return domain.Day(start), domain.Day(end)
	}
	return weeks[0].AddDate(0, 0, -3), weeks[len(weeks)-1].AddDate(0, 0, 3)
}

// Project aggregates rows into a per-week load for each consultant over the
// weeks overlapping [start, end]. Every consultant in consultantIDs appears
// in the result even without rows; rows of other consultants are ignored.
// Each row lands in exactly one week: the Monday nearest its week start.
func Project(consultantIDs []string, rows []Row, start, end time.Time, opts Options) []ConsultantLoad {
	weeks := domain.WeeksInRange(start, end)
	weekIndex := make(map[time.Time]int, len(weeks))
	for i, w := range weeks {
		weekIndex[w] = i
	}

	loads := make(map[string]*ConsultantLoad, len(consultantIDs))
	out := make([]*ConsultantLoad, 0, len(consultantIDs))
	for _, id := range consultantIDs {
		if _, ok := loads[id]; ok {
			continue
		}
		l := &ConsultantLoad{ConsultantID: id, Weeks: make([]WeekLoad, len(weeks))}
		for i, w := range weeks {
			year, num := w.ISOWeek()
			l.Weeks[i] = WeekLoad{WeekStart: w, WeekEnd: domain.WeekEnd(w), WeekNumber: num, Year: year, Hours: decimal.Zero}
		}
		loads[id] = l
		out = append(out, l)
	}

	for _, r := range rows {
		l, ok := loads[r.ConsultantID]
		if !ok {
			continue
		}
		i, ok := weekIndex[domain.NearestMonday(r.WeekStart)]
		if !ok {
			continue
		}
		wk := &l.Weeks[i]
		wk.Hours = wk.Hours.Add(r.Hours)
		wk.Contributions = addContribution(wk.Contributions, r)
	}

	result := make([]ConsultantLoad, 0, len(out))
	for _, l := range out {
		summarize(l, opts)
		result = append(result, *l)
	}
	return result
}

func addContribution(cs []Contribution, r Row) []Contribution {
	for i := range cs {
		if cs[i].PhaseAllocationID == r.PhaseAllocationID {
			cs[i].Hours = cs[i].Hours.Add(r.Hours)
			return cs
		}
	}
	cs = append(cs, Contribution{
		PhaseAllocationID: r.PhaseAllocationID,
		ProjectID:         r.ProjectID,
		ProjectName:       r.ProjectName,
		PhaseID:           r.PhaseID,
		PhaseName:         r.PhaseName,
		Hours:             r.Hours,
	})
	sort.SliceStable(cs, func(a, b int) bool {
		if cs[a].ProjectName != cs[b].ProjectName {
			return cs[a].ProjectName < cs[b].ProjectName
		}
		return cs[a].PhaseName < cs[b].PhaseName
	})
	return cs
}

func summarize(l *ConsultantLoad, opts Options) {
	total := decimal.Zero
	for i := range l.Weeks {
		l.Weeks[i].Status = opts.WeekScale.Classify(l.Weeks[i].Hours)
		total = total.Add(l.Weeks[i].Hours)
	}
	l.TotalAllocated = total

	n := int64(len(l.Weeks))
	if n == 0 {
		l.AverageHoursPerWeek = decimal.Zero
		l.TotalAvailable = decimal.Zero
	} else {
		l.AverageHoursPerWeek = total.Div(decimal.NewFromInt(n)).Round(2)
		l.TotalAvailable = decimal.Max(decimal.Zero, opts.WeeklyCapacity.Mul(decimal.NewFromInt(n)).Sub(total))
	}
	l.OverallStatus = opts.OverallScale.Classify(l.AverageHoursPerWeek)
	l.Trend = ComputeTrend(l.Weeks)
}

// ComputeTrend compares the average of the second half of weeks with the
// first half. The 10% band either side keeps noisy data stable.
func ComputeTrend(weeks []WeekLoad) Trend {
	if len(weeks) < 2 {
		return TrendStable
	}
	mid := len(weeks) / 2
	first := averageHours(weeks[:mid])
	second := averageHours(weeks[mid:])
	switch {
	case second.GreaterThan(first.Mul(trendUpFactor)):
		return TrendUp
	case second.LessThan(first.Mul(trendDownFactor)):
		return TrendDown
	default:
		return TrendStable
	}
}

func averageHours(weeks []WeekLoad) decimal.Decimal {
	total := decimal.Zero
	for _, w := range weeks {
		total = total.Add(w.Hours)
	}
	return total.Div(decimal.NewFromInt(int64(len(weeks))))
}
