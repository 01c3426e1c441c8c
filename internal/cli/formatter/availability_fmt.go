package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/capacity"
)

var trendArrows = map[capacity.Trend]string{
	capacity.TrendUp:     "↗",
	capacity.TrendDown:   "↘",
	capacity.TrendStable: "→",
}

// FormatAvailability renders one row per consultant with a cell per week,
// each colored by its tier.
func FormatAvailability(r *app.AvailabilityResponse) string {
	if len(r.Consultants) == 0 {
		return Dim("No consultants found.")
	}

	headers := []string{"CONSULTANT"}
	for _, w := range r.Consultants[0].Load.Weeks {
		_, wk := w.WeekStart.ISOWeek()
		headers = append(headers, fmt.Sprintf("W%02d", wk))
	}
	headers = append(headers, "AVG", "STATUS", "TREND")

	numeric := make([]int, 0, len(headers))
	for i := 1; i < len(headers)-2; i++ {
		numeric = append(numeric, i)
	}

	rows := make([][]string, 0, len(r.Consultants))
	for _, c := range r.Consultants {
		row := []string{c.Consultant.DisplayName()}
		for _, w := range c.Load.Weeks {
			row = append(row, TierStyle(w.Status).Render(w.Hours.Round(1).String()))
		}
		row = append(row,
			Hours(c.Load.AverageHoursPerWeek),
			TierBadge(c.Load.OverallStatus),
			trendArrows[c.Load.Trend],
		)
		rows = append(rows, row)
	}

	title := fmt.Sprintf("Availability %s → %s (%s scale)", r.Start.Format("Jan 2"), r.End.Format("Jan 2"), r.Scale)
	return RenderBox(title, strings.TrimRight(RenderTable(headers, rows, numeric...), "\n"))
}
