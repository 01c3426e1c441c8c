package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// FormatPendingSubmissions renders the approver inbox, one block per
// submission group.
func FormatPendingSubmissions(groups []app.PendingSubmission, now time.Time) string {
	if len(groups) == 0 {
		return Dim("Nothing waiting for approval.")
	}

	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "batch " + TruncID(g.SubmissionBatchID)
		if g.Legacy {
			label = Dim("ungrouped")
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s\n", Bold(g.ConsultantName), label, Hours(g.TotalHours), Dim(Ago(g.SubmittedAt, now)))

		rows := make([][]string, 0, len(g.Weeks))
		for _, w := range g.Weeks {
			rows = append(rows, []string{
				TruncID(w.Week.ID),
				WeekLabel(w.Week.WeekStartDate),
				w.ProjectName + Dim(" / ") + w.PhaseName,
				NullHours(w.Week.ProposedHours),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "WEEK", "PHASE", "HOURS"}, rows, 3))
	}
	return RenderBox("Pending submissions", strings.TrimRight(b.String(), "\n"))
}

// FormatBatchResult summarizes a batch decision.
func FormatBatchResult(r *app.BatchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d updated", StyleGreen.Render("✔"), r.Updated)
	if len(r.Failed) > 0 {
		fmt.Fprintf(&b, ", %s\n", StyleRed.Render(fmt.Sprintf("%d failed", len(r.Failed))))
		rows := make([][]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			rows = append(rows, []string{TruncID(f.ID), StyleRed.Render(string(f.Reason)), f.Message})
		}
		b.WriteString(RenderTable([]string{"ID", "REASON", "MESSAGE"}, rows))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\n%s %s", StyleOrange.Render("!"), w)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHourChanges renders hour change requests.
func FormatHourChanges(list []*domain.HourChangeRequest) string {
	rows := make([][]string, 0, len(list))
	for _, hc := range list {
		move := Dim("--")
		if hc.ChangeType == domain.HourChangeShift && hc.FromWeekStart != nil && hc.ToWeekStart != nil {
			move = hc.FromWeekStart.Format(domain.DateLayout) + " → " + hc.ToWeekStart.Format(domain.DateLayout)
		}
		rows = append(rows, []string{
			TruncID(hc.ID),
			TruncID(hc.PhaseAllocationID),
			string(hc.ChangeType),
			Hours(hc.RequestedHours),
			move,
			hourChangeStatus(hc.Status),
			hc.Reason,
		})
	}
	return RenderBox("Hour change requests", RenderTable([]string{"ID", "ALLOCATION", "TYPE", "HOURS", "WEEKS", "STATUS", "REASON"}, rows, 3))
}

func hourChangeStatus(s domain.HourChangeStatus) string {
	switch s {
	case domain.HourChangeApproved:
		return StyleGreen.Render("● Approved")
	case domain.HourChangeRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleYellow.Render("○ Pending")
	}
}
