package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// Names resolves ids to display names for list views.
type Names struct {
	Consultants map[string]string
	Phases      map[string]string
}

func (n Names) consultant(id string) string {
	if name, ok := n.Consultants[id]; ok {
		return name
	}
	return TruncID(id)
}

func (n Names) phase(id string) string {
	if name, ok := n.Phases[id]; ok {
		return name
	}
	return TruncID(id)
}

// FormatAllocationList renders allocations inside a bordered box.
func FormatAllocationList(allocs []*domain.PhaseAllocation, names Names) string {
	headers := []string{"ID", "CONSULTANT", "PHASE", "HOURS", "STATUS"}
	rows := make([][]string, 0, len(allocs))
	for _, a := range allocs {
		hours := Hours(a.TotalHours)
		if a.IsComposite {
			hours += StylePurple.Render(fmt.Sprintf(" (%d)", len(a.CompositionMetadata)))
		}
		rows = append(rows, []string{
			TruncID(a.ID),
			names.consultant(a.ConsultantID),
			names.phase(a.PhaseID),
			hours,
			PhaseStatusPill(a.ApprovalStatus),
		})
	}
	return RenderBox("Allocations", RenderTable(headers, rows, 3))
}

// FormatAllocationDetail renders one allocation with its weeks and audit trail.
func FormatAllocationDetail(d *app.AllocationDetail) string {
	a := d.Allocation
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(a.ID), PhaseStatusPill(a.ApprovalStatus))
	fmt.Fprintf(&b, "Budget     %s\n", Hours(a.TotalHours))
	fmt.Fprintf(&b, "Committed  %s\n", Hours(d.Committed))
	fmt.Fprintf(&b, "Remaining  %s\n", Hours(d.Remaining))
	if r := domain.StrFromPtr(a.RejectionReason); r != "" {
		fmt.Fprintf(&b, "Rejected   %s\n", StyleRed.Render(r))
	}
	if r := domain.StrFromPtr(a.ModificationReason); r != "" {
		fmt.Fprintf(&b, "Modified   %s\n", r)
	}

	if a.IsComposite {
		b.WriteString("\n" + Header("Composition") + "\n")
		rows := make([][]string, 0, len(a.CompositionMetadata))
		for _, e := range a.CompositionMetadata {
			source := "assigned"
			if e.ReallocatedHours.Valid {
				source = "reallocated from " + TruncID(domain.StrFromPtr(e.ReallocatedFromPhaseID))
			}
			rows = append(rows, []string{fmt.Sprint(e.Seq), Hours(e.Hours()), source, e.Timestamp.Format("2006-01-02 15:04")})
		}
		b.WriteString(RenderTable([]string{"#", "HOURS", "SOURCE", "AT"}, rows, 1))
	}

	b.WriteString("\n" + Header("Weeks") + "\n")
	if len(d.Weeks) == 0 {
		b.WriteString(Dim("No weeks planned.") + "\n")
	} else {
		b.WriteString(FormatWeeks(d.Weeks))
	}

	if len(d.Audit) > 0 {
		b.WriteString("\n" + Header("History") + "\n")
		for _, e := range d.Audit {
			fmt.Fprintf(&b, "%s  %-22s %s\n", Dim(e.CreatedAt.Format("2006-01-02 15:04")), e.Action, e.Detail)
		}
	}
	return RenderBox("Allocation", strings.TrimRight(b.String(), "\n"))
}

// FormatWeeks renders weekly rows ordered as given.
func FormatWeeks(weeks []*domain.WeeklyAllocation) string {
	rows := make([][]string, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, []string{
			WeekLabel(w.WeekStartDate),
			NullHours(w.ProposedHours),
			NullHours(w.ApprovedHours),
			WeekStatusPill(w.PlanningStatus),
			orDash(domain.StrFromPtr(w.RejectionReason)),
		})
	}
	return RenderTable([]string{"WEEK", "PROPOSED", "APPROVED", "STATUS", "NOTE"}, rows, 1, 2)
}
