package formatter

import (
	"fmt"

	"github.com/alexanderramin/staffplan/internal/domain"
)

func FormatConsultants(list []*domain.Consultant) string {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{TruncID(c.ID), Bold(c.DisplayName()), orDash(c.Email)})
	}
	return RenderBox("Consultants", RenderTable([]string{"ID", "NAME", "EMAIL"}, rows))
}

func FormatProjects(list []*domain.Project) string {
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{TruncID(p.ID), Bold(p.Name)})
	}
	return RenderBox("Projects", RenderTable([]string{"ID", "NAME"}, rows))
}

func FormatPhases(list []*domain.Phase) string {
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{
			fmt.Sprint(p.OrderIndex),
			TruncID(p.ID),
			Bold(p.Name),
			p.StartDate.Format(domain.DateLayout),
			p.EndDate.Format(domain.DateLayout),
		})
	}
	return RenderBox("Phases", RenderTable([]string{"#", "ID", "NAME", "START", "END"}, rows, 0))
}
