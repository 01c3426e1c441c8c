package domain

import (
	"strings"
	"time"
)

// Consultant is an identity owned outside the engine.
type Consultant struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// DisplayName prefers the name, then the email, then the id.
func (c *Consultant) DisplayName() string {
	return CoalesceStr(c.Name, c.Email, c.ID)
}

type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Phase is a dated stage of a Project that PhaseAllocations grant hours for.
type Phase struct {
	ID         string
	ProjectID  string
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	OrderIndex int
	CreatedAt  time.Time
}

// Validate checks the phase has a name and a non-inverted date range.
func (p *Phase) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("phase name is required")
	}
	if p.EndDate.Before(p.StartDate) {
		return Validationf("phase ends (%s) before it starts (%s)",
			p.EndDate.Format(DateLayout), p.StartDate.Format(DateLayout))
	}
	return nil
}

// OverlapsWeek reports whether the week starting on weekStart shares at
// least one day with the phase.
func (p *Phase) OverlapsWeek(weekStart time.Time) bool {
	ws := Day(weekStart)
	we := WeekEnd(ws)
	return !we.Before(Day(p.StartDate)) && !ws.After(Day(p.EndDate))
}
