package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is a converted staffing plan ready for persistence.
type Plan struct {
	Project     *domain.Project
	Phases      []*domain.Phase
	Consultants []*domain.Consultant
	Allocations []PlannedAllocation
}

// PlannedAllocation is an hour request between records of the plan.
type PlannedAllocation struct {
	ConsultantID string
	PhaseID      string
	Hours        decimal.Decimal
}

// Convert transforms a validated PlanImport into domain objects.
// Call ValidatePlan first; Convert assumes the plan is valid.
func Convert(plan *PlanImport, now time.Time) (*Plan, error) {
	out := &Plan{
		Project: &domain.Project{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(plan.Project.Name),
			CreatedAt: now,
		},
	}

	phaseIDs := make(map[string]string, len(plan.Phases)) // ref -> UUID
	for _, p := range plan.Phases {
		start, err := time.Parse(domain.DateLayout, p.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parsing %s start_date: %w", p.Ref, err)
		}
		end, err := time.Parse(domain.DateLayout, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("parsing %s end_date: %w", p.Ref, err)
		}
		phase := &domain.Phase{
			ID:         uuid.New().String(),
			ProjectID:  out.Project.ID,
			Name:       strings.TrimSpace(p.Name),
			StartDate:  start,
			EndDate:    end,
			OrderIndex: p.Order,
			CreatedAt:  now,
		}
		phaseIDs[p.Ref] = phase.ID
		out.Phases = append(out.Phases, phase)
	}

	consultantIDs := make(map[string]string, len(plan.Consultants))
	for _, c := range plan.Consultants {
		consultant := &domain.Consultant{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(c.Name),
			Email:     strings.TrimSpace(c.Email),
			CreatedAt: now,
		}
		consultantIDs[c.Ref] = consultant.ID
		out.Consultants = append(out.Consultants, consultant)
	}

	for _, a := range plan.Allocations {
		hours, err := domain.ParseHours(a.Hours)
		if err != nil {
			return nil, err
		}
		out.Allocations = append(out.Allocations, PlannedAllocation{
			ConsultantID: consultantIDs[a.ConsultantRef],
			PhaseID:      phaseIDs[a.PhaseRef],
			Hours:        hours,
		})
	}

	return out, nil
}

// Remap rewrites consultant ids, used when imported consultants resolve to
// existing records.
func (p *Plan) Remap(ids map[string]string) {
	for i := range p.Allocations {
		if id, ok := ids[p.Allocations[i].ConsultantID]; ok {
			p.Allocations[i].ConsultantID = id
		}
	}
}
