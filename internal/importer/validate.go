package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// ValidatePlan checks the plan for errors before conversion.
// Returns a slice of all validation errors found.
func ValidatePlan(plan *PlanImport) []error {
	var errs []error

	if strings.TrimSpace(plan.Project.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}

	phaseRefs := make(map[string]bool)
	errs = append(errs, validatePhases(plan.Phases, phaseRefs)...)

	consultantRefs := make(map[string]bool)
	errs = append(errs, validateConsultants(plan.Consultants, consultantRefs)...)

	errs = append(errs, validateAllocations(plan.Allocations, consultantRefs, phaseRefs)...)

	return errs
}

func validatePhases(phases []PhaseImport, refs map[string]bool) []error {
	var errs []error

	if len(phases) == 0 {
		errs = append(errs, fmt.Errorf("phases: at least one phase is required"))
	}
	for i, p := range phases {
		prefix := fmt.Sprintf("phases[%d]", i)
		if p.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[p.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, p.Ref))
		} else {
			refs[p.Ref] = true
		}
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		start, startErr := parseDate(prefix+".start_date", p.StartDate)
		if startErr != nil {
			errs = append(errs, startErr)
		}
		end, endErr := parseDate(prefix+".end_date", p.EndDate)
		if endErr != nil {
			errs = append(errs, endErr)
		}
		if startErr == nil && endErr == nil && end.Before(start) {
			errs = append(errs, fmt.Errorf("%s.end_date %q is before start_date %q", prefix, p.EndDate, p.StartDate))
		}
	}
	return errs
}

func validateConsultants(consultants []ConsultantImport, refs map[string]bool) []error {
	var errs []error
	for i, c := range consultants {
		prefix := fmt.Sprintf("consultants[%d]", i)
		if c.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[c.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, c.Ref))
		} else {
			refs[c.Ref] = true
		}
		if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Email) == "" {
			errs = append(errs, fmt.Errorf("%s needs a name or an email", prefix))
		}
	}
	return errs
}

func validateAllocations(allocs []AllocationImport, consultantRefs, phaseRefs map[string]bool) []error {
	var errs []error
	for i, a := range allocs {
		prefix := fmt.Sprintf("allocations[%d]", i)
		if !consultantRefs[a.ConsultantRef] {
			errs = append(errs, fmt.Errorf("%s.consultant_ref %q does not name a consultant", prefix, a.ConsultantRef))
		}
		if !phaseRefs[a.PhaseRef] {
			errs = append(errs, fmt.Errorf("%s.phase_ref %q does not name a phase", prefix, a.PhaseRef))
		}
		h, err := domain.ParseHours(a.Hours)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.hours: invalid value %q", prefix, a.Hours))
		} else if !h.IsPositive() {
			errs = append(errs, fmt.Errorf("%s.hours must be positive", prefix))
		}
	}
	return errs
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, value)
	}
	return t, nil
}
