package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/shopspring/decimal"
)

// matchID resolves input against ids: exact match first, then a unique
// prefix. No match returns input unchanged so the service reports NotFound.
func matchID(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}

	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return input, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveAllocationID(ctx context.Context, app *App, input string) (string, error) {
	allocs, err := app.Ledger.ListAllocations(ctx, "")
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(allocs))
	for _, a := range allocs {
		ids = append(ids, a.ID)
	}
	return matchID("allocation", input, ids)
}

func resolveConsultantID(ctx context.Context, app *App, input string) (string, error) {
	list, err := app.Directory.ListConsultants(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return matchID("consultant", input, ids)
}

func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	list, err := app.Directory.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		if strings.EqualFold(p.Name, input) {
			return p.ID, nil
		}
		ids = append(ids, p.ID)
	}
	return matchID("project", input, ids)
}

// resolvePhaseID accepts a phase id or prefix across every project.
func resolvePhaseID(ctx context.Context, app *App, input string) (string, error) {
	projects, err := app.Directory.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, p := range projects {
		phases, err := app.Directory.ListPhases(ctx, p.ID)
		if err != nil {
			return "", err
		}
		for _, ph := range phases {
			ids = append(ids, ph.ID)
		}
	}
	return matchID("phase", input, ids)
}

// resolveWeekID resolves against the weeks waiting for approval.
func resolveWeekID(ctx context.Context, app *App, input string) (string, error) {
	groups, err := app.Approval.ListPendingSubmissions(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, g := range groups {
		for _, w := range g.Weeks {
			ids = append(ids, w.Week.ID)
		}
	}
	return matchID("week", input, ids)
}

// parseHours parses a flag value, naming the flag on failure.
func parseHours(flag, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, domain.Validationf("--%s is required", flag)
	}
	d, err := domain.ParseHours(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func optionalHours(flag, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseHours(flag, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
