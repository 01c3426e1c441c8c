package service

import (
	"context"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/shopspring/decimal"
)

// AvailabilityConfig sets the capacity presets.
type AvailabilityConfig struct {
	Scales         capacity.Scales
	WeeklyCapacity decimal.Decimal
	// DefaultScale grades weeks when a request names no scale.
	DefaultScale string
}

func DefaultAvailabilityConfig() AvailabilityConfig {
	return AvailabilityConfig{
		Scales:         capacity.DefaultScales(),
		WeeklyCapacity: decimal.NewFromInt(40),
		DefaultScale:   capacity.ScaleDetail,
	}
}

type availabilityService struct {
	repos    repository.Repos
	cfg      AvailabilityConfig
	observer UseCaseObserver
}

func NewAvailabilityService(repos repository.Repos, cfg AvailabilityConfig, observers ...UseCaseObserver) AvailabilityService {
	return &availabilityService{repos: repos, cfg: cfg, observer: useCaseObserverOrNoop(observers)}
}

// Availability reads the ledger without locks; a single query feeds the
// projection so no row is counted twice.
func (s *availabilityService) Availability(ctx context.Context, req app.AvailabilityRequest) (resp *app.AvailabilityResponse, err error) {
	fields := map[string]any{
		"start": req.Start.Format(domain.DateLayout),
		"end":   req.End.Format(domain.DateLayout),
		"scale": req.Scale,
	}
	ctx, done := startUseCase(ctx, s.observer, "availability", fields)
	defer done(&err)

	if req.Start.IsZero() || req.End.IsZero() {
		return nil, domain.Validationf("start and end dates are required")
	}
	if req.End.Before(req.Start) {
		return nil, domain.Validationf("end date is before start date")
	}
	scaleName := req.Scale
	if scaleName == "" {
		scaleName = s.cfg.DefaultScale
	}
	weekScale, err := s.cfg.Scales.Lookup(scaleName)
	if err != nil {
		return nil, domain.Validationf("%v", err)
	}

	consultants, err := s.consultants(ctx, req.ConsultantIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(consultants))
	for i, c := range consultants {
		ids[i] = c.ID
	}

	from, to := capacity.RowWindow(req.Start, req.End)
	rows, err := s.repos.Weeks.ListCapacityRows(ctx, repository.CapacityFilter{
		From:             from,
		To:               to,
		ConsultantIDs:    req.ConsultantIDs,
		ExcludeProjectID: req.ExcludeProjectID,
	})
	if err != nil {
		return nil, err
	}
	projected := make([]capacity.Row, len(rows))
	for i, r := range rows {
		projected[i] = capacity.Row{
			ConsultantID:      r.ConsultantID,
			PhaseAllocationID: r.PhaseAllocationID,
			ProjectID:         r.ProjectID,
			ProjectName:       r.ProjectName,
			PhaseID:           r.PhaseID,
			PhaseName:         r.PhaseName,
			WeekStart:         r.WeekStart,
			Hours:             r.Hours,
		}
	}

	loads := capacity.Project(ids, projected, req.Start, req.End, capacity.Options{
		WeeklyCapacity: s.cfg.WeeklyCapacity,
		WeekScale:      weekScale,
		OverallScale:   s.cfg.Scales.Fleet,
	})

	resp = &app.AvailabilityResponse{Start: req.Start, End: req.End, Scale: weekScale.Name}
	for i, l := range loads {
		resp.Consultants = append(resp.Consultants, app.ConsultantAvailability{Consultant: consultants[i], Load: l})
	}
	fields["consultants"] = len(resp.Consultants)
	fields["rows"] = len(rows)
	return resp, nil
}

func (s *availabilityService) consultants(ctx context.Context, ids []string) ([]*domain.Consultant, error) {
	if len(ids) == 0 {
		return s.repos.Consultants.List(ctx)
	}
	out := make([]*domain.Consultant, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := s.repos.Consultants.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
