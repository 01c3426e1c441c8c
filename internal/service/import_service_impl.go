package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/staffplan/internal/app"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/importer"
	"github.com/alexanderramin/staffplan/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	repos    repository.Repos
	ledger   LedgerService
	observer UseCaseObserver
}

// NewImportService loads staffing plans. Directory records are written in
// one transaction; hour requests then go through ledger so they merge and
// validate like any other request.
func NewImportService(uow db.UnitOfWork, repos repository.Repos, ledger LedgerService, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, repos: repos, ledger: ledger, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportPlan(ctx context.Context, filePath string) (*ImportResult, error) {
	plan, err := importer.LoadPlan(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading plan file: %w", err)
	}
	return s.ImportPlanFromSchema(ctx, plan)
}

func (s *importService) ImportPlanFromSchema(ctx context.Context, plan *importer.PlanImport) (result *ImportResult, err error) {
	ctx, done := startUseCase(ctx, s.observer, "import-plan", map[string]any{
		"project":     plan.Project.Name,
		"phases":      len(plan.Phases),
		"allocations": len(plan.Allocations),
	})
	defer done(&err)

	if errs := importer.ValidatePlan(plan); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	generated, err := importer.Convert(plan, nowUTC())
	if err != nil {
		return nil, fmt.Errorf("converting plan: %w", err)
	}

	existing, err := s.repos.Consultants.List(ctx)
	if err != nil {
		return nil, err
	}
	byEmail := make(map[string]string, len(existing))
	for _, c := range existing {
		if c.Email != "" {
			byEmail[strings.ToLower(c.Email)] = c.ID
		}
	}

	result = &ImportResult{Project: generated.Project, PhaseCount: len(generated.Phases)}
	reuse := make(map[string]string)
	var fresh []*domain.Consultant
	for _, c := range generated.Consultants {
		if id, ok := byEmail[strings.ToLower(c.Email)]; ok && c.Email != "" {
			reuse[c.ID] = id
			result.ConsultantsReused++
			continue
		}
		fresh = append(fresh, c)
	}
	generated.Remap(reuse)
	result.ConsultantsCreated = len(fresh)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := repository.NewSQLiteRepos(tx)
		if err := r.Projects.Create(ctx, generated.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, p := range generated.Phases {
			if err := p.Validate(); err != nil {
				return err
			}
			if err := r.Phases.Create(ctx, p); err != nil {
				return fmt.Errorf("creating phase %q: %w", p.Name, err)
			}
		}
		for _, c := range fresh {
			if err := r.Consultants.Create(ctx, c); err != nil {
				return fmt.Errorf("creating consultant %q: %w", c.DisplayName(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for _, a := range generated.Allocations {
		resp, err := s.ledger.CreateOrMergeAllocation(ctx, app.CreateAllocationRequest{
			ConsultantID: a.ConsultantID,
			PhaseID:      a.PhaseID,
			Hours:        a.Hours,
			Origin:       domain.AllocationOrigin{Kind: domain.OriginAssignment},
		})
		if err != nil {
			return nil, fmt.Errorf("requesting hours for phase %s: %w", a.PhaseID, err)
		}
		if i, ok := index[resp.Allocation.ID]; ok {
			result.Allocations[i] = resp.Allocation
			continue
		}
		index[resp.Allocation.ID] = len(result.Allocations)
		result.Allocations = append(result.Allocations, resp.Allocation)
	}
	return result, nil
}

// formatValidationErrors folds every plan problem into one validation error.
func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("plan validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return domain.Validationf("%s", msg)
}
