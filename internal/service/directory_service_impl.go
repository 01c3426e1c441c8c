package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/google/uuid"
)

type directoryService struct {
	repos    repository.Repos
	observer UseCaseObserver
}

func NewDirectoryService(repos repository.Repos, observers ...UseCaseObserver) DirectoryService {
	return &directoryService{repos: repos, observer: useCaseObserverOrNoop(observers)}
}

func (s *directoryService) CreateConsultant(ctx context.Context, name, email string) (c *domain.Consultant, err error) {
	ctx, done := startUseCase(ctx, s.observer, "create-consultant", map[string]any{"name": name})
	defer done(&err)

	c = &domain.Consultant{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: nowUTC(),
	}
	if c.Name == "" && c.Email == "" {
		return nil, domain.Validationf("consultant needs a name or an email")
	}
	if err := s.repos.Consultants.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *directoryService) GetConsultant(ctx context.Context, id string) (*domain.Consultant, error) {
	return s.repos.Consultants.GetByID(ctx, id)
}

func (s *directoryService) ListConsultants(ctx context.Context) ([]*domain.Consultant, error) {
	return s.repos.Consultants.List(ctx)
}

func (s *directoryService) CreateProject(ctx context.Context, name string) (p *domain.Project, err error) {
	ctx, done := startUseCase(ctx, s.observer, "create-project", map[string]any{"name": name})
	defer done(&err)

	p = &domain.Project{ID: uuid.New().String(), Name: strings.TrimSpace(name), CreatedAt: nowUTC()}
	if p.Name == "" {
		return nil, domain.Validationf("project name is required")
	}
	if err := s.repos.Projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *directoryService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.repos.Projects.List(ctx)
}

func (s *directoryService) CreatePhase(ctx context.Context, p *domain.Phase) (err error) {
	ctx, done := startUseCase(ctx, s.observer, "create-phase", map[string]any{
		"project_id": p.ProjectID,
		"name":       p.Name,
	})
	defer done(&err)

	p.Name = strings.TrimSpace(p.Name)
	p.StartDate = domain.Day(p.StartDate)
	p.EndDate = domain.Day(p.EndDate)
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := s.repos.Projects.GetByID(ctx, p.ProjectID); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = nowUTC()
	}
	return s.repos.Phases.Create(ctx, p)
}

func (s *directoryService) ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	return s.repos.Phases.ListByProject(ctx, projectID)
}
