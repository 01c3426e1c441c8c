package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/importer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan(email string) *importer.PlanImport {
	return &importer.PlanImport{
		Project: importer.ProjectImport{Name: "Gemini"},
		Phases: []importer.PhaseImport{
			{Ref: "design", Name: "Design", StartDate: "2025-03-03", EndDate: "2025-04-25"},
			{Ref: "build", Name: "Build", StartDate: "2025-04-28", EndDate: "2025-06-27", Order: 1},
		},
		Consultants: []importer.ConsultantImport{
			{Ref: "ada", Name: "Ada Lovelace", Email: email},
			{Ref: "grace", Name: "Grace Hopper", Email: "grace@example.com"},
		},
		Allocations: []importer.AllocationImport{
			{ConsultantRef: "ada", PhaseRef: "design", Hours: "40"},
			{ConsultantRef: "ada", PhaseRef: "design", Hours: "8"},
			{ConsultantRef: "grace", PhaseRef: "build", Hours: "120"},
		},
	}
}

func TestImportPlan_CreatesDirectoryAndRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewImportService(f.uow, f.repos, f.ledger)

	res, err := svc.ImportPlanFromSchema(ctx, samplePlan("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Gemini", res.Project.Name)
	assert.Equal(t, 2, res.PhaseCount)
	assert.Equal(t, 2, res.ConsultantsCreated)
	assert.Equal(t, 0, res.ConsultantsReused)

	// The two design requests for ada merge into one pending allocation.
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "48", res.Allocations[0].TotalHours.String())
	assert.True(t, res.Allocations[0].IsComposite)
	assert.Equal(t, domain.PhasePending, res.Allocations[1].ApprovalStatus)

	phases, err := f.directory.ListPhases(ctx, res.Project.ID)
	require.NoError(t, err)
	assert.Len(t, phases, 2)
}

func TestImportPlan_ReusesConsultantsByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.directory.CreateConsultant(ctx, "Ada L.", "Ada@Example.com")
	require.NoError(t, err)

	svc := NewImportService(f.uow, f.repos, f.ledger)
	res, err := svc.ImportPlanFromSchema(ctx, samplePlan("ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ConsultantsReused)
	assert.Equal(t, 1, res.ConsultantsCreated)
	assert.Equal(t, existing.ID, res.Allocations[0].ConsultantID)
}

func TestImportPlan_InvalidPlanWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plan := samplePlan("ada@example.com")
	plan.Allocations[2].PhaseRef = "launch"
	plan.Phases[0].EndDate = "2025-01-01"

	svc := NewImportService(f.uow, f.repos, f.ledger)
	_, err := svc.ImportPlanFromSchema(ctx, plan)
	ae := requireCode(t, err, domain.CodeValidation)
	assert.Contains(t, ae.Message, "(2 errors)")

	projects, err := f.directory.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1, "only the fixture project")
}

func TestImportPlan_FromFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"project": {"name": "Mercury"},
		"phases": [{"ref": "p1", "name": "Pilot", "start_date": "2025-03-03", "end_date": "2025-03-28"}]
	}`), 0o644))

	svc := NewImportService(f.uow, f.repos, f.ledger)
	res, err := svc.ImportPlan(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Mercury", res.Project.Name)
	assert.Empty(t, res.Allocations)

	_, err = svc.ImportPlan(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "loading plan file")
}
