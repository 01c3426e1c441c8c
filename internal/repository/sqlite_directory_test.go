package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsultantRepo_CreateGetList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteConsultantRepo(db)

	bob := testutil.NewTestConsultant("Bob")
	alice := testutil.NewTestConsultant("Alice")
	alice.Email = "alice@example.com"
	require.NoError(t, repo.Create(ctx, bob))
	require.NoError(t, repo.Create(ctx, alice))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)
}

func TestConsultantRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteConsultantRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsultantRepo_DuplicateEmailRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteConsultantRepo(db)

	a := testutil.NewTestConsultant("A")
	a.Email = "same@example.com"
	b := testutil.NewTestConsultant("B")
	b.Email = "same@example.com"
	require.NoError(t, repo.Create(ctx, a))
	assert.Error(t, repo.Create(ctx, b))
}

func TestPhaseRepo_ListByProjectOrdersByIndex(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("Apollo")
	require.NoError(t, NewSQLiteProjectRepo(db).Create(ctx, proj))

	repo := NewSQLitePhaseRepo(db)
	build := testutil.NewTestPhase(proj.ID, "Build", testutil.WithOrderIndex(2))
	design := testutil.NewTestPhase(proj.ID, "Design", testutil.WithOrderIndex(1))
	require.NoError(t, repo.Create(ctx, build))
	require.NoError(t, repo.Create(ctx, design))

	phases, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, "Design", phases[0].Name)
	assert.Equal(t, "Build", phases[1].Name)
	assert.True(t, phases[0].StartDate.Equal(testutil.Monday))
}
