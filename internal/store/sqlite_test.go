package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "govdesign.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteProjectLifecycle(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	p := &Project{
		Name:        "Pilot",
		Description: "first pass",
		Inputs: cobit.UserInputs{
			"df1": {"growth": cobit.Num(5)},
			"df3": {"risk01": cobit.Pair(4, 2)},
		},
	}
	require.NoError(t, s.CreateProject(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pilot", got.Name)
	assert.Equal(t, ProjectVersion, got.Version)
	assert.Equal(t, 8.0, got.Inputs["df3"]["risk01"].Product())
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	got.Name = "Pilot v2"
	got.Inputs["df1"]["growth"] = cobit.Num(2)
	require.NoError(t, s.UpdateProject(ctx, got))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pilot v2", list[0].Name)
	n, _ := list[0].Inputs["df1"]["growth"].Scalar()
	assert.Equal(t, 2.0, n)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	got, err = s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.DeleteProject(ctx, p.ID), ErrNotFound)
	assert.ErrorIs(t, s.UpdateProject(ctx, &Project{ID: "missing"}), ErrNotFound)
}

func TestSQLiteCanvasKeptBesideInputs(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	p := &Project{Name: "Canvas"}
	require.NoError(t, s.CreateProject(ctx, p))

	empty, err := s.GetCanvas(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	adj := 25.0
	require.NoError(t, s.SaveCanvas(ctx, p.ID, cobit.CanvasInputs{"APO12": {Adjustment: &adj, AdjustmentReason: "regulator"}}))

	c, err := s.GetCanvas(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, c["APO12"].Adjustment)
	assert.Equal(t, 25.0, *c["APO12"].Adjustment)
	assert.Equal(t, "regulator", c["APO12"].AdjustmentReason)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Inputs)

	_, err = s.GetCanvas(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SaveCanvas(ctx, "missing", nil), ErrNotFound)
}

func TestSQLiteWeightConfigurationActivation(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	a := &WeightConfiguration{Name: "A", Mappings: weights.Mappings{"df1": {"growth": {"EDM01": 4}}}, IsActive: true}
	b := &WeightConfiguration{Name: "B"}
	require.NoError(t, s.CreateWeightConfiguration(ctx, a))
	require.NoError(t, s.CreateWeightConfiguration(ctx, b))
	assert.False(t, a.IsActive)

	active, err := s.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, s.ActivateWeightConfiguration(ctx, a.ID))
	require.NoError(t, s.ActivateWeightConfiguration(ctx, b.ID))

	active, err = s.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, b.ID, active.ID)

	list, err := s.ListWeightConfigurations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	activeCount := 0
	for _, c := range list {
		if c.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	assert.ErrorIs(t, s.ActivateWeightConfiguration(ctx, "missing"), ErrNotFound)
	active, err = s.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, active.ID)

	a.Mappings["df1"]["growth"]["EDM01"] = 1.5
	require.NoError(t, s.UpdateWeightConfiguration(ctx, a))
	got, err := s.GetWeightConfiguration(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.Mappings["df1"]["growth"]["EDM01"])
	assert.False(t, got.IsActive)

	require.NoError(t, s.DeactivateWeightConfigurations(ctx))
	active, err = s.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	require.NoError(t, s.DeleteWeightConfiguration(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteWeightConfiguration(ctx, a.ID), ErrNotFound)
}
