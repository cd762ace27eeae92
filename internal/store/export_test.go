package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestSQLite(t)

	p := &Project{Name: "Pilot", Inputs: cobit.UserInputs{"df9": {"agile": cobit.Num(50), "traditional": cobit.Num(50)}}}
	require.NoError(t, src.CreateProject(ctx, p))
	adj := -10.0
	require.NoError(t, src.SaveCanvas(ctx, p.ID, cobit.CanvasInputs{"BAI03": {Adjustment: &adj}}))
	wc := &WeightConfiguration{Name: "Tuned", Mappings: weights.Mappings{"df9": {"Agile": {"BAI03": 3}}}}
	require.NoError(t, src.CreateWeightConfiguration(ctx, wc))
	require.NoError(t, src.ActivateWeightConfiguration(ctx, wc.ID))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	bundle, err := Export(ctx, src, now)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, bundle.Version)
	assert.Equal(t, ExportTool, bundle.Tool)
	assert.Equal(t, now, bundle.ExportDate)
	require.Len(t, bundle.Projects, 1)
	require.Len(t, bundle.Weights, 1)

	raw, err := json.Marshal(bundle)
	require.NoError(t, err)
	var decoded ExportBundle
	require.NoError(t, json.Unmarshal(raw, &decoded))

	dst := openTestSQLite(t)
	res, err := Import(ctx, dst, &decoded)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Projects: 1, Weights: 1}, res)

	got, err := dst.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pilot", got.Name)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	canvas, err := dst.GetCanvas(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, -10.0, *canvas["BAI03"].Adjustment)

	active, err := dst.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	assert.Nil(t, active, "imported configurations are not activated")

	// Importing again updates in place.
	res, err = Import(ctx, dst, &decoded)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Projects)
	list, err := dst.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExportSingleProject(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	p := &Project{Name: "Solo"}
	require.NoError(t, s.CreateProject(ctx, p))

	b, err := ExportProject(ctx, s, p.ID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, b.Project)
	assert.Empty(t, b.Projects)
	assert.Equal(t, "Solo", b.Project.Name)

	_, err = ExportProject(ctx, s, "missing", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	_, err := Import(ctx, s, nil)
	assert.Error(t, err)

	_, err = Import(ctx, s, &ExportBundle{Project: &ExportedProject{}})
	assert.Error(t, err)

	bad := 5
	_, err = Import(ctx, s, &ExportBundle{Project: &ExportedProject{
		Project: Project{Name: "Bad canvas"},
		Canvas:  cobit.CanvasInputs{"EDM01": {AgreedCapability: &bad}},
	}})
	assert.Error(t, err)
	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = Import(ctx, s, &ExportBundle{Weights: []*WeightConfiguration{{}}})
	assert.Error(t, err)
}

func TestImportReportsReplacedActiveConfiguration(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	wc := &WeightConfiguration{Name: "Live", Mappings: weights.Mappings{"df1": {"growth": {"EDM01": 100}}}}
	require.NoError(t, s.CreateWeightConfiguration(ctx, wc))
	require.NoError(t, s.ActivateWeightConfiguration(ctx, wc.ID))

	res, err := Import(ctx, s, &ExportBundle{Weights: []*WeightConfiguration{
		{ID: wc.ID, Name: "Live v2", Mappings: weights.Mappings{"df1": {"growth": {"EDM01": 7}}}},
		{Name: "Other"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Weights)
	require.NotNil(t, res.ActiveReplaced)
	assert.Equal(t, wc.ID, res.ActiveReplaced.ID)
	assert.True(t, res.ActiveReplaced.IsActive)

	active, err := s.GetActiveWeightConfiguration(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, wc.ID, active.ID)
	assert.Equal(t, 7.0, active.Mappings["df1"].Weight("growth", "EDM01"))

	res, err = Import(ctx, s, &ExportBundle{Weights: []*WeightConfiguration{{Name: "Unrelated"}}})
	require.NoError(t, err)
	assert.Nil(t, res.ActiveReplaced)
}
