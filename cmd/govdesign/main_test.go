package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// useSQLite points the configuration at a fresh database file.
func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("GOVDESIGN_DATABASE_DRIVER", "sqlite")
	t.Setenv("GOVDESIGN_DATABASE_PATH", path)
	t.Setenv("GOVDESIGN_CALIBRATION_PATH", "")
	os.Unsetenv("GOVDESIGN_CALIBRATION_PATH")
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreJSONFromInputsFile(t *testing.T) {
	useSQLite(t)
	inputs := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, os.WriteFile(inputs, []byte(`{"df9":{}}`), 0o644))

	out, err := execute(t, "score", "df9", "--inputs", inputs, "--format", "json", "--top", "3")
	require.NoError(t, err)

	var results []scoring.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.RelativeImportance, "empty percentage inputs take the baseline split")
	}
}

func TestScoreTable(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "score", "df1")
	require.NoError(t, err)
	assert.Contains(t, out, "weights: builtin, illustrative")
	assert.Contains(t, out, "EDM01")
	assert.Contains(t, out, "Importance")
	// title, header, rule and one row per objective
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 43)

	out, err = execute(t, "score", "refined", "--top", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Refined scope")
	assert.Contains(t, out, "Capability")
}

func TestScoreRejectsBadArguments(t *testing.T) {
	useSQLite(t)

	_, err := execute(t, "score", "df99")
	assert.ErrorContains(t, err, "unknown factor")

	_, err = execute(t, "score", "df1", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "score", "df1", "--inputs", "a.json", "--project", "p1")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = execute(t, "score")
	assert.Error(t, err)
}

func TestScoreSavedProject(t *testing.T) {
	dbPath := useSQLite(t)
	ctx := context.Background()

	s, err := store.OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	p := &store.Project{Name: "Saved", Inputs: cobit.UserInputs{"df1": {"growth": cobit.Num(5)}}}
	require.NoError(t, s.CreateProject(ctx, p))
	require.NoError(t, s.Close())

	out, err := execute(t, "score", "df1", "--project", p.ID, "--format", "json")
	require.NoError(t, err)
	var results []scoring.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 40)
	assert.Greater(t, results[0].RelativeImportance, 0.0)

	_, err = execute(t, "score", "df1", "--project", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestExportImportCommands(t *testing.T) {
	srcPath := useSQLite(t)
	ctx := context.Background()

	s, err := store.OpenSQLite(ctx, srcPath)
	require.NoError(t, err)
	require.NoError(t, s.CreateProject(ctx, &store.Project{Name: "Moved"}))
	require.NoError(t, s.Close())

	dump := filepath.Join(t.TempDir(), "export.json")
	_, err = execute(t, "export", "--output", dump)
	require.NoError(t, err)

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	var b store.ExportBundle
	require.NoError(t, json.Unmarshal(data, &b))
	require.Len(t, b.Projects, 1)
	assert.Equal(t, store.ExportTool, b.Tool)

	dstPath := filepath.Join(t.TempDir(), "dst.db")
	t.Setenv("GOVDESIGN_DATABASE_PATH", dstPath)
	out, err := execute(t, "import", dump)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 projects, 0 weight configurations\n", out)

	dst, err := store.OpenSQLite(ctx, dstPath)
	require.NoError(t, err)
	defer dst.Close()
	projects, err := dst.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Moved", projects[0].Name)
}

func TestWarnIllustrative(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	warnIllustrative(weights.Source{Kind: weights.SourceBuiltin}, logger)
	assert.Empty(t, buf.String())

	warnIllustrative(weights.Source{Kind: weights.SourceBuiltin, Illustrative: true}, logger)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "illustrative placeholder weights")
}
