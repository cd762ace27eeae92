package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/config"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

const (
	targetInitial = "initial"
	targetRefined = "refined"
)

type scoreOptions struct {
	inputsPath string
	projectID  string
	format     string
	top        int
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score <factor-id|initial|refined>",
		Short: "Score one design factor or an aggregated scope",
		Long: `Score one design factor (df1..df10) or the initial or refined scope.

Inputs come from a saved project (--project), a JSON file of user inputs
(--inputs), or the defaults when neither is given. Scoring a saved project
uses the weight configuration active in the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), cmd.OutOrStdout(), root.configPath, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.inputsPath, "inputs", "i", "", "JSON file of user inputs")
	cmd.Flags().StringVarP(&opts.projectID, "project", "p", "", "saved project id")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format (table|json)")
	cmd.Flags().IntVarP(&opts.top, "top", "n", 0, "show only the first n objectives")
	return cmd
}

func runScore(ctx context.Context, out io.Writer, configPath, target string, opts *scoreOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.inputsPath != "" && opts.projectID != "" {
		return fmt.Errorf("--inputs and --project are mutually exclusive")
	}
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Logging, os.Stderr)

	reg := cobit.Default()
	if target != targetInitial && target != targetRefined {
		if _, ok := reg.Factor(target); !ok {
			return fmt.Errorf("unknown factor %q", target)
		}
	}

	builtin, err := builtinWeights(cfg, reg)
	if err != nil {
		return fmt.Errorf("load weights: %w", err)
	}
	snap := builtin
	inputs := cobit.UserInputs{}
	title := "defaults"

	switch {
	case opts.projectID != "":
		db, err := openStore(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
		}
		defer db.Close()

		p, err := db.GetProject(ctx, opts.projectID)
		if err != nil {
			return fmt.Errorf("get project: %w", err)
		}
		if p == nil {
			return fmt.Errorf("project %s not found", opts.projectID)
		}
		ws := weights.NewStore(reg, builtin, store.WeightSource(db), logger)
		if err := ws.Refresh(ctx); err != nil {
			return err
		}
		snap = ws.Snapshot()
		inputs = p.Inputs
		title = p.Name
	case opts.inputsPath != "":
		data, err := os.ReadFile(opts.inputsPath)
		if err != nil {
			return fmt.Errorf("read inputs: %w", err)
		}
		if err := json.Unmarshal(data, &inputs); err != nil {
			return fmt.Errorf("parse inputs: %w", err)
		}
		title = opts.inputsPath
	}

	e := scoring.NewEngine(reg, snap, cfg.Scoring.CapabilityBands)
	var results []scoring.ScoreResult
	switch target {
	case targetInitial:
		results = e.InitialScope(inputs, scoring.DefaultFactorWeights(reg))
	case targetRefined:
		results = e.RefinedScope(inputs, scoring.DefaultFactorWeights(reg))
	default:
		results = e.ScoreFactor(inputs, target)
	}
	if opts.top > 0 && opts.top < len(results) {
		results = results[:opts.top]
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	renderScoreTable(out, scoreTitle(reg, target, title, snap.Source()), results, target == targetInitial || target == targetRefined)
	return nil
}

func scoreTitle(reg *cobit.Registry, target, inputs string, src weights.Source) string {
	name := target
	switch target {
	case targetInitial:
		name = "Initial scope"
	case targetRefined:
		name = "Refined scope"
	default:
		if f, ok := reg.Factor(target); ok {
			name = f.Name
		}
	}
	weightsFrom := src.Kind
	if src.ConfigName != "" {
		weightsFrom = src.ConfigName
	}
	if src.Illustrative {
		weightsFrom += ", illustrative"
	}
	return fmt.Sprintf("%s (%s, weights: %s)", name, inputs, weightsFrom)
}
