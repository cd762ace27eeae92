package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/config"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "govdesign",
		Short: "Governance system design factor scoring",
		Long: `govdesign scores the design factors of an enterprise governance system
against the governance and management objectives, and serves the scoring
engine, saved projects and weight configurations over HTTP.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newServeCmd(opts),
		newScoreCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)
	return root
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := store.NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := store.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// builtinWeights returns the calibration file's matrices when one is
// configured, otherwise the embedded ones.
func builtinWeights(cfg *config.Config, reg *cobit.Registry) (*weights.Snapshot, error) {
	if cfg.Weights.CalibrationPath != "" {
		return weights.LoadCalibration(cfg.Weights.CalibrationPath, reg)
	}
	return weights.Builtin(reg)
}
