package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/GovDesign/internal/api"
	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/config"
	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts.configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Weights
	reg := cobit.Default()
	builtin, err := builtinWeights(cfg, reg)
	if err != nil {
		return fmt.Errorf("load weights: %w", err)
	}
	ws := weights.NewStore(reg, builtin, store.WeightSource(db), logger)
	if err := ws.Refresh(ctx); err != nil {
		logger.Warn("initial weight refresh failed, scoring with built-in weights", "error", err)
	}
	warnIllustrative(ws.Snapshot().Source(), logger)
	if hermesClient != nil {
		if err := ws.Watch(hermesClient); err != nil {
			logger.Warn("failed to watch weight events", "error", err)
		}
	}
	go refreshLoop(ctx, ws, cfg.RefreshInterval(), logger)

	provider := scoring.NewProvider(reg, cfg.Scoring.CapabilityBands, ws)

	// API server
	router := api.NewRouter(provider, db, ws, hermesClient, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
	return nil
}

// refreshLoop reloads the active weight configuration every interval. It
// covers instances that miss activation events.
func refreshLoop(ctx context.Context, ws *weights.Store, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.Refresh(ctx); err != nil {
				logger.Error("periodic weight refresh failed", "error", err)
			}
		}
	}
}

// warnIllustrative flags a snapshot that still draws cells from the embedded
// placeholder matrices.
func warnIllustrative(src weights.Source, logger *slog.Logger) {
	if !src.Illustrative {
		return
	}
	logger.Warn("scoring with illustrative placeholder weights, not the published COBIT mapping tables; set weights.calibration_path or activate a complete weight configuration",
		"source", src.Kind, "config", src.ConfigName)
}
