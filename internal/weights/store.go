package weights

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/metrics"
)

// ActiveConfig is the override configuration currently marked active.
type ActiveConfig struct {
	ID       string
	Name     string
	Mappings Mappings
}

// ConfigSource returns the active override configuration, or nil when the
// built-in matrices apply.
type ConfigSource interface {
	ActiveConfiguration(ctx context.Context) (*ActiveConfig, error)
}

// Store publishes the weight snapshot used by scoring. Writers replace the
// whole snapshot; readers take one snapshot per scoring pass.
type Store struct {
	reg     *cobit.Registry
	builtin *Snapshot
	source  ConfigSource
	logger  *slog.Logger

	current atomic.Pointer[Snapshot]
}

// NewStore starts out serving builtin. source may be nil, in which case
// Refresh always reverts to builtin.
func NewStore(reg *cobit.Registry, builtin *Snapshot, source ConfigSource, logger *slog.Logger) *Store {
	s := &Store{reg: reg, builtin: builtin, source: source, logger: logger}
	s.current.Store(builtin)
	return s
}

// Snapshot returns the snapshot to use for one scoring pass.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) Builtin() *Snapshot {
	return s.builtin
}

// Refresh reloads the active configuration and swaps the snapshot. On error
// the previous snapshot stays in place and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	if s.source == nil {
		s.current.Store(s.builtin)
		metrics.WeightRefreshes.WithLabelValues(SourceBuiltin, "ok").Inc()
		return nil
	}

	active, err := s.source.ActiveConfiguration(ctx)
	if err != nil {
		metrics.WeightRefreshes.WithLabelValues("unknown", "error").Inc()
		return fmt.Errorf("load active weight configuration: %w", err)
	}
	if active == nil {
		s.current.Store(s.builtin)
		metrics.WeightRefreshes.WithLabelValues(SourceBuiltin, "ok").Inc()
		s.logger.Info("weights refreshed", "source", SourceBuiltin)
		return nil
	}

	snap, warnings := Overlay(s.builtin, s.reg, Source{
		Kind:       SourceConfiguration,
		ConfigID:   active.ID,
		ConfigName: active.Name,
	}, active.Mappings)
	for _, w := range warnings {
		s.logger.Warn("weight configuration cell skipped", "config_id", active.ID, "detail", w)
	}
	s.current.Store(snap)
	metrics.WeightRefreshes.WithLabelValues(SourceConfiguration, "ok").Inc()
	s.logger.Info("weights refreshed", "source", SourceConfiguration, "config_id", active.ID, "config_name", active.Name)
	return nil
}

// Watch refreshes the snapshot whenever an instance announces an
// activation or deletion.
func (s *Store) Watch(h hermes.Client) error {
	return h.Subscribe(hermes.SubjectWeightsAll, func(subject string, _ []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.logger.Error("weight refresh after event failed", "subject", subject, "error", err)
		}
	})
}
