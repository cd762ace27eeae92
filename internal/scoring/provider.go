package scoring

import (
	"sync"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// SnapshotSource hands out the weight snapshot for the next scoring pass.
type SnapshotSource interface {
	Snapshot() *weights.Snapshot
}

// Provider returns an engine bound to the current weight snapshot. The
// engine and its baseline table are rebuilt only when the snapshot changes.
type Provider struct {
	reg    *cobit.Registry
	bands  CapabilityBands
	source SnapshotSource

	mu     sync.Mutex
	engine *Engine
}

func NewProvider(reg *cobit.Registry, bands CapabilityBands, source SnapshotSource) *Provider {
	return &Provider{reg: reg, bands: bands, source: source}
}

// Engine returns the engine for the current snapshot. Callers use the
// returned engine for a whole pass even if the snapshot is replaced meanwhile.
func (p *Provider) Engine() *Engine {
	snap := p.source.Snapshot()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.engine == nil || p.engine.snap != snap {
		p.engine = NewEngine(p.reg, snap, p.bands)
	}
	return p.engine
}

func (p *Provider) Registry() *cobit.Registry {
	return p.reg
}
