package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// Engine scores design factor inputs against one weight snapshot. It holds no
// mutable state; every method is safe for concurrent use and returns the same
// output for the same input.
type Engine struct {
	reg   *cobit.Registry
	snap  *weights.Snapshot
	bands CapabilityBands

	// baselines[objectiveID][factorID] is the final score of the factor's
	// baseline inputs.
	baselines map[string]map[string]float64
}

// NewEngine builds an engine and its baseline table.
func NewEngine(reg *cobit.Registry, snap *weights.Snapshot, bands CapabilityBands) *Engine {
	e := &Engine{reg: reg, snap: snap, bands: bands}
	e.baselines = e.computeBaselines()
	return e
}

func (e *Engine) Registry() *cobit.Registry { return e.reg }

func (e *Engine) Snapshot() *weights.Snapshot { return e.snap }

func (e *Engine) Bands() CapabilityBands { return e.bands }

func (e *Engine) computeBaselines() map[string]map[string]float64 {
	objectives := e.reg.Objectives()
	table := make(map[string]map[string]float64, len(objectives))
	for _, o := range objectives {
		table[o.ID] = make(map[string]float64)
	}
	for _, f := range e.reg.Factors() {
		f := f
		base := make(cobit.FactorInputs, len(f.Items))
		for _, it := range f.Items {
			base[it.ID] = f.DefaultValue(it)
		}
		values := specFor(f.Type).values(&f, base)
		for _, o := range objectives {
			table[o.ID][f.ID] = round2(e.weightedSum(&f, values, o.ID))
		}
	}
	return table
}

// BaselineScore returns the baseline table entry, 0 when either id is unknown.
func (e *Engine) BaselineScore(objectiveID, factorID string) float64 {
	return e.baselines[objectiveID][factorID]
}

// BaselineTable returns a copy of the full baseline table keyed by objective
// id, then factor id.
func (e *Engine) BaselineTable() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(e.baselines))
	for oid, row := range e.baselines {
		r := make(map[string]float64, len(row))
		for fid, v := range row {
			r[fid] = v
		}
		out[oid] = r
	}
	return out
}

// ScoreFactor scores one design factor for every objective. Results are
// sorted by final score, highest first; ties keep registry order. An unknown
// factor yields an empty slice.
func (e *Engine) ScoreFactor(inputs cobit.UserInputs, factorID string) []ScoreResult {
	f, ok := e.reg.Factor(factorID)
	if !ok {
		return []ScoreResult{}
	}
	values := specFor(f.Type).values(f, inputs.Factor(factorID))

	objectives := e.reg.Objectives()
	results := make([]ScoreResult, 0, len(objectives))
	for _, o := range objectives {
		raw := e.weightedSum(f, values, o.ID)
		final := round2(raw)
		baseline := e.BaselineScore(o.ID, f.ID)
		ri := RelativeImportance(final, baseline)
		results = append(results, ScoreResult{
			ObjectiveID:        o.ID,
			ObjectiveName:      o.Name,
			Domain:             o.Domain,
			RawScore:           raw,
			FinalScore:         final,
			BaselineScore:      baseline,
			RelativeImportance: ri,
			CapabilityLevel:    e.bands.Level(ri),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results
}

// ScoreAll scores every factor, keyed by factor id.
func (e *Engine) ScoreAll(inputs cobit.UserInputs) map[string][]ScoreResult {
	out := make(map[string][]ScoreResult)
	for _, f := range e.reg.Factors() {
		out[f.ID] = e.ScoreFactor(inputs, f.ID)
	}
	return out
}

func (e *Engine) weightedSum(f *cobit.Factor, values map[string]float64, objectiveID string) float64 {
	var sum float64
	for _, it := range f.Items {
		sum += values[it.ID] * e.snap.Weight(f.ID, it.ID, objectiveID)
	}
	return sum
}
