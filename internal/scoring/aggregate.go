package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

// FactorWeights is the user-adjustable multiplier of each factor in the
// scope aggregations. Missing factors weigh 1; the range is unconstrained.
type FactorWeights map[string]float64

// DefaultFactorWeights sets every factor of reg to 1.
func DefaultFactorWeights(reg *cobit.Registry) FactorWeights {
	w := make(FactorWeights)
	for _, f := range reg.Factors() {
		w[f.ID] = 1
	}
	return w
}

// Weight returns the factor's multiplier: 1 when unset, 0 when not finite.
func (w FactorWeights) Weight(factorID string) float64 {
	v, ok := w[factorID]
	if !ok {
		return 1
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Aggregate sums weight x relative importance over factorIDs for every
// objective. Results follow registry order. A factor that yields no result
// for an objective (unknown factor) contributes 0.
func (e *Engine) Aggregate(inputs cobit.UserInputs, w FactorWeights, factorIDs []string) []ScoreResult {
	perFactor := make(map[string][]ScoreResult, len(factorIDs))
	for _, fid := range factorIDs {
		perFactor[fid] = e.ScoreFactor(inputs, fid)
	}

	objectives := e.reg.Objectives()
	results := make([]ScoreResult, 0, len(objectives))
	for _, o := range objectives {
		var sum float64
		for _, fid := range factorIDs {
			r, ok := find(perFactor[fid], o.ID)
			if !ok {
				continue
			}
			sum += w.Weight(fid) * r.RelativeImportance
		}
		final := round2(sum)
		results = append(results, ScoreResult{
			ObjectiveID:     o.ID,
			ObjectiveName:   o.Name,
			Domain:          o.Domain,
			RawScore:        sum,
			FinalScore:      final,
			CapabilityLevel: e.bands.Level(final),
		})
	}
	return results
}

// InitialScope aggregates the initial factors (DF1 to DF4).
func (e *Engine) InitialScope(inputs cobit.UserInputs, w FactorWeights) []ScoreResult {
	return e.Aggregate(inputs, w, e.reg.InitialFactors())
}

// RefinedScope aggregates the refining factors (DF5 to DF10).
func (e *Engine) RefinedScope(inputs cobit.UserInputs, w FactorWeights) []ScoreResult {
	return e.Aggregate(inputs, w, e.reg.RefinedFactors())
}
