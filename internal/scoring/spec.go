package scoring

import (
	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

// factorSpec turns one factor's raw inputs into the per-item multipliers of
// the weighted sum. The four factor types differ only here.
type factorSpec interface {
	values(f *cobit.Factor, in cobit.FactorInputs) map[string]float64
}

func specFor(t cobit.FactorType) factorSpec {
	switch t {
	case cobit.TypeRating2D:
		return riskSpec{}
	case cobit.TypePercentage:
		return shareSpec{}
	default:
		return ratingSpec{}
	}
}

// ratingSpec covers rating and rating-1-3 factors: the entered value, or the
// item's baseline when it is missing.
type ratingSpec struct{}

func (ratingSpec) values(f *cobit.Factor, in cobit.FactorInputs) map[string]float64 {
	out := make(map[string]float64, len(f.Items))
	for _, it := range f.Items {
		if n, ok := in[it.ID].Scalar(); ok {
			out[it.ID] = n
			continue
		}
		out[it.ID] = f.BaselineValue(it)
	}
	return out
}

// riskSpec covers rating-2d factors: impact x likelihood, each axis
// defaulting to 3.
type riskSpec struct{}

func (riskSpec) values(f *cobit.Factor, in cobit.FactorInputs) map[string]float64 {
	out := make(map[string]float64, len(f.Items))
	for _, it := range f.Items {
		out[it.ID] = in[it.ID].Product()
	}
	return out
}

// shareSpec covers percentage factors. Shares are normalised by their actual
// total, so the split need not add up to 100. A factor with no keys at all
// takes the baseline split. Once any key is present, missing or null items
// count as 0, and an all-zero split scores 0.
type shareSpec struct{}

func (shareSpec) values(f *cobit.Factor, in cobit.FactorInputs) map[string]float64 {
	raw := make(map[string]float64, len(f.Items))
	if len(in) == 0 {
		for _, it := range f.Items {
			raw[it.ID] = f.BaselineValue(it)
		}
	} else {
		for _, it := range f.Items {
			n, _ := in[it.ID].Scalar()
			raw[it.ID] = n
		}
	}

	// Summed in item order so repeated passes are bit-identical.
	var total float64
	for _, it := range f.Items {
		total += raw[it.ID]
	}
	out := make(map[string]float64, len(raw))
	for _, it := range f.Items {
		if total > 0 {
			out[it.ID] = raw[it.ID] / total
		} else {
			out[it.ID] = 0
		}
	}
	return out
}
