package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

// ItemStat is one item's effective input next to its baseline.
type ItemStat struct {
	ItemID    string  `json:"itemId"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Baseline  float64 `json:"baseline"`
	Deviation float64 `json:"deviation"`
}

// Bucket counts items whose value falls in [Min, Max).
type Bucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Summary describes one factor's inputs for display. It feeds nothing else.
type Summary struct {
	FactorID         string     `json:"factorId"`
	ItemCount        int        `json:"itemCount"`
	AverageInput     float64    `json:"averageInput"`
	AverageBaseline  float64    `json:"averageBaseline"`
	AverageDeviation float64    `json:"averageDeviation"`
	MinInput         float64    `json:"minInput"`
	MaxInput         float64    `json:"maxInput"`
	TotalInput       float64    `json:"totalInput"`
	AboveBaseline    int        `json:"aboveBaseline"`
	AtBaseline       int        `json:"atBaseline"`
	BelowBaseline    int        `json:"belowBaseline"`
	Distribution     []Bucket   `json:"distribution"`
	Items            []ItemStat `json:"items"`
}

// SummaryStatistics summarises the effective inputs of f against baselines
// (item id to baseline value). Risk pairs count as impact x likelihood.
// A factor without items returns a zero-filled summary.
func SummaryStatistics(f *cobit.Factor, effective cobit.FactorInputs, baselines map[string]float64) Summary {
	s := Summary{
		FactorID:     f.ID,
		Distribution: bucketsFor(f.Type),
		Items:        []ItemStat{},
	}
	if len(f.Items) == 0 {
		return s
	}

	var sumInput, sumBase float64
	s.MinInput = math.Inf(1)
	s.MaxInput = math.Inf(-1)
	for _, it := range f.Items {
		v := f.EffectiveValue(it, effective[it.ID])
		b, ok := baselines[it.ID]
		if !ok {
			b = f.BaselineValue(it)
		}
		dev := v - b
		s.Items = append(s.Items, ItemStat{ItemID: it.ID, Name: it.Name, Value: v, Baseline: b, Deviation: dev})

		sumInput += v
		sumBase += b
		s.MinInput = math.Min(s.MinInput, v)
		s.MaxInput = math.Max(s.MaxInput, v)
		switch {
		case dev > 0:
			s.AboveBaseline++
		case dev < 0:
			s.BelowBaseline++
		default:
			s.AtBaseline++
		}
		s.Distribution[bucketIndex(s.Distribution, v)].Count++
	}

	n := float64(len(f.Items))
	s.ItemCount = len(f.Items)
	s.TotalInput = sumInput
	s.AverageInput = round2(sumInput / n)
	s.AverageBaseline = round2(sumBase / n)
	s.AverageDeviation = round2((sumInput - sumBase) / n)
	return s
}

// bucketsFor returns the empty distribution of a factor type: one bucket per
// scale point for ratings, risk bands for impact x likelihood and quartiles
// for percentage shares.
func bucketsFor(t cobit.FactorType) []Bucket {
	switch t {
	case cobit.TypeRating1to3:
		return []Bucket{
			{Label: "1", Min: 1, Max: 1.5},
			{Label: "2", Min: 1.5, Max: 2.5},
			{Label: "3", Min: 2.5, Max: 3},
		}
	case cobit.TypeRating2D:
		return []Bucket{
			{Label: "low", Min: 1, Max: 5},
			{Label: "medium", Min: 5, Max: 10},
			{Label: "high", Min: 10, Max: 17},
			{Label: "very high", Min: 17, Max: 25},
		}
	case cobit.TypePercentage:
		return []Bucket{
			{Label: "0-25", Min: 0, Max: 25},
			{Label: "25-50", Min: 25, Max: 50},
			{Label: "50-75", Min: 50, Max: 75},
			{Label: "75-100", Min: 75, Max: 100},
		}
	default:
		return []Bucket{
			{Label: "1", Min: 1, Max: 1.5},
			{Label: "2", Min: 1.5, Max: 2.5},
			{Label: "3", Min: 2.5, Max: 3.5},
			{Label: "4", Min: 3.5, Max: 4.5},
			{Label: "5", Min: 4.5, Max: 5},
		}
	}
}

// bucketIndex places v in the first bucket whose Max exceeds it. Values past
// either end of the scale land in the edge buckets.
func bucketIndex(buckets []Bucket, v float64) int {
	for i, b := range buckets {
		if v < b.Max {
			return i
		}
	}
	return len(buckets) - 1
}

// FactorSummary resolves the factor and fills missing inputs before
// summarising. Unknown factors return a zero-filled summary.
func (e *Engine) FactorSummary(inputs cobit.UserInputs, factorID string) Summary {
	f, ok := e.reg.Factor(factorID)
	if !ok {
		return Summary{FactorID: factorID, Distribution: []Bucket{}, Items: []ItemStat{}}
	}
	effective := cobit.EffectiveFactorInputs(f, inputs.Factor(factorID))
	return SummaryStatistics(f, effective, f.BaselineValues())
}
