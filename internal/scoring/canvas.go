package scoring

import (
	"math"
	"strconv"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

// CanvasRow is one objective on the consolidated design canvas.
type CanvasRow struct {
	ObjectiveID         string             `json:"objectiveId"`
	ObjectiveName       string             `json:"objectiveName"`
	Domain              string             `json:"domain"`
	FactorScores        map[string]float64 `json:"factorScores"`
	InitialScope        float64            `json:"initialScope"`
	RefinedScope        float64            `json:"refinedScope"`
	Adjustment          float64            `json:"adjustment"`
	AdjustmentReason    string             `json:"adjustmentReason,omitempty"`
	ConcludedScope      float64            `json:"concludedScope"`
	SuggestedCapability int                `json:"suggestedCapability"`
	AgreedCapability    int                `json:"agreedCapability"`
	CapabilityReason    string             `json:"capabilityReason,omitempty"`
	InitialQuickScoring *float64           `json:"initialQuickScoring,omitempty"`
	AgreedFor5Years     float64            `json:"agreedFor5Years"`
	YearlyTargets       []*float64         `json:"yearlyTargets"`
}

// ColumnSummary is the average of one canvas column.
type ColumnSummary struct {
	Sum     float64 `json:"sum"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

func (c *ColumnSummary) add(v float64) {
	c.Sum += v
	c.Count++
}

func (c *ColumnSummary) finish() {
	if c.Count > 0 {
		c.Average = round2(c.Sum / float64(c.Count))
	}
}

// Canvas summary column keys.
const (
	ColumnSuggestedCapability = "suggestedCapability"
	ColumnAgreedCapability    = "agreedCapability"
	ColumnInitialQuickScoring = "initialQuickScoring"
	ColumnAgreedFor5Years     = "agreedFor5Years"
)

// YearlyColumn is the summary key of yearly target year (1-based).
func YearlyColumn(year int) string {
	return "yearlyScore_" + strconv.Itoa(year)
}

// CanvasReport is the full canvas with the column maxima used to scale the
// diverging bars. Maxima are at least 1.
type CanvasReport struct {
	Rows              []CanvasRow              `json:"rows"`
	FactorWeights     FactorWeights            `json:"factorWeights"`
	MaxInitialScope   float64                  `json:"maxInitialScope"`
	MaxRefinedScope   float64                  `json:"maxRefinedScope"`
	MaxConcludedScope float64                  `json:"maxConcludedScope"`
	Summaries         map[string]ColumnSummary `json:"summaries"`
}

// Canvas computes the consolidated canvas. Manual fields resolve in three
// layers: the computed default, then stored overrides, then session edits.
// Agreed capability defaults to the suggested capability and the five-year
// target to the agreed capability. Computed columns are always summarised;
// quick scoring and yearly targets only where a value was entered.
func (e *Engine) Canvas(inputs cobit.UserInputs, w FactorWeights, stored, session cobit.CanvasInputs) CanvasReport {
	if w == nil {
		w = DefaultFactorWeights(e.reg)
	}
	perFactor := e.ScoreAll(inputs)
	initial := e.InitialScope(inputs, w)
	refined := e.RefinedScope(inputs, w)

	report := CanvasReport{
		FactorWeights:     w,
		MaxInitialScope:   1,
		MaxRefinedScope:   1,
		MaxConcludedScope: 1,
		Summaries:         make(map[string]ColumnSummary),
	}
	sums := map[string]*ColumnSummary{
		ColumnSuggestedCapability: {},
		ColumnAgreedCapability:    {},
		ColumnInitialQuickScoring: {},
		ColumnAgreedFor5Years:     {},
	}
	for y := 1; y <= cobit.YearlyTargets; y++ {
		sums[YearlyColumn(y)] = &ColumnSummary{}
	}

	for _, o := range e.reg.Objectives() {
		entry := stored[o.ID].Merge(session[o.ID])

		row := CanvasRow{
			ObjectiveID:   o.ID,
			ObjectiveName: o.Name,
			Domain:        o.Domain,
			FactorScores:  make(map[string]float64, len(perFactor)),
			YearlyTargets: make([]*float64, cobit.YearlyTargets),
		}
		for fid, results := range perFactor {
			if r, ok := find(results, o.ID); ok {
				row.FactorScores[fid] = r.RelativeImportance
			}
		}
		if r, ok := find(initial, o.ID); ok {
			row.InitialScope = r.FinalScore
		}
		if r, ok := find(refined, o.ID); ok {
			row.RefinedScope = r.FinalScore
		}

		if entry.Adjustment != nil {
			row.Adjustment = *entry.Adjustment
		}
		row.ConcludedScope, row.SuggestedCapability = e.SuggestedCapability(row.RefinedScope, row.Adjustment)
		row.AdjustmentReason = entry.AdjustmentReason
		row.CapabilityReason = entry.CapabilityReason

		row.AgreedCapability = row.SuggestedCapability
		if entry.AgreedCapability != nil {
			row.AgreedCapability = *entry.AgreedCapability
		}
		row.AgreedFor5Years = float64(row.AgreedCapability)
		if entry.AgreedFor5Years != nil {
			row.AgreedFor5Years = *entry.AgreedFor5Years
		}
		row.InitialQuickScoring = entry.InitialQuickScoring
		for y := 1; y <= cobit.YearlyTargets; y++ {
			row.YearlyTargets[y-1] = entry.Yearly(y)
		}

		report.MaxInitialScope = math.Max(report.MaxInitialScope, math.Abs(row.InitialScope))
		report.MaxRefinedScope = math.Max(report.MaxRefinedScope, math.Abs(row.RefinedScope))
		report.MaxConcludedScope = math.Max(report.MaxConcludedScope, math.Abs(row.ConcludedScope))

		sums[ColumnSuggestedCapability].add(float64(row.SuggestedCapability))
		sums[ColumnAgreedCapability].add(float64(row.AgreedCapability))
		sums[ColumnAgreedFor5Years].add(row.AgreedFor5Years)
		if v := row.InitialQuickScoring; v != nil {
			sums[ColumnInitialQuickScoring].add(*v)
		}
		for y, v := range row.YearlyTargets {
			if v != nil {
				sums[YearlyColumn(y+1)].add(*v)
			}
		}

		report.Rows = append(report.Rows, row)
	}

	for k, c := range sums {
		c.finish()
		report.Summaries[k] = *c
	}
	return report
}
