package cobit

import (
	"fmt"
	"sort"
	"strings"
)

// YearlyTargets is the number of yearly target score columns on the canvas.
const YearlyTargets = 5

// CanvasEntry holds the manual annotations for one objective on the design
// canvas. Unset numeric fields are nil.
type CanvasEntry struct {
	Adjustment          *float64 `json:"adjustment,omitempty"`
	AdjustmentReason    string   `json:"adjustmentReason,omitempty"`
	AgreedCapability    *int     `json:"agreedCapability,omitempty"`
	CapabilityReason    string   `json:"capabilityReason,omitempty"`
	InitialQuickScoring *float64 `json:"initialQuickScoring,omitempty"`
	AgreedFor5Years     *float64 `json:"agreedFor5Years,omitempty"`
	YearlyScore1        *float64 `json:"yearlyScore_1,omitempty"`
	YearlyScore2        *float64 `json:"yearlyScore_2,omitempty"`
	YearlyScore3        *float64 `json:"yearlyScore_3,omitempty"`
	YearlyScore4        *float64 `json:"yearlyScore_4,omitempty"`
	YearlyScore5        *float64 `json:"yearlyScore_5,omitempty"`
}

// Yearly returns the yearly target for year 1..5.
func (e CanvasEntry) Yearly(year int) *float64 {
	switch year {
	case 1:
		return e.YearlyScore1
	case 2:
		return e.YearlyScore2
	case 3:
		return e.YearlyScore3
	case 4:
		return e.YearlyScore4
	case 5:
		return e.YearlyScore5
	}
	return nil
}

// Merge overlays the fields set in top onto e.
func (e CanvasEntry) Merge(top CanvasEntry) CanvasEntry {
	out := e
	if top.Adjustment != nil {
		out.Adjustment = top.Adjustment
	}
	if top.AdjustmentReason != "" {
		out.AdjustmentReason = top.AdjustmentReason
	}
	if top.AgreedCapability != nil {
		out.AgreedCapability = top.AgreedCapability
	}
	if top.CapabilityReason != "" {
		out.CapabilityReason = top.CapabilityReason
	}
	if top.InitialQuickScoring != nil {
		out.InitialQuickScoring = top.InitialQuickScoring
	}
	if top.AgreedFor5Years != nil {
		out.AgreedFor5Years = top.AgreedFor5Years
	}
	if top.YearlyScore1 != nil {
		out.YearlyScore1 = top.YearlyScore1
	}
	if top.YearlyScore2 != nil {
		out.YearlyScore2 = top.YearlyScore2
	}
	if top.YearlyScore3 != nil {
		out.YearlyScore3 = top.YearlyScore3
	}
	if top.YearlyScore4 != nil {
		out.YearlyScore4 = top.YearlyScore4
	}
	if top.YearlyScore5 != nil {
		out.YearlyScore5 = top.YearlyScore5
	}
	return out
}

// CanvasInputs maps objective id to its canvas annotations.
type CanvasInputs map[string]CanvasEntry

// Validate reports every numeric field outside its allowed range:
// adjustment [-100,100], agreed capability [1,4], quick scoring, 5-year and
// yearly targets [1,5].
func (c CanvasInputs) Validate() error {
	var problems []string
	check := func(obj, field string, v *float64, min, max float64) {
		if v != nil && (*v < min || *v > max) {
			problems = append(problems, fmt.Sprintf("%s.%s=%g outside [%g,%g]", obj, field, *v, min, max))
		}
	}
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		e := c[id]
		check(id, "adjustment", e.Adjustment, -100, 100)
		if e.AgreedCapability != nil && (*e.AgreedCapability < 1 || *e.AgreedCapability > 4) {
			problems = append(problems, fmt.Sprintf("%s.agreedCapability=%d outside [1,4]", id, *e.AgreedCapability))
		}
		check(id, "initialQuickScoring", e.InitialQuickScoring, 1, 5)
		check(id, "agreedFor5Years", e.AgreedFor5Years, 1, 5)
		for y := 1; y <= YearlyTargets; y++ {
			check(id, fmt.Sprintf("yearlyScore_%d", y), e.Yearly(y), 1, 5)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid canvas inputs: %s", strings.Join(problems, "; "))
	}
	return nil
}
