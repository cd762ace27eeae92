package scoring

import (
	"fmt"
	"math"
	"sort"
)

// CapabilityBand maps every score at or above Min to Level.
type CapabilityBand struct {
	Min   float64 `json:"min" yaml:"min"`
	Level int     `json:"level" yaml:"level"`
}

// CapabilityBands is a step function from concluded scope to suggested
// capability level. Scores below every band resolve to Floor.
type CapabilityBands struct {
	Bands []CapabilityBand `json:"bands" yaml:"bands"`
	Floor int              `json:"floor" yaml:"floor"`
}

// DefaultCapabilityBands returns the design guide thresholds:
// 75 and above is level 4, 50 level 3, 25 level 2, anything lower level 1.
func DefaultCapabilityBands() CapabilityBands {
	return CapabilityBands{
		Bands: []CapabilityBand{
			{Min: 75, Level: 4},
			{Min: 50, Level: 3},
			{Min: 25, Level: 2},
		},
		Floor: 1,
	}
}

// Validate checks that levels never decrease as thresholds rise, which keeps
// Level monotonic.
func (b CapabilityBands) Validate() error {
	bands := b.sorted()
	prev := b.Floor
	for i := len(bands) - 1; i >= 0; i-- {
		band := bands[i]
		if math.IsNaN(band.Min) || math.IsInf(band.Min, 0) {
			return fmt.Errorf("capability band %d: non-finite threshold", band.Level)
		}
		if i < len(bands)-1 && band.Min == bands[i+1].Min {
			return fmt.Errorf("duplicate capability threshold %g", band.Min)
		}
		if band.Level < prev {
			return fmt.Errorf("capability level %d at %g is below level %d of a lower threshold", band.Level, band.Min, prev)
		}
		prev = band.Level
	}
	return nil
}

// Level resolves a score. It is total: NaN and scores below every threshold
// clamp to Floor, scores above the top threshold take the top level.
func (b CapabilityBands) Level(score float64) int {
	if math.IsNaN(score) {
		return b.Floor
	}
	for _, band := range b.sorted() {
		if score >= band.Min {
			return band.Level
		}
	}
	return b.Floor
}

// sorted returns the bands highest threshold first.
func (b CapabilityBands) sorted() []CapabilityBand {
	out := append([]CapabilityBand(nil), b.Bands...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min > out[j].Min })
	return out
}

// MaxAdjustment bounds the manual adjustment added to the refined scope.
const MaxAdjustment = 100

// ConcludedScope is the refined scope plus the manual adjustment, clamped to
// [-MaxAdjustment, MaxAdjustment].
func ConcludedScope(refined, adjustment float64) float64 {
	if math.IsNaN(adjustment) {
		adjustment = 0
	}
	adjustment = math.Max(-MaxAdjustment, math.Min(MaxAdjustment, adjustment))
	return refined + adjustment
}

// SuggestedCapability resolves the capability level of refined+adjustment.
func (e *Engine) SuggestedCapability(refined, adjustment float64) (concluded float64, level int) {
	concluded = ConcludedScope(refined, adjustment)
	return concluded, e.bands.Level(concluded)
}
