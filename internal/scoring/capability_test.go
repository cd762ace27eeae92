package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityBandsLevel(t *testing.T) {
	b := DefaultCapabilityBands()
	tests := []struct {
		score float64
		want  int
	}{
		{-500, 1},
		{-50, 1},
		{0, 1},
		{24.99, 1},
		{25, 2},
		{49.99, 2},
		{50, 3},
		{74.5, 3},
		{75, 4},
		{1000, 4},
		{math.NaN(), 1},
		{math.Inf(1), 4},
		{math.Inf(-1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Level(tt.score), "score %v", tt.score)
	}
}

func TestCapabilityBandsMonotonic(t *testing.T) {
	b := DefaultCapabilityBands()
	prev := b.Level(-300)
	for s := -300.0; s <= 300; s += 0.5 {
		level := b.Level(s)
		assert.GreaterOrEqual(t, level, prev, "score %v", s)
		prev = level
	}
}

func TestCapabilityBandsUnsortedInput(t *testing.T) {
	b := CapabilityBands{
		Bands: []CapabilityBand{{Min: 20, Level: 2}, {Min: 60, Level: 4}, {Min: 40, Level: 3}},
		Floor: 0,
	}
	assert.NoError(t, b.Validate())
	assert.Equal(t, 0, b.Level(10))
	assert.Equal(t, 3, b.Level(45))
	assert.Equal(t, 4, b.Level(60))
}

func TestCapabilityBandsValidate(t *testing.T) {
	assert.NoError(t, DefaultCapabilityBands().Validate())

	decreasing := CapabilityBands{Bands: []CapabilityBand{{Min: 75, Level: 2}, {Min: 25, Level: 3}}, Floor: 1}
	assert.Error(t, decreasing.Validate())

	belowFloor := CapabilityBands{Bands: []CapabilityBand{{Min: 25, Level: 0}}, Floor: 1}
	assert.Error(t, belowFloor.Validate())

	duplicate := CapabilityBands{Bands: []CapabilityBand{{Min: 25, Level: 2}, {Min: 25, Level: 3}}, Floor: 1}
	assert.Error(t, duplicate.Validate())
}

func TestConcludedScope(t *testing.T) {
	assert.Equal(t, 40.0, ConcludedScope(10, 30))
	assert.Equal(t, 110.0, ConcludedScope(10, 150))
	assert.Equal(t, -90.0, ConcludedScope(10, -150))
	assert.Equal(t, 10.0, ConcludedScope(10, math.NaN()))
}

func TestEngineSuggestedCapability(t *testing.T) {
	e := testEngine(t)
	concluded, level := e.SuggestedCapability(20, 40)
	assert.Equal(t, 60.0, concluded)
	assert.Equal(t, 3, level)
}
