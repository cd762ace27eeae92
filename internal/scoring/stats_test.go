package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

func bucketCount(s Summary, label string) int {
	for _, b := range s.Distribution {
		if b.Label == label {
			return b.Count
		}
	}
	return -1
}

func TestSummaryStatisticsRating(t *testing.T) {
	e := testEngine(t)
	s := e.FactorSummary(cobit.UserInputs{"f1": {"a": cobit.Num(5)}}, "f1")

	assert.Equal(t, 1, s.ItemCount)
	assert.Equal(t, 5.0, s.AverageInput)
	assert.Equal(t, 3.0, s.AverageBaseline)
	assert.Equal(t, 2.0, s.AverageDeviation)
	assert.Equal(t, 1, s.AboveBaseline)
	assert.Equal(t, 0, s.AtBaseline)
	assert.Equal(t, 1, bucketCount(s, "5"))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "A", s.Items[0].Name)
}

func TestSummaryStatisticsRiskUsesProduct(t *testing.T) {
	e := testEngine(t)
	s := e.FactorSummary(cobit.UserInputs{}, "f3")
	assert.Equal(t, 9.0, s.AverageInput)
	assert.Equal(t, 9.0, s.AverageBaseline)
	assert.Equal(t, 1, s.AtBaseline)
	assert.Equal(t, 1, bucketCount(s, "medium"))

	s = e.FactorSummary(cobit.UserInputs{"f3": {"r1": cobit.Pair(5, 5)}}, "f3")
	assert.Equal(t, 25.0, s.MaxInput)
	assert.Equal(t, 1, bucketCount(s, "very high"))
}

func TestSummaryStatisticsPercentage(t *testing.T) {
	e := testEngine(t)
	s := e.FactorSummary(cobit.UserInputs{"f5": {"hi": cobit.Num(10)}}, "f5")

	assert.Equal(t, 2, s.ItemCount)
	// lo is filled from its baseline for display.
	assert.Equal(t, 77.0, s.TotalInput)
	assert.Equal(t, 10.0, s.MinInput)
	assert.Equal(t, 67.0, s.MaxInput)
	assert.Equal(t, 1, s.BelowBaseline)
	assert.Equal(t, 1, s.AtBaseline)
	assert.Equal(t, 1, bucketCount(s, "0-25"))
	assert.Equal(t, 1, bucketCount(s, "50-75"))
}

func TestSummaryStatisticsEmptyFactor(t *testing.T) {
	e := testEngine(t)
	s := e.FactorSummary(cobit.UserInputs{}, "f4")
	assert.Equal(t, 0, s.ItemCount)
	assert.Zero(t, s.AverageInput)
	assert.Zero(t, s.MinInput)
	assert.Zero(t, s.MaxInput)
	assert.Empty(t, s.Items)
	for _, b := range s.Distribution {
		assert.Zero(t, b.Count)
	}

	unknown := e.FactorSummary(cobit.UserInputs{}, "missing")
	assert.Equal(t, "missing", unknown.FactorID)
	assert.Equal(t, 0, unknown.ItemCount)
}
