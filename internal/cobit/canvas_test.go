package cobit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func TestCanvasValidate(t *testing.T) {
	ok := CanvasInputs{
		"EDM01": {Adjustment: fptr(-100), AgreedCapability: iptr(4), YearlyScore5: fptr(5)},
		"APO01": {Adjustment: fptr(100), InitialQuickScoring: fptr(1)},
	}
	assert.NoError(t, ok.Validate())

	bad := CanvasInputs{
		"EDM01": {Adjustment: fptr(101)},
		"APO01": {AgreedCapability: iptr(0), YearlyScore3: fptr(6)},
	}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EDM01.adjustment=101")
	assert.Contains(t, err.Error(), "APO01.agreedCapability=0")
	assert.Contains(t, err.Error(), "APO01.yearlyScore_3=6")
}

func TestCanvasEntryMerge(t *testing.T) {
	stored := CanvasEntry{Adjustment: fptr(10), AdjustmentReason: "audit", YearlyScore1: fptr(2)}
	session := CanvasEntry{Adjustment: fptr(-20), YearlyScore2: fptr(3)}

	m := stored.Merge(session)
	assert.Equal(t, -20.0, *m.Adjustment)
	assert.Equal(t, "audit", m.AdjustmentReason)
	assert.Equal(t, 2.0, *m.Yearly(1))
	assert.Equal(t, 3.0, *m.Yearly(2))
	assert.Nil(t, m.Yearly(3))
	assert.Nil(t, m.Yearly(6))
	assert.Nil(t, m.AgreedCapability)
}
