package scoring

import "math"

// halfStepSlack absorbs binary representation error so that values such as
// 0.775 (stored as 0.77499999...) still round up at a half step.
const halfStepSlack = 1e-9

// roundHalfAway rounds x to the nearest integer, halves away from zero.
func roundHalfAway(x float64) float64 {
	return math.Round(x + math.Copysign(halfStepSlack, x))
}

// round2 rounds to two decimals.
func round2(x float64) float64 {
	return roundHalfAway(x*100) / 100
}

// RelativeImportance is the signed deviation of final from baseline, in
// percent, quantised to multiples of 5. A non-positive baseline yields 0.
//
//	ratio = final * 100 / baseline
//	ri    = round(ratio / 5) * 5 - 100
func RelativeImportance(final, baseline float64) float64 {
	if !(baseline > 0) || math.IsNaN(final) || math.IsInf(final, 0) {
		return 0
	}
	ratio := final * 100 / baseline
	return roundHalfAway(ratio/5)*5 - 100
}
