package scoring

// ScoreResult is the score of one objective for one design factor or for an
// aggregation of factors.
type ScoreResult struct {
	ObjectiveID        string  `json:"objectiveId"`
	ObjectiveName      string  `json:"objectiveName"`
	Domain             string  `json:"domain"`
	RawScore           float64 `json:"rawScore"`
	FinalScore         float64 `json:"finalScore"`
	BaselineScore      float64 `json:"baselineScore"`
	RelativeImportance float64 `json:"relativeImportance"`
	CapabilityLevel    int     `json:"capabilityLevel"`
}

// find returns the result for objectiveID, if present.
func find(results []ScoreResult, objectiveID string) (ScoreResult, bool) {
	for _, r := range results {
		if r.ObjectiveID == objectiveID {
			return r, true
		}
	}
	return ScoreResult{}, false
}
