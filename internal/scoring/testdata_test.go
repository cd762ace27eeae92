package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

const testReference = `
domains:
  - {code: EDM, name: "Evaluate, Direct and Monitor"}
  - {code: APO, name: "Align, Plan and Organize"}
objectives:
  - {id: O1, domain: EDM, name: "First"}
  - {id: O2, domain: EDM, name: "Second"}
  - {id: O3, domain: APO, name: "Third"}
factors:
  - id: f1
    name: Strategy
    type: rating
    items:
      - {id: a, name: "A", baseline: 3}
  - id: f2
    name: Issues
    type: rating-1-3
    items:
      - {id: i1, name: "Issue"}
  - id: f3
    name: Risk
    type: rating-2d
    items:
      - {id: r1, name: "Risk"}
  - id: f4
    name: Empty
    type: rating
    items: []
  - id: f5
    name: Threats
    type: percentage
    items:
      - {id: hi, name: "High", baseline: 33}
      - {id: lo, name: "Normal", baseline: 67}
  - id: f6
    name: Unmapped
    type: percentage
    items:
      - {id: p1, name: "P1", baseline: 50}
      - {id: p2, name: "P2", baseline: 50}
`

func testRegistry(t *testing.T) *cobit.Registry {
	t.Helper()
	reg, err := cobit.Parse([]byte(testReference))
	require.NoError(t, err)
	return reg
}

func testSnapshot() *weights.Snapshot {
	return weights.NewSnapshot(weights.Mappings{
		"f1": {"a": {"O1": 2, "O2": 1, "O3": 0}},
		"f2": {"i1": {"O1": 1, "O2": 3, "O3": 2}},
		"f3": {"r1": {"O1": 1, "O2": 0.5}},
		"f5": {
			"hi": {"O1": 4, "O2": 1, "O3": 1},
			"lo": {"O1": 1, "O2": 1, "O3": 2},
		},
	}, weights.Source{Kind: weights.SourceBuiltin})
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(testRegistry(t), testSnapshot(), DefaultCapabilityBands())
}

func resultFor(t *testing.T, results []ScoreResult, objectiveID string) ScoreResult {
	t.Helper()
	r, ok := find(results, objectiveID)
	require.True(t, ok, "no result for %s", objectiveID)
	return r
}

func float64Ptr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
