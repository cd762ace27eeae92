package cobit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	objectives := r.Objectives()
	require.Len(t, objectives, 40)
	assert.Equal(t, "EDM01", objectives[0].ID)
	assert.Equal(t, "MEA04", objectives[39].ID)

	perDomain := map[string]int{}
	for _, o := range objectives {
		perDomain[o.Domain]++
	}
	assert.Equal(t, map[string]int{"EDM": 5, "APO": 14, "BAI": 11, "DSS": 6, "MEA": 4}, perDomain)
	assert.Equal(t, "Align, Plan and Organize", r.DomainName("APO"))
	assert.Equal(t, "XYZ", r.DomainName("XYZ"))

	require.Len(t, r.Factors(), 10)
	assert.Equal(t, []string{"df1", "df2", "df3", "df4"}, r.InitialFactors())
	assert.Equal(t, []string{"df5", "df6", "df7", "df8", "df9", "df10"}, r.RefinedFactors())
}

func TestDefaultRegistryFactorTypes(t *testing.T) {
	r := Default()
	want := map[string]FactorType{
		"df1": TypeRating, "df2": TypeRating, "df3": TypeRating2D, "df4": TypeRating1to3,
		"df5": TypePercentage, "df6": TypePercentage, "df7": TypeRating,
		"df8": TypePercentage, "df9": TypePercentage, "df10": TypePercentage,
	}
	for id, typ := range want {
		f, ok := r.Factor(id)
		require.True(t, ok, id)
		assert.Equal(t, typ, f.Type, id)
		assert.NotEmpty(t, f.Items, id)
	}
}

func TestPercentageBaselinesAreFullSplits(t *testing.T) {
	for _, f := range Default().Factors() {
		if f.Type != TypePercentage {
			continue
		}
		var total float64
		for _, it := range f.Items {
			total += f.BaselineValue(it)
		}
		assert.Equal(t, 100.0, total, f.ID)
	}
}

func TestFactorLookups(t *testing.T) {
	f, ok := Default().Factor("df10")
	require.True(t, ok)

	it, ok := f.ItemByName("First Mover")
	require.True(t, ok)
	assert.Equal(t, "first_mover", it.ID)

	_, ok = f.Item("First Mover")
	assert.False(t, ok)

	_, ok = Default().Factor("df11")
	assert.False(t, ok)
	_, ok = Default().Objective("EDM06")
	assert.False(t, ok)
}

func TestFactorCopiesDoNotAliasRegistry(t *testing.T) {
	r := Default()

	f, ok := r.Factor("df5")
	require.True(t, ok)
	f.Type = TypeRating
	f.Items[0].Name = "changed"
	*f.Items[0].Baseline = 99

	listed := r.Factors()
	listed[4].Items[0].ID = "changed"

	again, ok := r.Factor("df5")
	require.True(t, ok)
	assert.Equal(t, TypePercentage, again.Type)
	assert.Equal(t, "df5_high", again.Items[0].ID)
	assert.Equal(t, "High", again.Items[0].Name)
	assert.Equal(t, 33.0, *again.Items[0].Baseline)
}

func TestFactorScale(t *testing.T) {
	tests := []struct {
		typ      FactorType
		min, max float64
	}{
		{TypeRating, 1, 5},
		{TypeRating1to3, 1, 3},
		{TypeRating2D, 1, 5},
		{TypePercentage, 0, 100},
	}
	for _, tt := range tests {
		f := Factor{Type: tt.typ}
		min, max := f.Scale()
		assert.Equal(t, tt.min, min, tt.typ)
		assert.Equal(t, tt.max, max, tt.typ)
	}
}

func TestParseRejectsBadReference(t *testing.T) {
	tests := map[string]string{
		"duplicate objective": `
objectives:
  - {id: O1, domain: EDM, name: A}
  - {id: O1, domain: EDM, name: B}
`,
		"duplicate factor": `
factors:
  - {id: f1, name: A, type: rating}
  - {id: f1, name: B, type: rating}
`,
		"unknown type": `
factors:
  - {id: f1, name: A, type: radio}
`,
		"duplicate item": `
factors:
  - id: f1
    name: A
    type: rating
    items:
      - {id: a, name: A}
      - {id: a, name: B}
`,
		"malformed": `objectives: {`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
