package weights

import (
	"fmt"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

// Overlay builds a snapshot from base with the cells of an administrative
// override applied on top. Cells and factors the override does not map keep
// the base weight.
//
// Override source keys are item ids. A key that is not an item id but equals
// an item's display name ("High", "First Mover") is accepted and resolved to
// that item, so configurations written against name-keyed matrices still load.
// Keys that resolve to nothing are skipped and returned as warnings.
func Overlay(base *Snapshot, reg *cobit.Registry, src Source, override Mappings) (*Snapshot, []string) {
	merged := base.Mappings()
	var warnings []string
	// Cells the override leaves alone still come from base.
	src.Illustrative = src.Illustrative || base.source.Illustrative

	for _, fid := range sortedKeys(override) {
		f, ok := reg.Factor(fid)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown factor %q", fid))
			continue
		}
		matrix := merged[fid]
		if matrix == nil {
			matrix = Matrix{}
			merged[fid] = matrix
		}
		rows := override[fid]
		for _, key := range sortedKeys(rows) {
			itemID, ok := resolveItem(f, key)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s: unknown item %q", fid, key))
				continue
			}
			row := matrix[itemID]
			if row == nil {
				row = map[string]float64{}
				matrix[itemID] = row
			}
			for _, obj := range sortedKeys(rows[key]) {
				w := rows[key][obj]
				if _, ok := reg.Objective(obj); !ok {
					warnings = append(warnings, fmt.Sprintf("%s.%s: unknown objective %q", fid, key, obj))
					continue
				}
				if math.IsNaN(w) || math.IsInf(w, 0) {
					warnings = append(warnings, fmt.Sprintf("%s.%s.%s: non-finite weight", fid, key, obj))
					continue
				}
				row[obj] = w
			}
		}
	}
	return newSnapshot(merged, src), warnings
}

func resolveItem(f *cobit.Factor, key string) (string, bool) {
	if it, ok := f.Item(key); ok {
		return it.ID, true
	}
	if it, ok := f.ItemByName(key); ok {
		return it.ID, true
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
