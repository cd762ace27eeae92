package weights

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
)

//go:embed calibration.yaml
var calibrationYAML []byte

type calibrationDoc struct {
	Illustrative bool                            `yaml:"illustrative"`
	Objectives   []string                        `yaml:"objectives"`
	Factors      map[string]map[string][]float64 `yaml:"factors"`
}

// Builtin parses the embedded calibration matrices against reg. The
// embedded values are illustrative placeholders, and the snapshot's source
// says so.
func Builtin(reg *cobit.Registry) (*Snapshot, error) {
	return ParseCalibration(calibrationYAML, reg)
}

// LoadCalibration reads a calibration file in the embedded format.
func LoadCalibration(path string, reg *cobit.Registry) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration: %w", err)
	}
	return ParseCalibration(data, reg)
}

// ParseCalibration decodes calibration rows. Every row must list one weight
// per column in "objectives", and every factor and item must exist in reg.
func ParseCalibration(data []byte, reg *cobit.Registry) (*Snapshot, error) {
	var doc calibrationDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse calibration: %w", err)
	}
	for _, oid := range doc.Objectives {
		if _, ok := reg.Objective(oid); !ok {
			return nil, fmt.Errorf("calibration: unknown objective %q", oid)
		}
	}

	m := make(Mappings, len(doc.Factors))
	for fid, rows := range doc.Factors {
		f, ok := reg.Factor(fid)
		if !ok {
			return nil, fmt.Errorf("calibration: unknown factor %q", fid)
		}
		matrix := make(Matrix, len(rows))
		for itemID, row := range rows {
			if _, ok := f.Item(itemID); !ok {
				return nil, fmt.Errorf("calibration: factor %s: unknown item %q", fid, itemID)
			}
			if len(row) != len(doc.Objectives) {
				return nil, fmt.Errorf("calibration: %s.%s has %d weights, want %d", fid, itemID, len(row), len(doc.Objectives))
			}
			cells := make(map[string]float64, len(row))
			for i, w := range row {
				cells[doc.Objectives[i]] = w
			}
			matrix[itemID] = cells
		}
		m[fid] = matrix
	}
	return newSnapshot(m, Source{Kind: SourceBuiltin, Illustrative: doc.Illustrative}), nil
}
