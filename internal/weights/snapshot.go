package weights

// Matrix maps source item id to objective id to weight.
type Matrix map[string]map[string]float64

// Weight returns the cell value; unmapped cells weigh 0.
func (m Matrix) Weight(sourceID, objectiveID string) float64 {
	return m[sourceID][objectiveID]
}

func (m Matrix) clone() Matrix {
	out := make(Matrix, len(m))
	for src, row := range m {
		r := make(map[string]float64, len(row))
		for obj, w := range row {
			r[obj] = w
		}
		out[src] = r
	}
	return out
}

// Mappings is the full tri-level weight table: factor, source item,
// objective. It is the shape stored in weight configurations.
type Mappings map[string]Matrix

const (
	SourceBuiltin       = "builtin"
	SourceConfiguration = "configuration"
)

// Source describes where a snapshot's weights came from. Illustrative is
// set when some cells come from placeholder calibration data.
type Source struct {
	Kind         string `json:"source"`
	ConfigID     string `json:"configId,omitempty"`
	ConfigName   string `json:"configName,omitempty"`
	Illustrative bool   `json:"illustrative,omitempty"`
}

// Snapshot is an immutable set of weight matrices. A scoring pass reads a
// single snapshot from start to finish.
type Snapshot struct {
	factors Mappings
	source  Source
}

func newSnapshot(m Mappings, src Source) *Snapshot {
	return &Snapshot{factors: m, source: src}
}

// NewSnapshot copies m into a new snapshot.
func NewSnapshot(m Mappings, src Source) *Snapshot {
	out := make(Mappings, len(m))
	for fid, matrix := range m {
		out[fid] = matrix.clone()
	}
	return newSnapshot(out, src)
}

// Weight returns the weight of sourceID on objectiveID for factorID, 0 when
// any level is unmapped.
func (s *Snapshot) Weight(factorID, sourceID, objectiveID string) float64 {
	return s.factors[factorID].Weight(sourceID, objectiveID)
}

// FactorWeights returns a copy of one factor's matrix, empty for an unknown
// factor.
func (s *Snapshot) FactorWeights(factorID string) Matrix {
	m, ok := s.factors[factorID]
	if !ok {
		return Matrix{}
	}
	return m.clone()
}

// Mappings returns a copy of every matrix, suitable as the starting point
// of a new weight configuration.
func (s *Snapshot) Mappings() Mappings {
	out := make(Mappings, len(s.factors))
	for fid, m := range s.factors {
		out[fid] = m.clone()
	}
	return out
}

func (s *Snapshot) Source() Source {
	return s.source
}
