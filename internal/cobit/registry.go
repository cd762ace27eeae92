package cobit

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

type FactorType string

const (
	TypeRating     FactorType = "rating"
	TypeRating1to3 FactorType = "rating-1-3"
	TypeRating2D   FactorType = "rating-2d"
	TypePercentage FactorType = "percentage"
)

// Objective is one of the fixed governance or management objectives.
type Objective struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain" yaml:"domain"`
}

// Item is a named option of a design factor: a strategy archetype, an
// enterprise goal, a risk scenario, an issue or a percentage share.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Baseline *float64 `json:"baseline,omitempty" yaml:"baseline"`
}

type Factor struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Type        FactorType `json:"type" yaml:"type"`
	Items       []Item     `json:"items" yaml:"items"`
}

// Scale returns the inclusive input range of a single value of the factor.
// For rating-2d it is the range of each axis.
func (f *Factor) Scale() (min, max float64) {
	switch f.Type {
	case TypeRating1to3:
		return 1, 3
	case TypePercentage:
		return 0, 100
	default:
		return 1, 5
	}
}

// Item returns the item with the given id.
func (f *Factor) Item(id string) (Item, bool) {
	for _, it := range f.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ItemByName returns the item whose display name matches exactly.
func (f *Factor) ItemByName(name string) (Item, bool) {
	for _, it := range f.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

type Domain struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Registry holds the reference data in its published order. It is built
// once at startup and never mutated.
type Registry struct {
	domains    []Domain
	objectives []Objective
	factors    []Factor

	objectiveIdx map[string]int
	factorIdx    map[string]int
}

type referenceDoc struct {
	Domains    []Domain    `yaml:"domains"`
	Objectives []Objective `yaml:"objectives"`
	Factors    []Factor    `yaml:"factors"`
}

var defaultRegistry = mustLoad(referenceYAML)

// Default returns the built-in COBIT 2019 registry.
func Default() *Registry {
	return defaultRegistry
}

func mustLoad(data []byte) *Registry {
	r, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("cobit: embedded reference data: %v", err))
	}
	return r
}

// Parse builds a registry from a reference YAML document.
func Parse(data []byte) (*Registry, error) {
	var doc referenceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}

	r := &Registry{
		domains:      doc.Domains,
		objectives:   doc.Objectives,
		factors:      doc.Factors,
		objectiveIdx: make(map[string]int, len(doc.Objectives)),
		factorIdx:    make(map[string]int, len(doc.Factors)),
	}
	for i, o := range doc.Objectives {
		if _, dup := r.objectiveIdx[o.ID]; dup {
			return nil, fmt.Errorf("duplicate objective %q", o.ID)
		}
		r.objectiveIdx[o.ID] = i
	}
	for i, f := range doc.Factors {
		if _, dup := r.factorIdx[f.ID]; dup {
			return nil, fmt.Errorf("duplicate factor %q", f.ID)
		}
		switch f.Type {
		case TypeRating, TypeRating1to3, TypeRating2D, TypePercentage:
		default:
			return nil, fmt.Errorf("factor %s: unknown type %q", f.ID, f.Type)
		}
		seen := make(map[string]bool, len(f.Items))
		for _, it := range f.Items {
			if seen[it.ID] {
				return nil, fmt.Errorf("factor %s: duplicate item %q", f.ID, it.ID)
			}
			seen[it.ID] = true
		}
		r.factorIdx[f.ID] = i
	}
	return r, nil
}

func (r *Registry) Domains() []Domain {
	return append([]Domain(nil), r.domains...)
}

// DomainName returns the long name of a domain code, or the code itself.
func (r *Registry) DomainName(code string) string {
	for _, d := range r.domains {
		if d.Code == code {
			return d.Name
		}
	}
	return code
}

// Objectives returns the objectives in registry order.
func (r *Registry) Objectives() []Objective {
	return append([]Objective(nil), r.objectives...)
}

func (r *Registry) Objective(id string) (Objective, bool) {
	i, ok := r.objectiveIdx[id]
	if !ok {
		return Objective{}, false
	}
	return r.objectives[i], true
}

// Factors returns copies of the design factors in registry order.
func (r *Registry) Factors() []Factor {
	out := make([]Factor, len(r.factors))
	for i := range r.factors {
		out[i] = r.factors[i].clone()
	}
	return out
}

// Factor returns a copy of the factor; changing it does not affect the
// registry.
func (r *Registry) Factor(id string) (*Factor, bool) {
	i, ok := r.factorIdx[id]
	if !ok {
		return nil, false
	}
	f := r.factors[i].clone()
	return &f, true
}

func (f Factor) clone() Factor {
	items := make([]Item, len(f.Items))
	for i, it := range f.Items {
		if it.Baseline != nil {
			b := *it.Baseline
			it.Baseline = &b
		}
		items[i] = it
	}
	f.Items = items
	return f
}

// InitialFactors are the factors feeding the initial scope (DF1 to DF4).
func (r *Registry) InitialFactors() []string {
	return r.factorIDs(0, 4)
}

// RefinedFactors are the factors feeding the refined scope (DF5 to DF10).
func (r *Registry) RefinedFactors() []string {
	return r.factorIDs(4, len(r.factors))
}

func (r *Registry) factorIDs(from, to int) []string {
	if to > len(r.factors) {
		to = len(r.factors)
	}
	if from > to {
		return nil
	}
	ids := make([]string, 0, to-from)
	for _, f := range r.factors[from:to] {
		ids = append(ids, f.ID)
	}
	return ids
}
