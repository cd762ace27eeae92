package cobit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Axis default for rating-2d inputs when impact or likelihood is unset.
const DefaultAxis = 3.0

// Value is one input cell. Rating and percentage factors carry a Number;
// rating-2d factors carry Impact and Likelihood. On the wire it is either a
// JSON number or an {"impact": n, "likelihood": n} object.
type Value struct {
	Number     *float64
	Impact     *float64
	Likelihood *float64
}

func Num(v float64) Value {
	return Value{Number: &v}
}

func Pair(impact, likelihood float64) Value {
	return Value{Impact: &impact, Likelihood: &likelihood}
}

func (v Value) IsZero() bool {
	return v.Number == nil && v.Impact == nil && v.Likelihood == nil
}

// Scalar returns the numeric value when it is set and finite.
func (v Value) Scalar() (float64, bool) {
	if v.Number == nil || !finite(*v.Number) {
		return 0, false
	}
	return *v.Number, true
}

// Product returns impact x likelihood, defaulting each unset or non-finite
// axis to DefaultAxis. A plain number is taken as an already computed product.
func (v Value) Product() float64 {
	if n, ok := v.Scalar(); ok {
		return n
	}
	impact, likelihood := DefaultAxis, DefaultAxis
	if v.Impact != nil && finite(*v.Impact) {
		impact = *v.Impact
	}
	if v.Likelihood != nil && finite(*v.Likelihood) {
		likelihood = *v.Likelihood
	}
	return impact * likelihood
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	type pair struct {
		Impact     *float64 `json:"impact,omitempty"`
		Likelihood *float64 `json:"likelihood,omitempty"`
	}
	return json.Marshal(pair{Impact: v.Impact, Likelihood: v.Likelihood})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}
	if data[0] == '{' {
		var p struct {
			Impact     *float64 `json:"impact"`
			Likelihood *float64 `json:"likelihood"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode rating pair: %w", err)
		}
		*v = Value{Impact: p.Impact, Likelihood: p.Likelihood}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode input value: %w", err)
	}
	*v = Value{Number: &n}
	return nil
}

// FactorInputs maps item id to the value entered for it.
type FactorInputs map[string]Value

// UserInputs maps factor id to the inputs of that factor.
type UserInputs map[string]FactorInputs

// Factor returns the inputs of one factor, never nil.
func (u UserInputs) Factor(id string) FactorInputs {
	if in, ok := u[id]; ok && in != nil {
		return in
	}
	return FactorInputs{}
}

// Clone returns a deep copy.
func (u UserInputs) Clone() UserInputs {
	out := make(UserInputs, len(u))
	for fid, in := range u {
		c := make(FactorInputs, len(in))
		for k, v := range in {
			c[k] = v.clone()
		}
		out[fid] = c
	}
	return out
}

func (v Value) clone() Value {
	var c Value
	if v.Number != nil {
		n := *v.Number
		c.Number = &n
	}
	if v.Impact != nil {
		n := *v.Impact
		c.Impact = &n
	}
	if v.Likelihood != nil {
		n := *v.Likelihood
		c.Likelihood = &n
	}
	return c
}

// BaselineValue is the reference input of an item: its configured baseline
// or the type default (3 on five-point scales, 2 on three-point scales,
// 3 x 3 for risk pairs, 0 for percentage shares).
func (f *Factor) BaselineValue(it Item) float64 {
	if it.Baseline != nil {
		return *it.Baseline
	}
	switch f.Type {
	case TypeRating1to3:
		return 2
	case TypeRating2D:
		return DefaultAxis * DefaultAxis
	case TypePercentage:
		return 0
	default:
		return 3
	}
}

// BaselineValues returns BaselineValue for every item keyed by item id.
func (f *Factor) BaselineValues() map[string]float64 {
	out := make(map[string]float64, len(f.Items))
	for _, it := range f.Items {
		out[it.ID] = f.BaselineValue(it)
	}
	return out
}

// DefaultValue is the input a fresh project holds for the item.
func (f *Factor) DefaultValue(it Item) Value {
	if f.Type == TypeRating2D {
		return Pair(DefaultAxis, DefaultAxis)
	}
	return Num(f.BaselineValue(it))
}

// DefaultInputs returns the inputs a new project starts with.
func DefaultInputs(r *Registry) UserInputs {
	out := make(UserInputs, len(r.factors))
	for i := range r.factors {
		f := &r.factors[i]
		in := make(FactorInputs, len(f.Items))
		for _, it := range f.Items {
			in[it.ID] = f.DefaultValue(it)
		}
		out[f.ID] = in
	}
	return out
}

// EffectiveFactorInputs fills every item missing from in with its default
// value. The result is for display and statistics; it is never persisted.
func EffectiveFactorInputs(f *Factor, in FactorInputs) FactorInputs {
	out := make(FactorInputs, len(f.Items))
	for _, it := range f.Items {
		if v, ok := in[it.ID]; ok && !v.IsZero() {
			out[it.ID] = v
			continue
		}
		out[it.ID] = f.DefaultValue(it)
	}
	return out
}

// EffectiveValue is the numeric input used for display: impact x likelihood
// for risk pairs, the number otherwise, the baseline when unset.
func (f *Factor) EffectiveValue(it Item, v Value) float64 {
	if f.Type == TypeRating2D {
		return v.Product()
	}
	if n, ok := v.Scalar(); ok {
		return n
	}
	return f.BaselineValue(it)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
