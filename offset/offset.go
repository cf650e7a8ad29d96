// Package offset derives deterministic per-feature time offsets so an
// identical animation does not pulse in lockstep across co-rendered
// features. All randomness is seeded; identical (features, seed, period)
// input always yields bit-identical output.
package offset

import (
	"fmt"
	"strconv"

	"github.com/lixenwraith/mapglow/expr"
	"github.com/lixenwraith/mapglow/feature"
)

// Spec is one explicit offset variant. The duck-typed configuration
// shapes (number | "random" | ["get",p] | ["hash",p] | {min,max}) parse
// into exactly one of these.
type Spec interface {
	isSpec()
}

// Fixed applies the same offset to every feature
type Fixed struct {
	Value float64
}

// Random draws a seeded uniform offset in [0, period) per feature
type Random struct{}

// FromProperty reads a numeric feature property directly, 0 if absent
type FromProperty struct {
	Property string
}

// HashOfProperty hashes the stringified property value into [0, period).
// Same property value always produces the same offset, independent of
// feature order.
type HashOfProperty struct {
	Property string
}

// Range draws a seeded uniform offset in [Min, Max) per feature
type Range struct {
	Min float64
	Max float64
}

func (Fixed) isSpec()          {}
func (Random) isSpec()         {}
func (FromProperty) isSpec()   {}
func (HashOfProperty) isSpec() {}
func (Range) isSpec()          {}

// ParseSpec converts the raw configuration shape into a Spec
func ParseSpec(v any) (Spec, error) {
	switch s := v.(type) {
	case nil:
		return Fixed{Value: 0}, nil
	case float64:
		return Fixed{Value: s}, nil
	case float32:
		return Fixed{Value: float64(s)}, nil
	case int:
		return Fixed{Value: float64(s)}, nil
	case int64:
		return Fixed{Value: float64(s)}, nil
	case string:
		if s == "random" {
			return Random{}, nil
		}
		return nil, fmt.Errorf("offset: unknown spec string %q", s)
	case []any:
		if len(s) == 2 {
			op, opOK := s[0].(string)
			prop, propOK := s[1].(string)
			if opOK && propOK {
				switch op {
				case "get":
					return FromProperty{Property: prop}, nil
				case "hash":
					return HashOfProperty{Property: prop}, nil
				}
			}
		}
		return nil, fmt.Errorf("offset: unknown spec array %v", s)
	case map[string]any:
		min, minOK := expr.Number(s["min"])
		max, maxOK := expr.Number(s["max"])
		if !minOK || !maxOK {
			return nil, fmt.Errorf("offset: range spec wants numeric min and max, got %v", s)
		}
		return Range{Min: min, Max: max}, nil
	default:
		return nil, fmt.Errorf("offset: unsupported spec type %T", v)
	}
}

// Calculator computes offsets for one feature set
// Pure: no internal state mutates during calculation
type Calculator struct {
	Spec   Spec
	Seed   any
	Period float64
}

// NewCalculator builds a calculator; period must be positive
func NewCalculator(spec Spec, seed any, period float64) (*Calculator, error) {
	if spec == nil {
		return nil, fmt.Errorf("offset: nil spec")
	}
	if period <= 0 {
		return nil, fmt.Errorf("offset: period must be positive, got %v", period)
	}
	return &Calculator{Spec: spec, Seed: seed, Period: period}, nil
}

// Offsets returns one offset per feature, in input order
func (c *Calculator) Offsets(features []feature.Feature) []float64 {
	out := make([]float64, len(features))
	seed := seedHash(c.Seed)

	for i, f := range features {
		switch s := c.Spec.(type) {
		case Fixed:
			out[i] = s.Value
		case Random:
			out[i] = uniform01(mix(seed, uint64(i))) * c.Period
		case FromProperty:
			if v, ok := f.NumProperty(s.Property); ok {
				out[i] = v
			}
		case HashOfProperty:
			v, ok := f.Properties[s.Property]
			if !ok || v == nil {
				continue
			}
			out[i] = uniform01(hashString(stringify(v))) * c.Period
		case Range:
			out[i] = s.Min + uniform01(mix(seed, uint64(i)))*(s.Max-s.Min)
		}
	}
	return out
}

// OffsetsExpanded replicates each feature's offset across its vertex
// slots, positionally aligned with the render backend's per-vertex
// buffer layout
func (c *Calculator) OffsetsExpanded(features []feature.Feature, verticesPerFeature int) []float64 {
	if verticesPerFeature < 1 {
		verticesPerFeature = 1
	}
	scalar := c.Offsets(features)
	out := make([]float64, 0, len(scalar)*verticesPerFeature)
	for _, v := range scalar {
		for j := 0; j < verticesPerFeature; j++ {
			out = append(out, v)
		}
	}
	return out
}

// stringify renders property values the way the hash contract expects:
// integral floats print without a decimal point so 42 and 42.0 collide
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
