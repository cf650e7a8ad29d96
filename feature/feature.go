// Package feature defines the geospatial feature model shared by the
// animation runtime: a feature is an identifier, a property bag, and a
// geometry made of r2 vertex parts.
package feature

import (
	"github.com/golang/geo/r2"
)

// Kind discriminates geometry shapes
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindPolygon
	KindMultiLine
	KindMultiPolygon
)

// String returns the kind name for logging
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLine:
		return "Line"
	case KindPolygon:
		return "Polygon"
	case KindMultiLine:
		return "MultiLine"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Geometry holds vertex data as parts
// Point: one part with one vertex; Line: one part; Polygon: one ring per part;
// Multi variants: one part per constituent line/ring
type Geometry struct {
	Kind  Kind
	Parts [][]r2.Point
}

// VertexCount returns the total vertices across all parts
func (g Geometry) VertexCount() int {
	n := 0
	for _, p := range g.Parts {
		n += len(p)
	}
	return n
}

// Feature is a single geocoded entity
// ID may be nil; resolution then falls back per IDResolver
type Feature struct {
	ID         any
	Properties map[string]any
	Geometry   Geometry
}

// NumProperty reads a numeric property, false if absent or non-numeric
func (f Feature) NumProperty(name string) (float64, bool) {
	v, ok := f.Properties[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
