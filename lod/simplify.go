package lod

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/mapglow/feature"
)

// SimplifyGeometry reduces vertex count proportional to
// (1 - simplification), never below the level's minimum. Points are never
// simplified; multi-part geometries are reduced per constituent ring or
// line.
func SimplifyGeometry(g feature.Geometry, lv Level) feature.Geometry {
	if g.Kind == feature.KindPoint || lv.Simplification >= 1 {
		return g
	}

	closed := g.Kind == feature.KindPolygon || g.Kind == feature.KindMultiPolygon
	out := feature.Geometry{Kind: g.Kind, Parts: make([][]r2.Point, len(g.Parts))}
	for i, part := range g.Parts {
		out.Parts[i] = simplifyPart(part, lv, closed)
	}
	return out
}

// simplifyPart picks evenly strided vertices down to the target count.
// Closed rings keep their closing vertex so the ring stays welded.
func simplifyPart(part []r2.Point, lv Level, closed bool) []r2.Point {
	n := len(part)
	target := int(math.Round(float64(n) * lv.Simplification))
	if target < lv.MinVertices {
		target = lv.MinVertices
	}
	if closed && target < 4 {
		// triangle plus closing vertex is the smallest ring
		target = 4
	}
	if target >= n {
		return part
	}

	out := make([]r2.Point, 0, target)
	if closed {
		// stride over the open portion, then re-close
		open := n - 1
		keep := target - 1
		for i := 0; i < keep; i++ {
			idx := i * open / keep
			out = append(out, part[idx])
		}
		out = append(out, part[n-1])
		return out
	}

	// endpoints always survive for open lines
	for i := 0; i < target-1; i++ {
		idx := i * (n - 1) / (target - 1)
		out = append(out, part[idx])
	}
	out = append(out, part[n-1])
	return out
}
