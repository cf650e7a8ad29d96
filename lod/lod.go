// Package lod applies zoom-dependent detail reduction: geometry
// simplification plus feature-count capping, bounded by an ordered table
// of quality tiers.
package lod

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/mapglow/feature"
)

// Level is one zoom-banded quality tier; static configuration, read-only
// at runtime
type Level struct {
	MinZoom        float64 `yaml:"minZoom"`
	MaxZoom        float64 `yaml:"maxZoom"`
	Simplification float64 `yaml:"simplification"`
	MaxFeatures    int     `yaml:"maxFeatures"`
	MinVertices    int     `yaml:"minVertices"`
}

// bypassLevel is served while reduction is disabled
var bypassLevel = Level{
	MinZoom:        math.Inf(-1),
	MaxZoom:        math.Inf(1),
	Simplification: 1.0,
	MaxFeatures:    math.MaxInt,
	MinVertices:    0,
}

// DefaultLevels is the stock tier table: coarse far out, full detail
// close in
func DefaultLevels() []Level {
	return []Level{
		{MinZoom: 0, MaxZoom: 6, Simplification: 0.2, MaxFeatures: 500, MinVertices: 4},
		{MinZoom: 6, MaxZoom: 10, Simplification: 0.5, MaxFeatures: 2000, MinVertices: 8},
		{MinZoom: 10, MaxZoom: 14, Simplification: 0.8, MaxFeatures: 5000, MinVertices: 16},
		{MinZoom: 14, MaxZoom: 22, Simplification: 1.0, MaxFeatures: 10000, MinVertices: 32},
	}
}

// Manager selects levels and applies reduction
type Manager struct {
	levels  []Level
	enabled bool
}

// NewManager validates the tier table: non-empty, ordered and
// non-overlapping over zoom, monotonically non-decreasing in
// simplification and max features. The only failure point is here;
// runtime lookups clamp instead of erroring.
func NewManager(levels []Level) (*Manager, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("lod: empty level table")
	}
	for i, lv := range levels {
		if lv.MaxZoom < lv.MinZoom {
			return nil, fmt.Errorf("lod: level %d has maxZoom %v below minZoom %v", i, lv.MaxZoom, lv.MinZoom)
		}
		if lv.Simplification < 0 || lv.Simplification > 1 {
			return nil, fmt.Errorf("lod: level %d simplification %v outside [0,1]", i, lv.Simplification)
		}
		if lv.MaxFeatures < 0 || lv.MinVertices < 0 {
			return nil, fmt.Errorf("lod: level %d has negative bounds", i)
		}
		if i == 0 {
			continue
		}
		prev := levels[i-1]
		if lv.MinZoom < prev.MaxZoom {
			return nil, fmt.Errorf("lod: level %d overlaps previous (minZoom %v < %v)", i, lv.MinZoom, prev.MaxZoom)
		}
		if lv.Simplification < prev.Simplification {
			return nil, fmt.Errorf("lod: level %d simplification decreases with zoom", i)
		}
		if lv.MaxFeatures < prev.MaxFeatures {
			return nil, fmt.Errorf("lod: level %d maxFeatures decreases with zoom", i)
		}
	}
	out := make([]Level, len(levels))
	copy(out, levels)
	return &Manager{levels: out, enabled: true}, nil
}

// LoadLevels parses a YAML tier table
func LoadLevels(data []byte) ([]Level, error) {
	var doc struct {
		Levels []Level `yaml:"levels"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("lod: parse level table: %w", err)
	}
	return doc.Levels, nil
}

// SetEnabled toggles all reduction; disabling is the debug escape hatch
// that bypasses the table regardless of zoom
func (m *Manager) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// Enabled reports whether reduction is active
func (m *Manager) Enabled() bool {
	return m.enabled
}

// LevelFor selects the tier containing the zoom; values outside the
// table clamp to the nearest boundary level
func (m *Manager) LevelFor(zoom float64) Level {
	if !m.enabled {
		return bypassLevel
	}
	if zoom < m.levels[0].MinZoom {
		return m.levels[0]
	}
	for _, lv := range m.levels {
		if zoom >= lv.MinZoom && zoom < lv.MaxZoom {
			return lv
		}
	}
	return m.levels[len(m.levels)-1]
}

// ApplyLOD composes geometry simplification with a stable-prefix
// truncation to the level's feature cap: the first N features in input
// order survive, with no importance weighting
func (m *Manager) ApplyLOD(features []feature.Feature, zoom float64) []feature.Feature {
	if !m.enabled {
		return features
	}
	lv := m.LevelFor(zoom)

	n := len(features)
	if lv.MaxFeatures > 0 && n > lv.MaxFeatures {
		n = lv.MaxFeatures
	}

	out := make([]feature.Feature, n)
	for i := 0; i < n; i++ {
		out[i] = features[i]
		out[i].Geometry = SimplifyGeometry(features[i].Geometry, lv)
	}
	return out
}
