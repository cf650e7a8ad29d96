package mapglow

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/lixenwraith/mapglow/config"
	"github.com/lixenwraith/mapglow/feature"
	"github.com/lixenwraith/mapglow/lod"
)

func quietLogf(format string, args ...any) {}

func newTestRuntime(t *testing.T) (*Runtime, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	rt, err := NewRuntime(RuntimeOptions{
		Clock:    mock,
		Resolver: feature.IDResolver{Property: "id"},
		Logf:     quietLogf,
	})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt, mock
}

func pointFeatures(ids ...string) []feature.Feature {
	out := make([]feature.Feature, len(ids))
	for i, id := range ids {
		out[i] = feature.Feature{ID: id, Properties: map[string]any{"id": id}}
	}
	return out
}

func pulseDefinition() *EffectDefinition {
	return &EffectDefinition{
		Name: "pulse",
		Defaults: map[string]any{
			"timeOffset":   []any{"hash", "id"},
			"period":       2.0,
			"initialState": "paused",
			"speed":        1.0,
		},
		Schema: config.Schema{
			"period": {Type: config.TypeNumber},
			"speed":  {Type: config.TypeNumber},
		},
	}
}

func TestRegisterBuildsInstance(t *testing.T) {
	rt, _ := newTestRuntime(t)

	in, errs, err := rt.Register("layer1", pulseDefinition(), nil, pointFeatures("a", "b", "c"), 12)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	if in.States.Count() != 3 {
		t.Errorf("state count = %d, want 3", in.States.Count())
	}
	if len(in.Offsets) != 3 {
		t.Errorf("offsets = %d, want 3", len(in.Offsets))
	}
	seen := map[float64]bool{}
	for _, o := range in.Offsets {
		if o < 0 || o >= 2.0 {
			t.Errorf("offset %v outside [0, 2)", o)
		}
		seen[o] = true
	}
	if len(seen) != 3 {
		t.Errorf("hash offsets not distinct: %v", in.Offsets)
	}
	if rt.Loop.ShaderCount() != 1 {
		t.Errorf("loop has %d shaders, want 1", rt.Loop.ShaderCount())
	}
}

func TestRegisterValidationWarnsButProceeds(t *testing.T) {
	rt, _ := newTestRuntime(t)
	def := pulseDefinition()

	in, errs, err := rt.Register("layer1", def, map[string]any{"speed": "fast"}, pointFeatures("a"), 12)
	if err != nil {
		t.Fatalf("Register failed on validation error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d validation errors, want 1", len(errs))
	}
	if in == nil {
		t.Fatal("registration blocked by validation")
	}
}

func TestRegisterRejectsDuplicateAndNil(t *testing.T) {
	rt, _ := newTestRuntime(t)

	if _, _, err := rt.Register("x", nil, nil, nil, 12); err == nil {
		t.Error("nil definition accepted")
	}

	if _, _, err := rt.Register("x", pulseDefinition(), nil, pointFeatures("a"), 12); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := rt.Register("x", pulseDefinition(), nil, pointFeatures("a"), 12); err == nil {
		t.Error("duplicate id accepted")
	}
}

func TestUnregisterStopsUpdates(t *testing.T) {
	rt, mock := newTestRuntime(t)

	in, _, err := rt.Register("layer1", pulseDefinition(), nil, pointFeatures("a"), 12)
	if err != nil {
		t.Fatal(err)
	}
	rt.Loop.Start()

	mock.Add(100 * time.Millisecond)
	rt.Frame(16.7)
	afterFirst := in.LocalTime
	if afterFirst <= 0 {
		t.Fatalf("instance local time did not advance: %v", afterFirst)
	}

	rt.Unregister("layer1")
	mock.Add(100 * time.Millisecond)
	rt.Frame(16.7)

	if in.LocalTime != afterFirst {
		t.Errorf("unregistered instance still updated: %v -> %v", afterFirst, in.LocalTime)
	}
	if rt.Loop.ShaderCount() != 0 {
		t.Errorf("loop still holds %d shaders", rt.Loop.ShaderCount())
	}
}

func TestInstanceSpeedMultiplier(t *testing.T) {
	rt, mock := newTestRuntime(t)

	def := pulseDefinition()
	in, _, err := rt.Register("layer1", def, map[string]any{"speed": 2.0}, pointFeatures("a"), 12)
	if err != nil {
		t.Fatal(err)
	}
	rt.Loop.Start()

	mock.Add(time.Second)
	rt.Frame(16.7)

	// 1s global delta at 2x instance speed
	if in.LocalTime < 1.99 || in.LocalTime > 2.01 {
		t.Errorf("LocalTime = %v, want ~2.0", in.LocalTime)
	}
}

func TestFrameBracketsMetrics(t *testing.T) {
	rt, mock := newTestRuntime(t)

	if _, _, err := rt.Register("layer1", pulseDefinition(), nil, pointFeatures("a", "b"), 12); err != nil {
		t.Fatal(err)
	}
	rt.Loop.Start()

	mock.Add(16 * time.Millisecond)
	rt.Frame(16.7)

	snap := rt.Metrics.Snapshot()
	if snap.FramesRendered != 1 {
		t.Errorf("FramesRendered = %d, want 1", snap.FramesRendered)
	}
	if snap.ActiveShaders != 1 {
		t.Errorf("ActiveShaders = %d, want 1", snap.ActiveShaders)
	}
	if snap.FeaturesRendered != 2 {
		t.Errorf("FeaturesRendered = %d, want 2", snap.FeaturesRendered)
	}
}

func TestRegisterAppliesLOD(t *testing.T) {
	mock := clock.NewMock()
	rt, err := NewRuntime(RuntimeOptions{
		Clock:    mock,
		Resolver: feature.IDResolver{Property: "id"},
		LODLevels: []lod.Level{
			{MinZoom: 0, MaxZoom: 22, Simplification: 1, MaxFeatures: 2},
		},
		Logf: quietLogf,
	})
	if err != nil {
		t.Fatal(err)
	}

	in, _, err := rt.Register("layer1", pulseDefinition(), nil, pointFeatures("a", "b", "c", "d"), 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(in.Features()) != 2 {
		t.Errorf("LOD kept %d features, want 2", len(in.Features()))
	}
	if in.States.Count() != 2 {
		t.Errorf("state count = %d, want 2 (offsets and state follow the reduced set)", in.States.Count())
	}
	if len(in.Offsets) != 2 {
		t.Errorf("offsets = %d, want 2", len(in.Offsets))
	}
}

func TestBadOffsetSpecFallsBackToFixed(t *testing.T) {
	rt, _ := newTestRuntime(t)

	def := pulseDefinition()
	def.Defaults = map[string]any{"timeOffset": "sometimes", "period": 2.0}

	in, _, err := rt.Register("layer1", def, nil, pointFeatures("a", "b"), 12)
	if err != nil {
		t.Fatalf("bad offset spec must degrade, not fail: %v", err)
	}
	for _, o := range in.Offsets {
		if o != 0 {
			t.Errorf("fallback offset = %v, want 0", o)
		}
	}
}
