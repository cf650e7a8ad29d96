// Package mapglow is an animated-state runtime for visual effects over
// geospatial features: one clock multiplexed across many shader
// instances, per-feature play/pause state with dirty-tracked buffer
// generation, deterministic time desynchronization, pointer-driven
// interaction, adaptive level-of-detail reduction, and frame metrics.
//
// The runtime issues no graphics calls. Each frame the rendering backend
// checks the state manager's dirty flag before consuming buffer data and
// owns uniform application entirely.
package mapglow

import (
	"fmt"
	"log"

	"github.com/benbjohnson/clock"

	"github.com/lixenwraith/mapglow/animstate"
	"github.com/lixenwraith/mapglow/config"
	"github.com/lixenwraith/mapglow/feature"
	"github.com/lixenwraith/mapglow/lod"
	"github.com/lixenwraith/mapglow/loop"
	"github.com/lixenwraith/mapglow/metrics"
	"github.com/lixenwraith/mapglow/offset"
)

// EffectDefinition references one effect from the (external) catalog.
// Shader source and uniform formulas live with the rendering backend;
// the runtime only carries the reference and its configuration surface.
type EffectDefinition struct {
	Name     string
	Defaults map[string]any
	Schema   config.Schema
}

// Instance is one active effect bound to one render layer
type Instance struct {
	ID         string
	Definition *EffectDefinition
	Config     map[string]any
	Speed      float64
	Playing    bool
	LocalTime  float64

	States  *animstate.Manager
	Offsets []float64

	features []feature.Feature
}

// Features returns the (possibly LOD-reduced) feature list this instance
// animates
func (in *Instance) Features() []feature.Feature {
	return in.features
}

// Runtime wires the components into one frame-driven pipeline.
// Everything here runs on the host's frame callback; no internal
// goroutines, no locking.
type Runtime struct {
	Loop    *loop.Loop
	Metrics *metrics.Collector
	LOD     *lod.Manager

	resolver  feature.IDResolver
	logf      func(format string, args ...any)
	instances map[string]*Instance
}

// RuntimeOptions configures a Runtime
type RuntimeOptions struct {
	Clock     clock.Clock
	Resolver  feature.IDResolver
	LODLevels []lod.Level
	Metrics   metrics.Options
	Logf      func(format string, args ...any)
}

// NewRuntime builds the component graph; the only failure is an invalid
// LOD table
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	levels := opts.LODLevels
	if levels == nil {
		levels = lod.DefaultLevels()
	}
	lodMgr, err := lod.NewManager(levels)
	if err != nil {
		return nil, err
	}
	mopts := opts.Metrics
	if mopts.Logf == nil {
		mopts.Logf = logf
	}
	return &Runtime{
		Loop:      loop.New(clk, logf),
		Metrics:   metrics.NewCollector(clk, mopts),
		LOD:       lodMgr,
		resolver:  opts.Resolver,
		logf:      logf,
		instances: make(map[string]*Instance),
	}, nil
}

// Register creates a shader instance: resolves and validates its
// configuration (validation errors are logged and returned but never
// block registration), applies LOD for the given zoom, computes
// per-feature time offsets, and initializes animation state. The
// instance's per-frame update is registered with the loop until
// Unregister.
func (r *Runtime) Register(id string, def *EffectDefinition, userConfig map[string]any, features []feature.Feature, zoom float64) (*Instance, []config.FieldError, error) {
	if def == nil {
		return nil, nil, fmt.Errorf("mapglow: nil effect definition")
	}
	if _, exists := r.instances[id]; exists {
		return nil, nil, fmt.Errorf("mapglow: instance %q already registered", id)
	}

	cfg := config.Resolve(def.Defaults, userConfig)
	errs := config.Validate(cfg, def.Schema)
	for _, e := range errs {
		r.logf("mapglow: %s: %v", id, e)
	}

	reduced := r.LOD.ApplyLOD(features, zoom)

	spec, err := offset.ParseSpec(cfg["timeOffset"])
	if err != nil {
		r.logf("mapglow: %s: %v, using fixed 0", id, err)
		spec = offset.Fixed{}
	}
	period := 1.0
	if p, ok := numConfig(cfg, "period"); ok && p > 0 {
		period = p
	}
	calc, err := offset.NewCalculator(spec, cfg["seed"], period)
	if err != nil {
		return nil, errs, err
	}

	in := &Instance{
		ID:         id,
		Definition: def,
		Config:     cfg,
		Speed:      1,
		Playing:    true,
		States: animstate.NewManager(animstate.Options{
			Resolver:       r.resolver,
			InitialPlaying: initialPlaying(cfg),
			Logf:           r.logf,
		}),
		Offsets:  calc.Offsets(reduced),
		features: reduced,
	}
	if s, ok := numConfig(cfg, "speed"); ok && s >= 0 {
		in.Speed = s
	}
	in.States.InitializeFromFeatures(reduced)

	r.instances[id] = in
	r.Loop.AddShader(id, in.update)
	r.Metrics.SetActiveShaders(len(r.instances))
	return in, errs, nil
}

// Unregister destroys an instance; its callback stops immediately
func (r *Runtime) Unregister(id string) {
	if _, exists := r.instances[id]; !exists {
		return
	}
	r.Loop.RemoveShader(id)
	delete(r.instances, id)
	r.Metrics.SetActiveShaders(len(r.instances))
}

// Instance looks up a registered instance
func (r *Runtime) Instance(id string) (*Instance, bool) {
	in, ok := r.instances[id]
	return in, ok
}

// Frame brackets one render cycle: metrics begin, loop advance, metrics
// end against the target budget
func (r *Runtime) Frame(targetFrameTimeMs float64) {
	r.Metrics.BeginFrame()
	r.Loop.Advance()
	total := 0
	for _, in := range r.instances {
		total += len(in.features)
	}
	r.Metrics.SetFeaturesRendered(total)
	r.Metrics.EndFrame(targetFrameTimeMs)
}

// update is the instance's per-frame callback: advances the instance's
// own local time by its speed multiplier and forwards the global tick to
// the state manager for pause freezing
func (in *Instance) update(globalTime, deltaTime float64) {
	if in.Playing {
		in.LocalTime += deltaTime * in.Speed
	}
	in.States.Tick(globalTime, deltaTime)
}

func initialPlaying(cfg map[string]any) bool {
	s, ok := cfg["initialState"].(string)
	if !ok {
		return true
	}
	return s != "paused"
}

func numConfig(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
