// Package metrics samples frame timing into a bounded window and emits
// throttled performance warnings. Collection is gated by an enabled flag
// so the disabled path costs nothing on the frame budget.
package metrics

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	defaultSampleWindow = 60
	defaultCooldown     = 5 * time.Second
	// droppedFactor marks a frame dropped when it exceeds this multiple
	// of the target frame time
	droppedFactor = 1.5
)

// Snapshot is a point-in-time performance view, recomputed from rolling
// counters on each call
type Snapshot struct {
	FramesRendered   uint64
	AverageFrameTime float64 // ms, mean of the sample window
	PeakFrameTime    float64 // ms, running max
	DroppedFrames    uint64
	CurrentFPS       float64 // 1000/averageFrameTime, one decimal
	AverageFPS       float64 // frames/uptime, one decimal
	ActiveShaders    int
	FeaturesRendered int
	HeapMB           float64 // best effort
	Uptime           time.Duration
}

// Handler receives emitted warnings; panics are caught and logged so a
// failing handler cannot interrupt the emitting path
type Handler func(Warning)

// Options configures a Collector
type Options struct {
	// SampleWindow bounds the frame-time ring buffer, default 60
	SampleWindow int
	// Cooldown throttles each warning type independently, default 5s
	Cooldown time.Duration
	// Thresholds for the four warning conditions
	Thresholds Thresholds
	// Logf receives handler-panic diagnostics, stdlib log by default
	Logf func(format string, args ...any)
}

// Collector brackets render cycles and maintains rolling frame statistics
type Collector struct {
	clk        clock.Clock
	logf       func(format string, args ...any)
	enabled    bool
	thresholds Thresholds
	cooldown   time.Duration

	// frame-time ring buffer, milliseconds
	samples     []float64
	sampleIdx   int
	sampleCount int

	framesRendered uint64
	peakFrameTime  float64
	droppedFrames  uint64

	startTime  time.Time
	frameStart time.Time
	inFrame    bool

	activeShaders    int
	featuresRendered int
	featuresOverCap  bool

	handlers []Handler
	lastWarn map[WarningType]time.Time
}

// NewCollector creates an enabled collector on the given clock
func NewCollector(clk clock.Clock, opts Options) *Collector {
	window := opts.SampleWindow
	if window <= 0 {
		window = defaultSampleWindow
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	th := opts.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Collector{
		clk:        clk,
		logf:       logf,
		enabled:    true,
		thresholds: th,
		cooldown:   cooldown,
		samples:    make([]float64, window),
		startTime:  clk.Now(),
		lastWarn:   make(map[WarningType]time.Time),
	}
}

// OnWarning registers a warning handler
func (c *Collector) OnWarning(h Handler) {
	if h != nil {
		c.handlers = append(c.handlers, h)
	}
}

// SetEnabled gates all collection; re-enabling resets every counter so
// stale samples cannot skew the first window
func (c *Collector) SetEnabled(enabled bool) {
	if enabled == c.enabled {
		return
	}
	c.enabled = enabled
	if enabled {
		c.reset()
	}
}

// Enabled reports whether collection is active
func (c *Collector) Enabled() bool {
	return c.enabled
}

func (c *Collector) reset() {
	for i := range c.samples {
		c.samples[i] = 0
	}
	c.sampleIdx = 0
	c.sampleCount = 0
	c.framesRendered = 0
	c.peakFrameTime = 0
	c.droppedFrames = 0
	c.startTime = c.clk.Now()
	c.inFrame = false
	c.featuresOverCap = false
	c.lastWarn = make(map[WarningType]time.Time)
}

// BeginFrame marks the start of one render cycle
func (c *Collector) BeginFrame() {
	if !c.enabled {
		return
	}
	c.frameStart = c.clk.Now()
	c.inFrame = true
}

// EndFrame closes the render cycle, samples its wall-clock duration, and
// evaluates the per-frame warning conditions. targetFrameTimeMs is the
// budget a frame is judged against for drop counting.
func (c *Collector) EndFrame(targetFrameTimeMs float64) {
	if !c.enabled || !c.inFrame {
		return
	}
	c.inFrame = false
	now := c.clk.Now()
	elapsedMs := float64(now.Sub(c.frameStart)) / float64(time.Millisecond)

	c.samples[c.sampleIdx] = elapsedMs
	c.sampleIdx = (c.sampleIdx + 1) % len(c.samples)
	if c.sampleCount < len(c.samples) {
		c.sampleCount++
	}

	c.framesRendered++
	if elapsedMs > c.peakFrameTime {
		c.peakFrameTime = elapsedMs
	}
	if targetFrameTimeMs > 0 && elapsedMs > targetFrameTimeMs*droppedFactor {
		c.droppedFrames++
	}

	c.checkFrameWarnings(elapsedMs)
}

// SetActiveShaders records the current shader-instance count for
// snapshots
func (c *Collector) SetActiveShaders(n int) {
	c.activeShaders = n
}

// SetFeaturesRendered records the rendered feature count and fires
// too_many_features on the rising edge only: re-crossing from above does
// not re-fire until the count first falls back under the threshold
func (c *Collector) SetFeaturesRendered(n int) {
	c.featuresRendered = n
	if !c.enabled {
		return
	}
	over := c.thresholds.MaxFeatures > 0 && n > c.thresholds.MaxFeatures
	if over && !c.featuresOverCap {
		c.emit(Warning{
			Type:       WarnTooManyFeatures,
			Message:    fmt.Sprintf("rendering %d features, above the %d cap", n, c.thresholds.MaxFeatures),
			Value:      float64(n),
			Threshold:  float64(c.thresholds.MaxFeatures),
			Suggestion: "enable LOD reduction or lower the feature cap",
		})
	}
	c.featuresOverCap = over
}

// Snapshot derives the current metrics from the rolling counters
func (c *Collector) Snapshot() Snapshot {
	avg := c.averageFrameTime()
	uptime := c.clk.Now().Sub(c.startTime)

	currentFPS := 0.0
	if avg > 0 {
		currentFPS = round1(1000 / avg)
	}
	averageFPS := 0.0
	if secs := uptime.Seconds(); secs > 0 {
		averageFPS = round1(float64(c.framesRendered) / secs)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Snapshot{
		FramesRendered:   c.framesRendered,
		AverageFrameTime: avg,
		PeakFrameTime:    c.peakFrameTime,
		DroppedFrames:    c.droppedFrames,
		CurrentFPS:       currentFPS,
		AverageFPS:       averageFPS,
		ActiveShaders:    c.activeShaders,
		FeaturesRendered: c.featuresRendered,
		HeapMB:           float64(mem.Alloc) / 1024 / 1024,
		Uptime:           uptime,
	}
}

func (c *Collector) averageFrameTime() float64 {
	if c.sampleCount == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < c.sampleCount; i++ {
		sum += c.samples[i]
	}
	return sum / float64(c.sampleCount)
}

func (c *Collector) checkFrameWarnings(elapsedMs float64) {
	th := c.thresholds

	if th.MaxFrameTimeMs > 0 && elapsedMs > th.MaxFrameTimeMs {
		c.emit(Warning{
			Type:       WarnHighFrameTime,
			Message:    fmt.Sprintf("frame took %.1f ms, budget %.1f ms", elapsedMs, th.MaxFrameTimeMs),
			Value:      elapsedMs,
			Threshold:  th.MaxFrameTimeMs,
			Suggestion: "reduce feature count or simplify active effects",
		})
	}

	// low_fps only judges a full window; a cold window reads artificially
	// fast or slow
	if th.MinFPS > 0 && c.sampleCount == len(c.samples) {
		if avg := c.averageFrameTime(); avg > 0 {
			fps := 1000 / avg
			if fps < th.MinFPS {
				c.emit(Warning{
					Type:       WarnLowFPS,
					Message:    fmt.Sprintf("averaging %.1f FPS, below %.1f", fps, th.MinFPS),
					Value:      round1(fps),
					Threshold:  th.MinFPS,
					Suggestion: "lower the LOD zoom bands or the global speed",
				})
			}
		}
	}

	if th.DroppedRatio > 0 && c.framesRendered >= uint64(th.MinFramesForRatio) && th.MinFramesForRatio > 0 {
		ratio := float64(c.droppedFrames) / float64(c.framesRendered)
		if ratio > th.DroppedRatio {
			c.emit(Warning{
				Type:       WarnDroppedFrames,
				Message:    fmt.Sprintf("dropped %.1f%% of frames", ratio*100),
				Value:      ratio,
				Threshold:  th.DroppedRatio,
				Suggestion: "profile shader update callbacks for per-frame spikes",
			})
		}
	}
}

// emit delivers a warning to every handler, bounded per type by the
// cooldown
func (c *Collector) emit(w Warning) {
	now := c.clk.Now()
	if last, ok := c.lastWarn[w.Type]; ok && now.Sub(last) < c.cooldown {
		return
	}
	c.lastWarn[w.Type] = now
	w.Timestamp = now

	for _, h := range c.handlers {
		c.deliver(h, w)
	}
}

func (c *Collector) deliver(h Handler, w Warning) {
	defer func() {
		if r := recover(); r != nil {
			c.logf("metrics: warning handler panic for %s: %v", w.Type, r)
		}
	}()
	h(w)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
