// Package loop multiplexes one timing source across many shader
// instances. The loop is cooperative: the host's per-frame callback
// abstraction calls Advance once per frame, and the loop fans out to
// every registered update callback with the accumulated global time and
// the speed-scaled delta.
package loop

import (
	"log"
	"time"

	"github.com/benbjohnson/clock"
)

// UpdateFunc is one shader instance's per-frame callback
type UpdateFunc func(globalTime, deltaTime float64)

// Loop is the single global clock and scheduler.
// Single-threaded: Advance, registration, and control methods must all be
// called from the frame-driven call sequence.
type Loop struct {
	clk  clock.Clock
	logf func(format string, args ...any)

	running bool
	speed   float64
	time    float64
	last    time.Time

	// order keeps registration order so callback invocation is stable
	// and deterministic under test
	order     []string
	callbacks map[string]UpdateFunc
}

// New creates a stopped loop at speed 1 on the given clock; pass
// clock.New() for wall time or clock.NewMock() in tests
func New(clk clock.Clock, logf func(format string, args ...any)) *Loop {
	if logf == nil {
		logf = log.Printf
	}
	return &Loop{
		clk:       clk,
		logf:      logf,
		speed:     1,
		callbacks: make(map[string]UpdateFunc),
	}
}

// Start begins ticking; idempotent. Time does not advance while stopped,
// so the delta baseline resets to now.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.last = l.clk.Now()
}

// Stop halts ticking; idempotent
func (l *Loop) Stop() {
	l.running = false
}

// IsRunning reports current state
func (l *Loop) IsRunning() bool {
	return l.running
}

// SetGlobalSpeed scales the delta passed to all callbacks; negative
// speed clamps to zero
func (l *Loop) SetGlobalSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	l.speed = speed
}

// GlobalSpeed returns the current speed multiplier
func (l *Loop) GlobalSpeed() float64 {
	return l.speed
}

// Time returns accumulated global time in seconds, monotonically
// increasing while running
func (l *Loop) Time() float64 {
	return l.time
}

// AddShader registers a per-frame callback under an id, replacing any
// existing registration for that id
func (l *Loop) AddShader(id string, fn UpdateFunc) {
	if fn == nil {
		return
	}
	if _, exists := l.callbacks[id]; !exists {
		l.order = append(l.order, id)
	}
	l.callbacks[id] = fn
}

// RemoveShader unregisters immediately: no further invocations occur
// after return
func (l *Loop) RemoveShader(id string) {
	if _, exists := l.callbacks[id]; !exists {
		return
	}
	delete(l.callbacks, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// ShaderCount returns the number of registered callbacks
func (l *Loop) ShaderCount() int {
	return len(l.callbacks)
}

// Advance performs one tick: computes the speed-scaled delta since the
// previous tick, accumulates global time, and invokes every registered
// callback exactly once in registration order. No-op while stopped.
func (l *Loop) Advance() {
	if !l.running {
		return
	}
	now := l.clk.Now()
	dt := now.Sub(l.last).Seconds() * l.speed
	l.last = now
	if dt < 0 {
		dt = 0
	}
	l.time += dt

	// snapshot the order so a callback that removes itself or a peer
	// cannot skip entries this frame; removed callbacks are still
	// suppressed by the map lookup
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	for _, id := range ids {
		fn, ok := l.callbacks[id]
		if !ok {
			continue
		}
		l.invoke(id, fn, dt)
	}
}

// invoke isolates a panicking callback so the rest of the frame and all
// subsequent frames are unaffected
func (l *Loop) invoke(id string, fn UpdateFunc, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			l.logf("loop: shader %q update panic: %v", id, r)
		}
	}()
	fn(l.time, dt)
}
