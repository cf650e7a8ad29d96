// Package animstate owns per-feature play/pause/reset state and produces
// GPU-ready buffer arrays with dirty tracking. Single-threaded by
// contract: the owning frame loop must not interleave mutation and buffer
// generation from concurrent contexts.
package animstate

import (
	"log"

	"github.com/lixenwraith/mapglow/feature"
)

// Snapshot is one feature's animation state as seen by callers
type Snapshot struct {
	Playing   bool
	LocalTime float64
	PlayCount int
}

// state is the internal mutable record; once marks a pending play-once
// that pauses after the next completed cycle
type state struct {
	playing   bool
	localTime float64
	playCount int
	once      bool
}

// Options configures a Manager
type Options struct {
	// Resolver supplies the id-resolution order shared with the
	// interaction handler
	Resolver feature.IDResolver
	// InitialPlaying starts rebuilt features playing instead of paused
	InitialPlaying bool
	// Logf receives diagnostics, stdlib log by default
	Logf func(format string, args ...any)
}

// Manager is the per-feature animation state machine.
// States are {playing, paused}; a conceptual stop is paused plus reset
// fields. Unknown ids no-op so in-flight interaction events tolerate a
// racing data refresh.
type Manager struct {
	resolver       feature.IDResolver
	initialPlaying bool
	logf           func(format string, args ...any)

	// order preserves the feature iteration order used at rebuild; the
	// buffer contract at the render boundary is positional, not id-keyed
	order  []any
	states map[any]*state

	lastGlobalTime float64
	dirty          bool
}

// NewManager creates an empty manager
func NewManager(opts Options) *Manager {
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Manager{
		resolver:       opts.Resolver,
		initialPlaying: opts.InitialPlaying,
		logf:           logf,
		states:         make(map[any]*state),
	}
}

// InitializeFromFeatures performs a full rebuild of the per-feature map.
// Any previously recorded play/pause/time state is discarded: per-feature
// state deliberately does not survive a feature-set refresh, since
// identities may have changed wholesale.
func (m *Manager) InitializeFromFeatures(features []feature.Feature) {
	m.order = make([]any, 0, len(features))
	m.states = make(map[any]*state, len(features))

	for i, f := range features {
		id := m.resolver.Resolve(f, i)
		if _, dup := m.states[id]; dup {
			m.logf("animstate: duplicate feature id %v at index %d, keeping first", id, i)
			continue
		}
		m.order = append(m.order, id)
		m.states[id] = &state{playing: m.initialPlaying}
	}
	m.dirty = true
}

// Count returns the number of tracked features
func (m *Manager) Count() int {
	return len(m.order)
}

// State returns a feature's current state
func (m *Manager) State(id any) (Snapshot, bool) {
	st, ok := m.states[id]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{Playing: st.playing, LocalTime: st.localTime, PlayCount: st.playCount}, true
}

// Play starts a paused feature; no-op if already playing or unknown
func (m *Manager) Play(id any) {
	st, ok := m.states[id]
	if !ok || st.playing {
		return
	}
	st.playing = true
	m.dirty = true
}

// Pause freezes a playing feature. LocalTime freezes at the last value
// observed by Tick, not at call time, so repeated pauses between ticks do
// not move it; features paused within the same frame record identical
// times.
func (m *Manager) Pause(id any) {
	st, ok := m.states[id]
	if !ok || !st.playing {
		return
	}
	st.playing = false
	st.localTime = m.lastGlobalTime
	m.dirty = true
}

// Reset returns a feature to paused with zeroed time and play count
func (m *Manager) Reset(id any) {
	st, ok := m.states[id]
	if !ok {
		return
	}
	st.playing = false
	st.localTime = 0
	st.playCount = 0
	st.once = false
	m.dirty = true
}

// Toggle delegates to Play or Pause by current state
func (m *Manager) Toggle(id any) {
	st, ok := m.states[id]
	if !ok {
		return
	}
	if st.playing {
		m.Pause(id)
	} else {
		m.Play(id)
	}
}

// PlayOnce plays a feature until its next completed cycle, then pauses.
// Cycle completion is reported by the uniform-computing caller through
// CompleteCycle.
func (m *Manager) PlayOnce(id any) {
	st, ok := m.states[id]
	if !ok {
		return
	}
	st.once = true
	if !st.playing {
		st.playing = true
	}
	m.dirty = true
}

// CompleteCycle records one finished animation period for a feature and
// settles any pending play-once
func (m *Manager) CompleteCycle(id any) {
	st, ok := m.states[id]
	if !ok {
		return
	}
	st.playCount++
	if st.once {
		st.once = false
		st.playing = false
		st.localTime = m.lastGlobalTime
	}
	m.dirty = true
}

// PlayAll starts every paused feature
func (m *Manager) PlayAll() {
	for _, id := range m.order {
		m.Play(id)
	}
}

// PauseAll freezes every playing feature
func (m *Manager) PauseAll() {
	for _, id := range m.order {
		m.Pause(id)
	}
}

// ResetAll returns every feature to paused with zeroed fields
func (m *Manager) ResetAll() {
	for _, id := range m.order {
		m.Reset(id)
	}
}

// Tick records the latest global time for subsequent pause freezing.
// It does not advance any feature's local time; advancing is driven by
// whichever logic computes shader uniforms.
func (m *Manager) Tick(globalTime, deltaTime float64) {
	m.lastGlobalTime = globalTime
}

// GenerateBufferData returns two parallel flat arrays sized
// featureCount × verticesPerFeature: isPlaying as 0/1 and localTime, each
// feature's values replicated across its vertex slots in rebuild order.
// The result reflects every mutation applied before the call.
func (m *Manager) GenerateBufferData(verticesPerFeature int) (isPlaying, localTime []float64) {
	if verticesPerFeature < 1 {
		verticesPerFeature = 1
	}
	n := len(m.order) * verticesPerFeature
	isPlaying = make([]float64, 0, n)
	localTime = make([]float64, 0, n)

	for _, id := range m.order {
		st := m.states[id]
		p := 0.0
		if st.playing {
			p = 1.0
		}
		for j := 0; j < verticesPerFeature; j++ {
			isPlaying = append(isPlaying, p)
			localTime = append(localTime, st.localTime)
		}
	}
	return isPlaying, localTime
}

// IsDirty reports whether any mutation occurred since the last
// acknowledgment, letting the consumer skip redundant GPU uploads
func (m *Manager) IsDirty() bool {
	return m.dirty
}

// ClearDirty acknowledges the current state as consumed
func (m *Manager) ClearDirty() {
	m.dirty = false
}
