// Package interact translates host pointer events into animation-state
// mutations for one render layer. The host event plumbing stays behind
// the PointerSource interface; the handler only needs feature id and
// properties out of each event.
package interact

import (
	"log"

	"github.com/lixenwraith/mapglow/animstate"
	"github.com/lixenwraith/mapglow/feature"
)

// Action is a fixed state-manager mutation bound to an interaction
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionPlay
	ActionPause
	ActionReset
	ActionPlayOnce
)

// String returns the action name for logging
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionToggle:
		return "toggle"
	case ActionPlay:
		return "play"
	case ActionPause:
		return "pause"
	case ActionReset:
		return "reset"
	case ActionPlayOnce:
		return "playOnce"
	default:
		return "unknown"
	}
}

// PointerEvent is the host-independent shape of a pointer notification.
// Hover-leave events arrive untagged, without any PointerEvent.
type PointerEvent struct {
	FeatureID  any
	Properties map[string]any
}

// PointerSource abstracts the host's per-layer pointer event plumbing.
// Each attach returns the matching detach so teardown stays symmetric.
type PointerSource interface {
	OnClick(layer string, fn func(PointerEvent)) (detach func())
	OnHoverEnter(layer string, fn func(PointerEvent)) (detach func())
	OnHoverLeave(layer string, fn func()) (detach func())
}

// Callback receives the feature identity and its current state after an
// interaction resolves
type Callback func(ev PointerEvent, st animstate.Snapshot)

// Config selects which interactions to attach and what they do.
// A zero action with a nil callback leaves that interaction unattached.
type Config struct {
	ClickAction   Action
	ClickCallback Callback
	HoverAction   Action
	HoverCallback Callback
}

// Handler binds one render layer's pointer events to a state manager
type Handler struct {
	layer    string
	manager  *animstate.Manager
	resolver feature.IDResolver
	cfg      Config
	logf     func(format string, args ...any)

	// hovered tracks the feature under the pointer so an untagged leave
	// can still resolve; hoveredSet distinguishes a nil id from nothing
	hovered    any
	hoveredSet bool

	detachers []func()
	disposed  bool
}

// NewHandler attaches exactly the listeners the config calls for.
// Click-only configuration attaches no hover listeners and vice versa.
func NewHandler(layer string, source PointerSource, manager *animstate.Manager, resolver feature.IDResolver, cfg Config, logf func(format string, args ...any)) *Handler {
	if logf == nil {
		logf = log.Printf
	}
	h := &Handler{
		layer:    layer,
		manager:  manager,
		resolver: resolver,
		cfg:      cfg,
		logf:     logf,
	}

	if cfg.ClickAction != ActionNone || cfg.ClickCallback != nil {
		h.detachers = append(h.detachers, source.OnClick(layer, h.handleClick))
	}
	if cfg.HoverAction != ActionNone || cfg.HoverCallback != nil {
		h.detachers = append(h.detachers, source.OnHoverEnter(layer, h.handleHoverEnter))
		h.detachers = append(h.detachers, source.OnHoverLeave(layer, h.handleHoverLeave))
	}
	return h
}

// Layer returns the bound layer name
func (h *Handler) Layer() string {
	return h.layer
}

// Dispose removes exactly the listeners that were attached; idempotent
func (h *Handler) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true
	for _, detach := range h.detachers {
		detach()
	}
	h.detachers = nil
	h.hoveredSet = false
}

func (h *Handler) handleClick(ev PointerEvent) {
	if h.disposed {
		return
	}
	id := h.resolver.ResolveProperties(ev.FeatureID, ev.Properties)
	h.apply(id, h.cfg.ClickAction)
	h.invoke(h.cfg.ClickCallback, ev, id)
}

func (h *Handler) handleHoverEnter(ev PointerEvent) {
	if h.disposed {
		return
	}
	id := h.resolver.ResolveProperties(ev.FeatureID, ev.Properties)
	h.hovered = id
	h.hoveredSet = true
	h.apply(id, h.cfg.HoverAction)
	h.invoke(h.cfg.HoverCallback, ev, id)
}

// handleHoverLeave resolves against the tracked hover id since the host
// does not tag leave notifications with a feature; nothing tracked means
// no-op
func (h *Handler) handleHoverLeave() {
	if h.disposed || !h.hoveredSet {
		return
	}
	id := h.hovered
	h.hovered = nil
	h.hoveredSet = false
	h.apply(id, inverse(h.cfg.HoverAction))
	h.invoke(h.cfg.HoverCallback, PointerEvent{FeatureID: id}, id)
}

// apply dispatches a fixed action against the state manager; unknown ids
// no-op inside the manager
func (h *Handler) apply(id any, action Action) {
	switch action {
	case ActionToggle:
		h.manager.Toggle(id)
	case ActionPlay:
		h.manager.Play(id)
	case ActionPause:
		h.manager.Pause(id)
	case ActionReset:
		h.manager.Reset(id)
	case ActionPlayOnce:
		h.manager.PlayOnce(id)
	}
}

// inverse maps a hover action to its leave-side counterpart so hovering
// is a bracketed effect: enter plays, leave pauses
func inverse(action Action) Action {
	switch action {
	case ActionPlay:
		return ActionPause
	case ActionPause:
		return ActionPlay
	case ActionToggle:
		return ActionToggle
	default:
		return ActionNone
	}
}

// invoke runs a caller-supplied callback with panic isolation: a failing
// callback is logged and cannot interrupt event dispatch
func (h *Handler) invoke(cb Callback, ev PointerEvent, id any) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.logf("interact: callback panic on layer %q: %v", h.layer, r)
		}
	}()
	st, _ := h.manager.State(id)
	cb(ev, st)
}
