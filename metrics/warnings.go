package metrics

import "time"

// WarningType names one degradation condition; each type throttles
// independently
type WarningType string

const (
	WarnLowFPS          WarningType = "low_fps"
	WarnHighFrameTime   WarningType = "high_frame_time"
	WarnDroppedFrames   WarningType = "dropped_frames"
	WarnTooManyFeatures WarningType = "too_many_features"
)

// Warning is one detected degradation event; ephemeral, emitted to
// handlers and not retained
type Warning struct {
	Type       WarningType
	Message    string
	Value      float64
	Threshold  float64
	Timestamp  time.Time
	Suggestion string
}

// Thresholds configures the four warning conditions
type Thresholds struct {
	// MinFPS fires low_fps when the windowed average drops below it,
	// only once the sample window is full
	MinFPS float64
	// MaxFrameTimeMs fires high_frame_time when a single frame exceeds it
	MaxFrameTimeMs float64
	// DroppedRatio fires dropped_frames when dropped/total exceeds it,
	// only after MinFramesForRatio frames
	DroppedRatio float64
	// MaxFeatures fires too_many_features on the rising edge only
	MaxFeatures int
	// MinFramesForRatio guards the dropped-frame ratio against tiny
	// denominators
	MinFramesForRatio int
}

// DefaultThresholds matches a 60 FPS frame budget
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFPS:            30,
		MaxFrameTimeMs:    50,
		DroppedRatio:      0.1,
		MaxFeatures:       10000,
		MinFramesForRatio: 60,
	}
}
