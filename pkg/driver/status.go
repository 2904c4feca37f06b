package driver

// Status is the measurement-completeness state of the driver.
//
// Transitions only move forward within one content generation:
// idle → measuring → complete. Any change to the segment list or a recorded
// height recomputes the status, so it can fall back to measuring when new
// content invalidates old measurements.
type Status int

const (
	// StatusIdle: no segments, nothing to measure or plan.
	StatusIdle Status = iota

	// StatusMeasuring: at least one required measurement key has no height.
	StatusMeasuring

	// StatusComplete: every required key has a height; planning may run.
	StatusComplete
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMeasuring:
		return "measuring"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}
