// Package gesture turns per-frame hand landmarks into a debounced gesture status.
package gesture

// Status is the classified two-hand gesture state.
type Status int

const (
	// StatusIdle means fewer than two hands are visible.
	StatusIdle Status = iota
	// StatusFar means both hands are visible but the wrists are far apart.
	StatusFar
	// StatusNear means the hands are close but not in the ready pose.
	StatusNear
	// StatusActive means the hands are together with index and middle fingers raised.
	StatusActive
	// StatusFist means both hands are closed into fists.
	StatusFist
)

var statusNames = [...]string{
	StatusIdle:   "idle",
	StatusFar:    "far",
	StatusNear:   "near",
	StatusActive: "active",
	StatusFist:   "fist",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}
