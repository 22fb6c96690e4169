package gesture

import (
	"sync"

	"github.com/ayusman/bunshin/internal/detector"
)

// Default classification thresholds in normalized frame units.
const (
	DefaultFarDistance    = 0.3
	DefaultActiveDistance = 0.15
)

// Thresholds holds the wrist-distance cut-offs used by Classify.
type Thresholds struct {
	// Far is the wrist distance above which the hands are considered apart.
	Far float64
	// Active is the wrist distance at or below which the ready pose activates.
	Active float64
}

// DefaultThresholds returns the standard far/active thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Far: DefaultFarDistance, Active: DefaultActiveDistance}
}

var curledFingers = [...][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Curled reports whether all four non-thumb fingertips are below their PIP joints.
func Curled(h *detector.HandLandmarks) bool {
	for _, f := range curledFingers {
		if h.Points[f[0]].Y <= h.Points[f[1]].Y {
			return false
		}
	}
	return true
}

// Ready reports whether the index and middle fingertips are above their PIP joints.
func Ready(h *detector.HandLandmarks) bool {
	return h.Points[detector.IndexTip].Y < h.Points[detector.IndexPIP].Y &&
		h.Points[detector.MiddleTip].Y < h.Points[detector.MiddlePIP].Y
}

// Classify maps a frame's hands to a Status. Rules are evaluated in order and
// the first match wins:
//
//  1. fewer than two hands: idle
//  2. both hands curled: fist (checked before distance, so a fist from far away is still a fist)
//  3. wrist distance > Far: far
//  4. wrist distance <= Active and both hands ready: active
//  5. otherwise: near
//
// Only the first two hands are considered.
func Classify(hands []detector.HandLandmarks, th Thresholds) Status {
	if len(hands) < 2 {
		return StatusIdle
	}

	a, b := &hands[0], &hands[1]

	if Curled(a) && Curled(b) {
		return StatusFist
	}

	dist := detector.Distance2D(a.Points[detector.Wrist], b.Points[detector.Wrist])
	if dist > th.Far {
		return StatusFar
	}

	if dist <= th.Active && Ready(a) && Ready(b) {
		return StatusActive
	}

	return StatusNear
}

// Classifier wraps Classify with edge-triggered emission: OnChange only fires
// when the status differs from the last emitted one. The initial status is idle.
type Classifier struct {
	thresholds Thresholds

	// emitMu serializes compare, commit and callback so edges are delivered
	// in the order they are committed. Lock order: emitMu, then mu.
	emitMu sync.Mutex

	mu       sync.Mutex
	last     Status
	onChange func(Status)
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{thresholds: th, last: StatusIdle}
}

// OnChange sets the callback invoked with each new status.
func (c *Classifier) OnChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Update classifies hands and reports the status and whether it changed.
// Concurrent updates are delivered one at a time; the callback may read
// Status but must not call Update.
func (c *Classifier) Update(hands []detector.HandLandmarks) (Status, bool) {
	status := Classify(hands, c.thresholds)

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if status == c.last {
		c.mu.Unlock()
		return status, false
	}
	c.last = status
	callback := c.onChange
	c.mu.Unlock()

	if callback != nil {
		callback(status)
	}
	return status, true
}

// Status returns the last emitted status.
func (c *Classifier) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Reset forgets the last emitted status without firing the callback.
func (c *Classifier) Reset() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = StatusIdle
}
