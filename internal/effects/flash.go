// Package effects holds the per-tick particle systems layered over the composited frame.
package effects

// Flash defaults.
const (
	DefaultFlashDecay     = 0.85
	DefaultFlashThreshold = 0.02
)

// Flash is a one-shot full-surface overlay whose alpha decays geometrically.
type Flash struct {
	decay     float64
	threshold float64
	alpha     float64
}

// NewFlash creates a Flash that multiplies its alpha by decay every tick and
// stops drawing once alpha falls below threshold.
func NewFlash(decay, threshold float64) *Flash {
	return &Flash{decay: decay, threshold: threshold}
}

// Trigger restarts the flash at full opacity.
func (f *Flash) Trigger() {
	f.alpha = 1.0
}

// Alpha returns the current alpha.
func (f *Flash) Alpha() float64 {
	return f.alpha
}

// Visible reports whether the flash should be drawn this tick.
func (f *Flash) Visible() bool {
	return f.alpha >= f.threshold
}

// Step returns the alpha to draw this tick and decays it for the next one.
// It returns 0 once the flash has faded out.
func (f *Flash) Step() float64 {
	if !f.Visible() {
		f.alpha = 0
		return 0
	}
	a := f.alpha
	f.alpha *= f.decay
	return a
}
