package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate defaults.
const (
	// motionBlurSize is the Gaussian kernel applied before differencing.
	motionBlurSize = 21
	// motionPixelDelta is the per-pixel gray difference counted as change.
	motionPixelDelta = 25
	// motionSampleWidth is the width frames are shrunk to before comparison.
	motionSampleWidth = 160
	// DefaultMaxStill forces a frame through after this many still frames.
	DefaultMaxStill = 15
)

// MotionGate lets frames through to inference only when the scene changed.
// A hand held still keeps its last landmarks; after MaxStill consecutive still
// frames one frame is let through anyway so hands leaving slowly are noticed.
//
// A threshold <= 0 disables the gate: every frame passes.
type MotionGate struct {
	threshold float64
	maxStill  int

	mu    sync.Mutex
	prev  gocv.Mat
	ready bool
	still int
}

// NewMotionGate creates a gate. threshold is the percentage of changed pixels
// needed to pass; maxStill <= 0 uses DefaultMaxStill.
func NewMotionGate(threshold float64, maxStill int) *MotionGate {
	if maxStill <= 0 {
		maxStill = DefaultMaxStill
	}
	return &MotionGate{
		threshold: threshold,
		maxStill:  maxStill,
		prev:      gocv.NewMat(),
	}
}

// Enabled reports whether the gate filters anything.
func (g *MotionGate) Enabled() bool {
	return g.threshold > 0
}

// Pass reports whether frame should be analysed, and the percentage of
// pixels that changed since the previous frame.
func (g *MotionGate) Pass(frame *gocv.Mat) (bool, float64) {
	if !g.Enabled() {
		return true, 0
	}
	if frame == nil || frame.Empty() {
		return false, 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cur := sample(frame)

	if !g.ready || cur.Cols() != g.prev.Cols() || cur.Rows() != g.prev.Rows() {
		g.prev.Close()
		g.prev = cur
		g.ready = true
		g.still = 0
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, g.prev, &diff)
	gocv.Threshold(diff, &diff, motionPixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100

	g.prev.Close()
	g.prev = cur

	if changed > g.threshold {
		g.still = 0
		return true, changed
	}

	g.still++
	if g.still >= g.maxStill {
		g.still = 0
		return true, changed
	}
	return false, changed
}

// Reset forgets the previous frame; the next frame always passes.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ready = false
	g.still = 0
}

// Close releases the stored frame.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prev.Close()
	g.prev = gocv.NewMat()
	g.ready = false
}

// sample shrinks frame to a blurred gray thumbnail. The caller owns the result.
func sample(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	w := motionSampleWidth
	if gray.Cols() < w {
		w = gray.Cols()
	}
	h := gray.Rows() * w / gray.Cols()
	if h < 1 {
		h = 1
	}

	small := gocv.NewMat()
	gocv.Resize(gray, &small, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
	gocv.GaussianBlur(small, &small, image.Pt(motionBlurSize, motionBlurSize), 0, 0, gocv.BorderDefault)
	return small
}
