package render

import (
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/effects"
	"github.com/ayusman/bunshin/internal/gesture"
)

// Default compositor settings.
const (
	DefaultWidth        = 1280
	DefaultHeight       = 720
	DefaultStampOpacity = 0.85
)

// ColorBackground is the canvas clear color.
var ColorBackground = color.RGBA{R: 15, G: 10, B: 10, A: 255}

// Config holds compositor settings.
type Config struct {
	Width  int
	Height int

	Layout       LayoutConfig
	CloneOffsets []float64
	StampOpacity float64

	FlashDecay     float64
	FlashThreshold float64
	Smoke          effects.SmokeConfig
	Seed           uint64
}

// DefaultConfig returns a 1280x720 compositor for up to maxClones clones.
func DefaultConfig(maxClones int) Config {
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Layout:         DefaultLayoutConfig(maxClones),
		CloneOffsets:   DefaultCloneOffsets,
		StampOpacity:   DefaultStampOpacity,
		FlashDecay:     effects.DefaultFlashDecay,
		FlashThreshold: effects.DefaultFlashThreshold,
		Smoke:          effects.DefaultSmokeConfig(),
		Seed:           1,
	}
}

// Scene is the read-only state snapshot the compositor draws from.
type Scene struct {
	Status gesture.Status
	Hands  []detector.HandLandmarks
	Active bool
	Count  int
	// Mask is the latest segmentation mask, or nil when none is available.
	Mask *gocv.Mat
}

// MaskAvailable reports whether the scene carries a usable mask.
func (s Scene) MaskAvailable() bool {
	return s.Mask != nil && !s.Mask.Empty()
}

// Compositor draws one canvas per display tick. It owns the canvas and the
// particle systems; everything else arrives through Scene.
// A Compositor is not safe for concurrent use.
type Compositor struct {
	cfg    Config
	canvas gocv.Mat
	white  gocv.Mat

	flash *effects.Flash
	smoke *effects.Smoke

	lastCount  int
	lastClones int
}

// New creates a Compositor with a canvas of cfg.Width x cfg.Height.
func New(cfg Config) *Compositor {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.StampOpacity <= 0 || cfg.StampOpacity > 1 {
		cfg.StampOpacity = DefaultStampOpacity
	}
	if cfg.CloneOffsets == nil {
		cfg.CloneOffsets = DefaultCloneOffsets
	}

	c := &Compositor{
		cfg:   cfg,
		flash: effects.NewFlash(cfg.FlashDecay, cfg.FlashThreshold),
		smoke: effects.NewSmoke(cfg.Smoke, cfg.Seed),
	}
	c.allocate()
	return c
}

func (c *Compositor) allocate() {
	c.canvas = gocv.NewMatWithSizeFromScalar(scalarOf(ColorBackground), c.cfg.Height, c.cfg.Width, gocv.MatTypeCV8UC3)
	c.white = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), c.cfg.Height, c.cfg.Width, gocv.MatTypeCV8UC3)
}

// Resize reallocates the canvas for a new viewport size. Particles are kept.
func (c *Compositor) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == c.cfg.Width && height == c.cfg.Height) {
		return
	}
	c.canvas.Close()
	c.white.Close()
	c.cfg.Width = width
	c.cfg.Height = height
	c.allocate()
}

// Size returns the canvas size.
func (c *Compositor) Size() (int, int) {
	return c.cfg.Width, c.cfg.Height
}

// Canvas returns the canvas drawn by the last Render. It is overwritten by the next one.
func (c *Compositor) Canvas() *gocv.Mat {
	return &c.canvas
}

// Plan computes the layout for scene on the current canvas.
func (c *Compositor) Plan(scene Scene) Plan {
	return PlanFrame(scene.Active, scene.Count, scene.MaskAvailable(), c.cfg.Width, c.cfg.Height, c.cfg.Layout, c.cfg.CloneOffsets)
}

// Render draws one tick: clear, content for the selected mode, smoke, flash.
// frame must be a decoded, non-empty BGR image.
func (c *Compositor) Render(frame gocv.Mat, scene Scene) Plan {
	if frame.Channels() != 3 {
		bgr := toBGR(frame)
		defer bgr.Close()
		frame = bgr
	}

	c.canvas.SetTo(scalarOf(ColorBackground))

	plan := c.Plan(scene)
	c.trackCount(scene, plan)

	switch plan.Mode {
	case ModeIdle:
		crop := drawCover(&c.canvas, frame, bounds(&c.canvas), nil)
		drawSkeleton(&c.canvas, scene.Hands, scene.Status, crop, frame.Cols(), frame.Rows())
	case ModePanels:
		drawPanels(&c.canvas, frame, plan.Panels)
	case ModeSegmentation:
		drawSegmentation(&c.canvas, frame, *scene.Mask, plan.Offsets, c.cfg.StampOpacity)
	}

	if scene.Active {
		c.smoke.Step()
		drawSmoke(&c.canvas, c.smoke.Particles())
	} else {
		c.smoke.Clear()
	}

	if a := c.flash.Step(); a > 0 {
		drawFlash(&c.canvas, c.white, a)
	}

	return plan
}

// trackCount fires the flash on the 0 to nonzero edge and puffs smoke at
// every clone that appeared since the last tick.
func (c *Compositor) trackCount(scene Scene, plan Plan) {
	count := scene.Count
	if !scene.Active {
		count = 0
	}

	if c.lastCount == 0 && count > 0 {
		c.flash.Trigger()
	}

	clones := plan.Clones()
	if count > c.lastCount && clones > c.lastClones {
		for _, p := range plan.CloneCenters[c.lastClones:] {
			c.smoke.Puff(float64(p.X), float64(p.Y))
		}
	}

	c.lastCount = count
	c.lastClones = clones
}

// FlashAlpha returns the current flash alpha.
func (c *Compositor) FlashAlpha() float64 {
	return c.flash.Alpha()
}

// SmokeParticles returns the number of live smoke particles.
func (c *Compositor) SmokeParticles() int {
	return c.smoke.Len()
}

// Close releases the canvas.
func (c *Compositor) Close() {
	c.canvas.Close()
	c.white.Close()
}

func toBGR(frame gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		gocv.CvtColor(frame, &out, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(frame, &out, gocv.ColorBGRAToBGR)
	default:
		frame.CopyTo(&out)
	}
	return out
}
