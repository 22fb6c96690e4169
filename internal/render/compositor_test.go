package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/gesture"
	"github.com/ayusman/bunshin/testdata"
)

var frameColor = color.RGBA{R: 200, G: 40, B: 30, A: 255}

func pixel(t *testing.T, m *gocv.Mat, row, col int) [3]uint8 {
	t.Helper()
	v := m.GetVecbAt(row, col)
	require.Len(t, v, 3)
	return [3]uint8{v[0], v[1], v[2]}
}

func bgr(c color.RGBA) [3]uint8 {
	return [3]uint8{c.B, c.G, c.R}
}

func newTestCompositor(t *testing.T, cfg Config) *Compositor {
	t.Helper()
	c := New(cfg)
	t.Cleanup(c.Close)
	return c
}

func TestCompositor_IdleDrawsCoverFitFrame(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	plan := c.Render(frame, Scene{Status: gesture.StatusIdle})
	assert.Equal(t, ModeIdle, plan.Mode)

	canvas := c.Canvas()
	assert.Equal(t, DefaultWidth, canvas.Cols())
	assert.Equal(t, DefaultHeight, canvas.Rows())
	assert.Equal(t, bgr(frameColor), pixel(t, canvas, 360, 640))
	assert.Equal(t, bgr(frameColor), pixel(t, canvas, 0, 0), "cover-fit leaves no letterbox")
	assert.Zero(t, c.FlashAlpha())
}

func TestCompositor_IdleDrawsSkeleton(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, color.RGBA{A: 255})
	defer frame.Close()

	hands := detector.TwoHands(detector.OpenPalmLandmarks(), detector.OpenPalmLandmarks(), 0.1)
	c.Render(frame, Scene{Status: gesture.StatusNear, Hands: hands})

	// left wrist at (0.45, 0.8) lands on (576, 648) after the 640x480 -> 1280x720 crop
	assert.Equal(t, [3]uint8{255, 255, 255}, pixel(t, c.Canvas(), 648, 576))
	assert.Equal(t, [3]uint8{0, 0, 0}, pixel(t, c.Canvas(), 5, 5))
}

func TestCompositor_PanelsFlashAndFade(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	scene := Scene{Status: gesture.StatusActive, Active: true, Count: 2}

	plan := c.Render(frame, scene)
	require.Equal(t, ModePanels, plan.Mode)
	require.Len(t, plan.Panels, 3)
	assert.Equal(t, [3]uint8{255, 255, 255}, pixel(t, c.Canvas(), 1, 1), "flash covers the first tick")
	assert.InDelta(t, 0.85, c.FlashAlpha(), 1e-9)
	assert.Positive(t, c.SmokeParticles())

	for i := 0; i < 30; i++ {
		c.Render(frame, scene)
	}
	assert.Zero(t, c.FlashAlpha())

	canvas := c.Canvas()
	clone := plan.CloneCenters[0]
	assert.Equal(t, bgr(ColorBackground), pixel(t, canvas, 1, clone.X), "background above a clone panel")
	assert.Equal(t, bgr(frameColor), pixel(t, canvas, 360, 640), "main panel keeps the frame colors")
	assert.NotEqual(t, bgr(frameColor), pixel(t, canvas, 200, clone.X), "clones are tinted")
}

func TestCompositor_FlashOnlyOnFirstClone(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	c.Render(frame, Scene{Active: true, Count: 2})
	for i := 0; i < 30; i++ {
		c.Render(frame, Scene{Active: true, Count: 2})
	}
	c.Render(frame, Scene{Active: true, Count: 4})
	assert.Zero(t, c.FlashAlpha(), "2 -> 4 is not a flash edge")

	c.Render(frame, Scene{Active: false})
	c.Render(frame, Scene{Active: true, Count: 2})
	assert.InDelta(t, 0.85, c.FlashAlpha(), 1e-9)
}

func TestCompositor_SmokeClearedWhenInactive(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	c.Render(frame, Scene{Active: true, Count: 2})
	assert.Equal(t, 2*effectsPerPuff(c), c.SmokeParticles())

	c.Render(frame, Scene{Active: true, Count: 4})
	assert.Equal(t, 4*effectsPerPuff(c), c.SmokeParticles(), "new clones puff")

	c.Render(frame, Scene{Active: false})
	assert.Zero(t, c.SmokeParticles())
}

func effectsPerPuff(c *Compositor) int {
	return c.cfg.Smoke.PerPuff
}

func TestCompositor_Segmentation(t *testing.T) {
	cfg := DefaultConfig(4)
	cfg.Smoke.PerPuff = 0
	c := newTestCompositor(t, cfg)

	frame, mask := testdata.PersonFrame(testdata.FrameWidth, testdata.FrameHeight)
	defer frame.Close()
	defer mask.Close()

	scene := Scene{Status: gesture.StatusActive, Active: true, Count: 2, Mask: &mask}
	plan := c.Render(frame, scene)
	require.Equal(t, ModeSegmentation, plan.Mode)
	require.Equal(t, []int{-282, 282}, plan.Offsets)

	for i := 0; i < 30; i++ {
		c.Render(frame, scene)
	}
	canvas := c.Canvas()

	// person block covers x 512..768 on the canvas; backdrop is (20,20,20)
	person := [3]uint8{160, 200, 230}
	assert.Equal(t, person, pixel(t, canvas, 400, 640), "live person")
	assert.Equal(t, [3]uint8{20, 20, 20}, pixel(t, canvas, 400, 100), "backdrop outside every stamp")

	stamped := pixel(t, canvas, 400, 640+282)
	for i := range stamped {
		want := 0.85*float64(person[i]) + 0.15*20
		assert.InDelta(t, want, float64(stamped[i]), 2, "channel %d", i)
	}
	mirrored := pixel(t, canvas, 400, 640-282)
	assert.Equal(t, stamped, mirrored)
}

func TestCompositor_EmptyMaskFallsBackToPanels(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	plan := c.Render(frame, Scene{Active: true, Count: 2, Mask: &empty})
	assert.Equal(t, ModePanels, plan.Mode)
}

func TestCompositor_GrayFrame(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	gray := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC1)
	defer gray.Close()

	c.Render(gray, Scene{})
	assert.Equal(t, [3]uint8{90, 90, 90}, pixel(t, c.Canvas(), 360, 640))
}

func TestCompositor_Resize(t *testing.T) {
	c := newTestCompositor(t, DefaultConfig(4))
	c.Resize(640, 360)

	w, h := c.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, frameColor)
	defer frame.Close()

	plan := c.Render(frame, Scene{Active: true, Count: 2})
	assert.Equal(t, 640, c.Canvas().Cols())
	assert.Equal(t, 360, c.Canvas().Rows())
	assert.Len(t, plan.Panels, 3)

	c.Resize(0, 100)
	w, h = c.Size()
	assert.Equal(t, 640, w, "invalid sizes are ignored")
	assert.Equal(t, 360, h)
}

func TestSkeletonColor(t *testing.T) {
	assert.Equal(t, ColorSkeletonActive, SkeletonColor(gesture.StatusActive))
	assert.Equal(t, ColorSkeletonNear, SkeletonColor(gesture.StatusNear))
	assert.Equal(t, ColorSkeletonFar, SkeletonColor(gesture.StatusFar))
	assert.Equal(t, ColorSkeletonDefault, SkeletonColor(gesture.StatusIdle))
	assert.Equal(t, ColorSkeletonDefault, SkeletonColor(gesture.StatusFist))
	assert.Len(t, HandConnections, 23)
}
