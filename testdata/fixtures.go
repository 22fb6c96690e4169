// Package testdata builds synthetic frames and masks for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default synthetic frame size, matching the camera's nominal resolution.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// SolidFrame returns a BGR frame filled with c. The caller must close it.
func SolidFrame(w, h int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0), h, w, gocv.MatTypeCV8UC3)
}

// PersonFrame returns a frame with a bright "person" block in the center of a
// dark background, and the matching single-channel mask. The caller must close both.
func PersonFrame(w, h int) (frame gocv.Mat, mask gocv.Mat) {
	frame = SolidFrame(w, h, color.RGBA{R: 20, G: 20, B: 20, A: 255})
	mask = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC1)

	body := PersonRect(w, h)
	gocv.Rectangle(&frame, body, color.RGBA{R: 230, G: 200, B: 160, A: 255}, -1)
	gocv.Rectangle(&mask, body, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
	return frame, mask
}

// PersonRect is the region PersonFrame paints as foreground.
func PersonRect(w, h int) image.Rectangle {
	return image.Rect(w*2/5, h/5, w*3/5, h)
}

// Sequence returns n copies of a solid frame. The caller must close them.
func Sequence(n int, c color.RGBA) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		f := SolidFrame(FrameWidth, FrameHeight, c)
		frames = append(frames, &f)
	}
	return frames
}
