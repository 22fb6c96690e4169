// Package render composites the camera frame, clones and overlays onto the display canvas.
package render

import (
	"image"
	"math"
)

// Crop is a source-space rectangle in pixels.
type Crop struct {
	X, Y, W, H float64
}

// CoverFit returns the source crop that fills a dstW x dstH rectangle without
// letterboxing: the crop has the destination's aspect ratio and is centered on
// the axis that overflows.
func CoverFit(srcW, srcH, dstW, dstH int) Crop {
	sw, sh := float64(srcW), float64(srcH)
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Crop{W: sw, H: sh}
	}

	dstAspect := float64(dstW) / float64(dstH)
	srcAspect := sw / sh

	if dstAspect > srcAspect {
		h := sw / dstAspect
		return Crop{X: 0, Y: (sh - h) / 2, W: sw, H: h}
	}
	w := sh * dstAspect
	return Crop{X: (sw - w) / 2, Y: 0, W: w, H: sh}
}

// Rect rounds the crop to whole pixels, clamped to a srcW x srcH image.
// The result is never empty for a non-empty source.
func (c Crop) Rect(srcW, srcH int) image.Rectangle {
	x0 := int(math.Round(c.X))
	y0 := int(math.Round(c.Y))
	x1 := int(math.Round(c.X + c.W))
	y1 := int(math.Round(c.Y + c.H))

	r := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, srcW, srcH))
	if r.Empty() && srcW > 0 && srcH > 0 {
		return image.Rect(0, 0, srcW, srcH)
	}
	return r
}

// Project maps a normalized source point (nx, ny in [0,1] of the srcW x srcH
// image) into the pixel space of a dstW x dstH rectangle drawn with this crop.
func (c Crop) Project(nx, ny float64, srcW, srcH, dstW, dstH int) image.Point {
	if c.W == 0 || c.H == 0 {
		return image.Point{}
	}
	x := (nx*float64(srcW) - c.X) * float64(dstW) / c.W
	y := (ny*float64(srcH) - c.Y) * float64(dstH) / c.H
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}
