package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/effects"
)

// Panel styling.
var (
	ColorMainBorder  = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	ColorCloneBorder = color.RGBA{R: 90, G: 170, B: 255, A: 255}
	ColorCloneTint   = color.RGBA{R: 70, G: 110, B: 200, A: 255}
)

const (
	cloneTintAmount = 0.35
	borderThickness = 2
	glowThickness   = 6
	glowPad         = 12
	glowKernel      = 15
	smokeKernel     = 31
	smokeBrightness = 150.0
)

// scalarOf converts a color to a BGR scalar for whole-matrix fills.
func scalarOf(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

func bounds(m *gocv.Mat) image.Rectangle {
	return image.Rect(0, 0, m.Cols(), m.Rows())
}

// coverScaled returns frame cover-fitted to w x h, and the crop used.
// The caller owns the returned Mat.
func coverScaled(frame gocv.Mat, w, h int) (gocv.Mat, Crop) {
	crop := CoverFit(frame.Cols(), frame.Rows(), w, h)
	src := frame.Region(crop.Rect(frame.Cols(), frame.Rows()))
	defer src.Close()

	scaled := gocv.NewMat()
	gocv.Resize(src, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	return scaled, crop
}

// blit copies src (sized like dst) into canvas at dst, clipping to the canvas.
func blit(canvas *gocv.Mat, src gocv.Mat, dst image.Rectangle) {
	visible := dst.Intersect(bounds(canvas))
	if visible.Empty() {
		return
	}

	from := src.Region(visible.Sub(dst.Min))
	defer from.Close()
	to := canvas.Region(visible)
	defer to.Close()

	from.CopyTo(&to)
}

// drawCover draws frame cover-fitted into dst, applying filter to the scaled pixels first.
func drawCover(canvas *gocv.Mat, frame gocv.Mat, dst image.Rectangle, filter func(*gocv.Mat)) Crop {
	if dst.Dx() <= 0 || dst.Dy() <= 0 {
		return Crop{}
	}

	scaled, crop := coverScaled(frame, dst.Dx(), dst.Dy())
	defer scaled.Close()

	if filter != nil {
		filter(&scaled)
	}
	blit(canvas, scaled, dst)
	return crop
}

// desaturate turns m to grayscale and blends a tint color over it.
func desaturate(tint color.RGBA, amount float64) func(*gocv.Mat) {
	return func(m *gocv.Mat) {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(*m, &gray, gocv.ColorBGRToGray)
		gocv.CvtColor(gray, m, gocv.ColorGrayToBGR)

		overlay := gocv.NewMatWithSizeFromScalar(scalarOf(tint), m.Rows(), m.Cols(), m.Type())
		defer overlay.Close()
		gocv.AddWeighted(*m, 1-amount, overlay, amount, 0, m)
	}
}

// glowBorder draws a blurred halo and a crisp outline around r.
func glowBorder(canvas *gocv.Mat, r image.Rectangle, c color.RGBA) {
	area := r.Inset(-glowPad).Intersect(bounds(canvas))
	if area.Empty() {
		return
	}

	roi := canvas.Region(area)
	defer roi.Close()

	glow := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), area.Dy(), area.Dx(), roi.Type())
	defer glow.Close()

	local := r.Sub(area.Min)
	gocv.Rectangle(&glow, local, c, glowThickness)
	gocv.GaussianBlur(glow, &glow, image.Pt(glowKernel, glowKernel), 0, 0, gocv.BorderDefault)
	gocv.Add(roi, glow, &roi)
	gocv.Rectangle(&roi, local, c, borderThickness)
}

// panelRect places p vertically centered on a canvas of the given height.
func panelRect(p Panel, height int) image.Rectangle {
	y := (height - p.Height) / 2
	return image.Rect(p.X, y, p.X+p.Width, y+p.Height)
}

// drawPanels draws clones first and the main panel last.
func drawPanels(canvas *gocv.Mat, frame gocv.Mat, panels []Panel) {
	tint := desaturate(ColorCloneTint, cloneTintAmount)
	for _, p := range panels {
		r := panelRect(p, canvas.Rows())
		if p.Role == RoleMain {
			drawCover(canvas, frame, r, nil)
			glowBorder(canvas, r, ColorMainBorder)
			continue
		}
		drawCover(canvas, frame, r, tint)
		glowBorder(canvas, r, ColorCloneBorder)
	}
}

// cutout keeps the frame where mask is opaque and clears everything else.
// frame and mask must already be canvas-sized; the caller owns the result.
func cutout(frame, mask gocv.Mat) gocv.Mat {
	person := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), frame.Type())
	frame.CopyToWithMask(&person, mask)
	return person
}

// stamp blends person over canvas, shifted horizontally by dx, where mask is set.
func stamp(canvas *gocv.Mat, person, mask gocv.Mat, dx int, opacity float64) {
	full := bounds(canvas)
	dst := full.Add(image.Pt(dx, 0)).Intersect(full)
	if dst.Empty() {
		return
	}
	src := dst.Sub(image.Pt(dx, 0))

	to := canvas.Region(dst)
	defer to.Close()
	from := person.Region(src)
	defer from.Close()
	m := mask.Region(src)
	defer m.Close()

	blended := to.Clone()
	defer blended.Close()
	from.CopyToWithMask(&blended, m)
	gocv.AddWeighted(blended, opacity, to, 1-opacity, 0, &to)
}

// binaryMask resizes mask to w x h and thresholds it to 0/255.
// The caller owns the result.
func binaryMask(mask gocv.Mat, frameW, frameH, w, h int) gocv.Mat {
	gray := mask
	if mask.Channels() > 1 {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(mask, &gray, gocv.ColorBGRToGray)
	}

	aligned := gray
	if gray.Cols() != frameW || gray.Rows() != frameH {
		aligned = gocv.NewMat()
		defer aligned.Close()
		gocv.Resize(gray, &aligned, image.Pt(frameW, frameH), 0, 0, gocv.InterpolationLinear)
	}

	scaled, _ := coverScaled(aligned, w, h)
	defer scaled.Close()

	out := gocv.NewMat()
	gocv.Threshold(scaled, &out, 127, 255, gocv.ThresholdBinary)
	return out
}

// drawSegmentation draws the live frame as a backdrop and stamps a person
// cutout at each offset.
func drawSegmentation(canvas *gocv.Mat, frame, mask gocv.Mat, offsets []int, opacity float64) {
	w, h := canvas.Cols(), canvas.Rows()

	scaled, _ := coverScaled(frame, w, h)
	defer scaled.Close()
	scaled.CopyTo(canvas)

	m := binaryMask(mask, frame.Cols(), frame.Rows(), w, h)
	defer m.Close()

	person := cutout(scaled, m)
	defer person.Close()

	for _, dx := range offsets {
		stamp(canvas, person, m, dx, opacity)
	}
}

// drawSmoke renders particles as blurred, additive gray circles.
func drawSmoke(canvas *gocv.Mat, particles []effects.Particle) {
	if len(particles) == 0 {
		return
	}

	layer := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), canvas.Rows(), canvas.Cols(), canvas.Type())
	defer layer.Close()

	for _, p := range particles {
		v := uint8(smokeBrightness * p.Alpha())
		gocv.Circle(&layer, image.Pt(int(p.X), int(p.Y)), int(p.Radius), color.RGBA{R: v, G: v, B: v, A: 255}, -1)
	}
	gocv.GaussianBlur(layer, &layer, image.Pt(smokeKernel, smokeKernel), 0, 0, gocv.BorderDefault)
	gocv.Add(*canvas, layer, canvas)
}

// drawFlash blends white over the whole canvas.
func drawFlash(canvas *gocv.Mat, white gocv.Mat, alpha float64) {
	gocv.AddWeighted(white, alpha, *canvas, 1-alpha, 0, canvas)
}
