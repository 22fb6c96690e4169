package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/gesture"
)

// HandConnections is the 23-edge skeleton: five finger chains from the wrist
// plus three cross-links across the knuckles.
var HandConnections = [...][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.Wrist, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.Wrist, detector.RingMCP}, {detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.Wrist, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.PinkyMCP},
}

// Skeleton colors.
var (
	ColorSkeletonActive  = color.RGBA{R: 0, G: 255, B: 170, A: 255}
	ColorSkeletonNear    = color.RGBA{R: 255, G: 210, B: 0, A: 255}
	ColorSkeletonFar     = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	ColorSkeletonDefault = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

const (
	skeletonLineAlpha     = 0.7
	skeletonLineThickness = 3
	landmarkDotRadius     = 3
	landmarkGlowRadius    = 7
	landmarkGlowKernel    = 21
)

// SkeletonColor returns the overlay color for a status.
func SkeletonColor(s gesture.Status) color.RGBA {
	switch s {
	case gesture.StatusActive:
		return ColorSkeletonActive
	case gesture.StatusNear:
		return ColorSkeletonNear
	case gesture.StatusFar:
		return ColorSkeletonFar
	default:
		return ColorSkeletonDefault
	}
}

// drawSkeleton overlays every hand onto canvas. crop is the cover-fit crop the
// frame was drawn with, so landmarks line up with the video.
func drawSkeleton(canvas *gocv.Mat, hands []detector.HandLandmarks, status gesture.Status, crop Crop, frameW, frameH int) {
	if len(hands) == 0 {
		return
	}

	w, h := canvas.Cols(), canvas.Rows()
	c := SkeletonColor(status)

	points := make([][detector.NumLandmarks]image.Point, len(hands))
	for i := range hands {
		for j, p := range hands[i].Points {
			points[i][j] = crop.Project(p.X, p.Y, frameW, frameH, w, h)
		}
	}

	// lines, alpha-blended
	lines := canvas.Clone()
	defer lines.Close()
	for i := range points {
		for _, e := range HandConnections {
			gocv.Line(&lines, points[i][e[0]], points[i][e[1]], c, skeletonLineThickness)
		}
	}
	gocv.AddWeighted(lines, skeletonLineAlpha, *canvas, 1-skeletonLineAlpha, 0, canvas)

	// glow dots
	glow := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, canvas.Type())
	defer glow.Close()
	for i := range points {
		for _, pt := range points[i] {
			gocv.Circle(&glow, pt, landmarkGlowRadius, c, -1)
		}
	}
	gocv.GaussianBlur(glow, &glow, image.Pt(landmarkGlowKernel, landmarkGlowKernel), 0, 0, gocv.BorderDefault)
	gocv.Add(*canvas, glow, canvas)

	for i := range points {
		for _, pt := range points[i] {
			gocv.Circle(canvas, pt, landmarkDotRadius, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		}
	}
}
