package render

import (
	"image"
	"math"
)

// Mode is the per-tick render mode.
type Mode int

const (
	// ModeIdle draws the camera frame with the hand skeleton.
	ModeIdle Mode = iota
	// ModePanels draws the main panel flanked by tinted clone panels.
	ModePanels
	// ModeSegmentation stamps person cutouts beside the live frame.
	ModeSegmentation
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePanels:
		return "panels"
	case ModeSegmentation:
		return "segmentation"
	default:
		return "unknown"
	}
}

// SelectMode picks the render mode from the current session state.
// It is evaluated fresh every tick.
func SelectMode(active bool, count int, maskAvailable bool) Mode {
	if !active || count <= 0 {
		return ModeIdle
	}
	if maskAvailable {
		return ModeSegmentation
	}
	return ModePanels
}

// DefaultCloneOffsets are the horizontal cutout offsets, as fractions of the
// canvas width, in the order clones appear.
var DefaultCloneOffsets = []float64{-0.22, 0.22, -0.40, 0.40, -0.58, 0.58}

// Plan is the tagged layout for one tick: the mode and the geometry it needs.
type Plan struct {
	Mode Mode
	// Panels is set in ModePanels, in draw order.
	Panels []Panel
	// Offsets is set in ModeSegmentation, one horizontal pixel offset per clone.
	Offsets []int
	// CloneCenters lists clone positions in the order they appeared
	// (nearest first, alternating left and right).
	CloneCenters []image.Point
}

// Clones returns how many clones the plan shows.
func (p Plan) Clones() int {
	return len(p.CloneCenters)
}

// PlanFrame computes the plan for a width x height canvas.
func PlanFrame(active bool, count int, maskAvailable bool, width, height int, layout LayoutConfig, offsets []float64) Plan {
	plan := Plan{Mode: SelectMode(active, count, maskAvailable)}

	switch plan.Mode {
	case ModePanels:
		plan.Panels = LayoutPanels(count, width, height, layout)
		plan.CloneCenters = panelCenters(plan.Panels, height)

	case ModeSegmentation:
		n := count
		if layout.Cap > 0 && n > layout.Cap {
			n = layout.Cap
		}
		if n > len(offsets) {
			n = len(offsets)
		}
		plan.Offsets = make([]int, n)
		plan.CloneCenters = make([]image.Point, n)
		for i := 0; i < n; i++ {
			dx := int(math.Round(offsets[i] * float64(width)))
			plan.Offsets[i] = dx
			plan.CloneCenters[i] = image.Pt(width/2+dx, height/2)
		}
	}

	return plan
}

// panelCenters orders clone panel centers by rank, left before right.
func panelCenters(panels []Panel, height int) []image.Point {
	var left, right []image.Point
	for _, p := range panels {
		if p.Role != RoleClone {
			continue
		}
		c := image.Pt(p.X+p.Width/2, height/2)
		if p.Side == SideLeft {
			left = append([]image.Point{c}, left...)
		} else {
			right = append([]image.Point{c}, right...)
		}
	}

	centers := make([]image.Point, 0, len(left)+len(right))
	for i := 0; i < len(left) || i < len(right); i++ {
		if i < len(left) {
			centers = append(centers, left[i])
		}
		if i < len(right) {
			centers = append(centers, right[i])
		}
	}
	return centers
}
