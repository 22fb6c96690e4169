package render

import "math"

// Role distinguishes the live panel from its clones.
type Role int

const (
	RoleMain Role = iota
	RoleClone
)

// Side places a clone panel relative to the main panel.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Panel is one rectangle of the panel layout, recomputed every tick.
// Panels are vertically centered on the canvas.
type Panel struct {
	X      int
	Width  int
	Height int
	Role   Role
	Side   Side
	// Rank counts outward from the main panel, starting at 0 for the nearest clone.
	Rank int
}

// Layout defaults.
const (
	DefaultMainFraction  = 0.42
	DefaultMaxVisible    = 5
	DefaultPanelGap      = 12
	DefaultCloneHeight   = 0.9
	DefaultMainHeight    = 1.0
	minimumVisiblePanels = 2
)

// LayoutConfig controls the panel arrangement.
type LayoutConfig struct {
	// Cap bounds the number of clones considered before the visible limit.
	Cap int
	// MaxVisible bounds the number of panels on screen, main included.
	MaxVisible int
	// MainFraction is the main panel width as a fraction of the canvas width.
	MainFraction float64
	// Gap separates neighbouring panels, in pixels.
	Gap int
	// CloneHeight and MainHeight are fractions of the canvas height.
	CloneHeight float64
	MainHeight  float64
}

// DefaultLayoutConfig returns the standard layout with the given clone cap.
func DefaultLayoutConfig(capClones int) LayoutConfig {
	return LayoutConfig{
		Cap:          capClones,
		MaxVisible:   DefaultMaxVisible,
		MainFraction: DefaultMainFraction,
		Gap:          DefaultPanelGap,
		CloneHeight:  DefaultCloneHeight,
		MainHeight:   DefaultMainHeight,
	}
}

// VisiblePanels returns how many panels (main included) are shown for count clones.
func VisiblePanels(count int, cfg LayoutConfig) int {
	clones := count
	if cfg.Cap > 0 && clones > cfg.Cap {
		clones = cfg.Cap
	}
	total := clones + 1
	if cfg.MaxVisible >= minimumVisiblePanels && total > cfg.MaxVisible {
		total = cfg.MaxVisible
	}
	return total
}

// LayoutPanels arranges one main panel and its clones across a canvasW x canvasH
// canvas. The main panel takes MainFraction of the width and sits in the center;
// the rest of the width, less the gaps, is shared evenly by the visible clones,
// ceil(n/2) on the left and floor(n/2) on the right, placed outward from the
// center. Every panel stays at least Gap from the canvas edge; a side that
// cannot hold its clones at full spacing overlaps them instead.
//
// Panels are returned in draw order: clones outermost first, main last, so
// inner panels cover outer ones where they overlap. count must be > 0.
func LayoutPanels(count, canvasW, canvasH int, cfg LayoutConfig) []Panel {
	visible := VisiblePanels(count, cfg)
	n := visible - 1
	if n <= 0 {
		return nil
	}

	mainW := int(math.Round(float64(canvasW) * cfg.MainFraction))
	cloneW := (canvasW - mainW - (n+2)*cfg.Gap) / n
	if cloneW < 1 {
		cloneW = 1
	}
	mainX := (canvasW - mainW) / 2
	mainH := int(math.Round(float64(canvasH) * cfg.MainHeight))
	cloneH := int(math.Round(float64(canvasH) * cfg.CloneHeight))

	left := (n + 1) / 2
	right := n / 2
	leftDist := spread(left, mainX, cloneW, cfg.Gap)
	rightDist := spread(right, canvasW-mainX-mainW, cloneW, cfg.Gap)

	panels := make([]Panel, 0, visible)
	for rank := left - 1; rank >= 0; rank-- {
		panels = append(panels, Panel{
			X:      mainX - leftDist[rank] - cloneW,
			Width:  cloneW,
			Height: cloneH,
			Role:   RoleClone,
			Side:   SideLeft,
			Rank:   rank,
		})
	}
	for rank := right - 1; rank >= 0; rank-- {
		panels = append(panels, Panel{
			X:      mainX + mainW + rightDist[rank],
			Width:  cloneW,
			Height: cloneH,
			Role:   RoleClone,
			Side:   SideRight,
			Rank:   rank,
		})
	}
	panels = append(panels, Panel{
		X:      mainX,
		Width:  mainW,
		Height: mainH,
		Role:   RoleMain,
		Side:   SideNone,
	})

	return panels
}

// spread returns, for k clones on one side of the main panel, each clone's
// distance from the main panel's edge. space is the width between that edge
// and the canvas edge. The outermost clone ends at least gap before the
// canvas edge.
func spread(k, space, cloneW, gap int) []int {
	dist := make([]int, k)
	if k == 0 {
		return dist
	}

	outer := space - gap - cloneW
	step := cloneW + gap
	first := gap
	if first > outer {
		first = outer
	}
	if k > 1 && first+(k-1)*step > outer {
		step = (outer - first) / (k - 1)
		if step < 0 {
			step = 0
		}
	}
	for r := range dist {
		dist[r] = first + r*step
	}
	return dist
}
