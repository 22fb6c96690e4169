package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		active bool
		count  int
		mask   bool
		want   Mode
	}{
		{active: false, count: 0, mask: false, want: ModeIdle},
		{active: false, count: 4, mask: false, want: ModeIdle},
		{active: false, count: 4, mask: true, want: ModeIdle},
		{active: true, count: 0, mask: false, want: ModeIdle},
		{active: true, count: 0, mask: true, want: ModeIdle},
		{active: true, count: 2, mask: false, want: ModePanels},
		{active: true, count: 2, mask: true, want: ModeSegmentation},
	}

	for _, tt := range tests {
		got := SelectMode(tt.active, tt.count, tt.mask)
		assert.Equal(t, tt.want, got, "active=%v count=%d mask=%v", tt.active, tt.count, tt.mask)
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "panels", ModePanels.String())
	assert.Equal(t, "segmentation", ModeSegmentation.String())
	assert.Equal(t, "unknown", Mode(42).String())
}

func TestPlanFrame_Idle(t *testing.T) {
	plan := PlanFrame(true, 0, false, 1280, 720, DefaultLayoutConfig(4), DefaultCloneOffsets)
	assert.Equal(t, ModeIdle, plan.Mode)
	assert.Empty(t, plan.Panels)
	assert.Empty(t, plan.Offsets)
	assert.Zero(t, plan.Clones())
}

func TestPlanFrame_Panels(t *testing.T) {
	plan := PlanFrame(true, 4, false, 1280, 720, DefaultLayoutConfig(4), DefaultCloneOffsets)
	require.Equal(t, ModePanels, plan.Mode)
	require.Len(t, plan.Panels, 5)
	require.Equal(t, 4, plan.Clones())
	assert.Empty(t, plan.Offsets)

	// nearest clones first, alternating sides
	assert.Less(t, plan.CloneCenters[0].X, 640)
	assert.Greater(t, plan.CloneCenters[1].X, 640)
	assert.Less(t, plan.CloneCenters[2].X, plan.CloneCenters[0].X)
	assert.Greater(t, plan.CloneCenters[3].X, plan.CloneCenters[1].X)
	for _, c := range plan.CloneCenters {
		assert.Equal(t, 360, c.Y)
	}
}

func TestPlanFrame_Segmentation(t *testing.T) {
	plan := PlanFrame(true, 2, true, 1280, 720, DefaultLayoutConfig(4), DefaultCloneOffsets)
	require.Equal(t, ModeSegmentation, plan.Mode)
	assert.Empty(t, plan.Panels)
	assert.Equal(t, []int{-282, 282}, plan.Offsets)
	assert.Equal(t, []image.Point{image.Pt(358, 360), image.Pt(922, 360)}, plan.CloneCenters)
}

func TestPlanFrame_SegmentationBoundedByCapAndOffsets(t *testing.T) {
	plan := PlanFrame(true, 6, true, 1000, 500, DefaultLayoutConfig(4), DefaultCloneOffsets)
	assert.Len(t, plan.Offsets, 4)

	plan = PlanFrame(true, 6, true, 1000, 500, DefaultLayoutConfig(6), []float64{-0.2, 0.2})
	assert.Len(t, plan.Offsets, 2)
}
