package render

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverFit(t *testing.T) {
	tests := []struct {
		name             string
		srcW, srcH       int
		dstW, dstH       int
		want             Crop
	}{
		{name: "same aspect", srcW: 640, srcH: 480, dstW: 320, dstH: 240, want: Crop{X: 0, Y: 0, W: 640, H: 480}},
		{name: "wider destination crops height", srcW: 640, srcH: 480, dstW: 1280, dstH: 720, want: Crop{X: 0, Y: 60, W: 640, H: 360}},
		{name: "taller destination crops width", srcW: 640, srcH: 480, dstW: 300, dstH: 600, want: Crop{X: 200, Y: 0, W: 240, H: 480}},
		{name: "square destination", srcW: 1920, srcH: 1080, dstW: 500, dstH: 500, want: Crop{X: 420, Y: 0, W: 1080, H: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverFit(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.W, got.W, 1e-9)
			assert.InDelta(t, tt.want.H, got.H, 1e-9)
		})
	}
}

func TestCoverFit_Invariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for i := 0; i < 1000; i++ {
		srcW, srcH := 1+rng.IntN(4000), 1+rng.IntN(4000)
		dstW, dstH := 1+rng.IntN(4000), 1+rng.IntN(4000)

		crop := CoverFit(srcW, srcH, dstW, dstH)

		require.InEpsilon(t, float64(dstW)/float64(dstH), crop.W/crop.H, 1e-9, "src %dx%d dst %dx%d", srcW, srcH, dstW, dstH)
		require.LessOrEqual(t, crop.W, float64(srcW)+1e-9)
		require.LessOrEqual(t, crop.H, float64(srcH)+1e-9)

		// one axis is untouched, the other is centered
		if crop.W < float64(srcW)-1e-9 {
			require.InDelta(t, 0, crop.Y, 1e-9)
			require.InDelta(t, float64(srcW)-crop.W, 2*crop.X, 1e-6)
		} else {
			require.InDelta(t, 0, crop.X, 1e-9)
			require.InDelta(t, float64(srcH)-crop.H, 2*crop.Y, 1e-6)
		}
	}
}

func TestCoverFit_Degenerate(t *testing.T) {
	got := CoverFit(640, 480, 0, 100)
	assert.Equal(t, Crop{W: 640, H: 480}, got)
}

func TestCrop_Rect(t *testing.T) {
	crop := CoverFit(640, 480, 1280, 720)
	assert.Equal(t, image.Rect(0, 60, 640, 420), crop.Rect(640, 480))

	// never empty for a real source
	assert.False(t, Crop{X: 10, Y: 10, W: 0.2, H: 0.2}.Rect(640, 480).Empty())
}

func TestCrop_Project(t *testing.T) {
	crop := CoverFit(640, 480, 1280, 720)

	assert.Equal(t, image.Pt(640, 360), crop.Project(0.5, 0.5, 640, 480, 1280, 720))
	assert.Equal(t, image.Pt(0, 0), crop.Project(0, 0.125, 640, 480, 1280, 720))
	assert.Equal(t, image.Pt(1280, 720), crop.Project(1, 0.875, 640, 480, 1280, 720))
}
