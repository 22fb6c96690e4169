package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/testdata"
)

func TestMotionGate_Disabled(t *testing.T) {
	g := NewMotionGate(0, 0)
	defer g.Close()

	if g.Enabled() {
		t.Fatal("gate with zero threshold should be disabled")
	}
	if pass, _ := g.Pass(nil); !pass {
		t.Error("disabled gate should pass every frame")
	}
}

func TestMotionGate_StillScene(t *testing.T) {
	g := NewMotionGate(1.0, 5)
	defer g.Close()

	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	defer frame.Close()

	if pass, _ := g.Pass(&frame); !pass {
		t.Fatal("first frame should pass")
	}

	// four still frames are held back, the fifth is forced through
	for i := 0; i < 4; i++ {
		pass, changed := g.Pass(&frame)
		if pass {
			t.Fatalf("still frame %d passed", i)
		}
		if changed != 0 {
			t.Errorf("changed = %f on identical frames, want 0", changed)
		}
	}
	if pass, _ := g.Pass(&frame); !pass {
		t.Error("frame after maxStill still frames should pass")
	}
}

func TestMotionGate_Movement(t *testing.T) {
	g := NewMotionGate(1.0, 100)
	defer g.Close()

	dark := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, color.RGBA{A: 255})
	defer dark.Close()
	moved := dark.Clone()
	defer moved.Close()
	gocv.Rectangle(&moved, image.Rect(100, 100, 400, 400), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	g.Pass(&dark)

	pass, changed := g.Pass(&moved)
	if !pass {
		t.Errorf("moving frame held back, changed = %f", changed)
	}
	if changed <= 1.0 {
		t.Errorf("changed = %f, want > 1", changed)
	}
}

func TestMotionGate_ResetPassesNextFrame(t *testing.T) {
	g := NewMotionGate(1.0, 100)
	defer g.Close()

	frame := testdata.SolidFrame(testdata.FrameWidth, testdata.FrameHeight, color.RGBA{A: 255})
	defer frame.Close()

	g.Pass(&frame)
	if pass, _ := g.Pass(&frame); pass {
		t.Fatal("still frame passed")
	}

	g.Reset()
	if pass, _ := g.Pass(&frame); !pass {
		t.Error("first frame after Reset should pass")
	}
}
