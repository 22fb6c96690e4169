package e2e

import (
	"context"
	"image/color"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/bunshin/internal/app"
	"github.com/ayusman/bunshin/internal/capture"
	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/gesture"
	"github.com/ayusman/bunshin/internal/logging"
	"github.com/ayusman/bunshin/internal/render"
	"github.com/ayusman/bunshin/testdata"
)

const (
	frameInterval = 10 * time.Millisecond
	waitFor       = 2 * time.Second
	poll          = time.Millisecond
)

func TestE2E_CloneSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	frames := testdata.Sequence(3, color.RGBA{R: 90, G: 140, B: 60, A: 255})
	defer func() {
		for _, f := range frames {
			f.Close()
		}
	}()

	clock := clockwork.NewFakeClock()
	det := detector.NewMockDetector()
	surface := app.NewLatestSurface()
	defer surface.Close()

	cfg := app.DefaultConfig()
	cfg.Segmentation = false
	cfg.CaptureInterval = frameInterval
	cfg.RefreshInterval = frameInterval
	cfg.Render.Width = 320
	cfg.Render.Height = 180

	session := app.New(cfg, app.Deps{
		Camera:   capture.NewMockCamera(frames, true),
		Detector: det,
		Surface:  surface,
		Clock:    clock,
		Logger:   logging.New(io.Discard, "debug", "text"),
	})

	var mu sync.Mutex
	var counts []int
	var statuses []gesture.Status
	session.OnCountChange(func(c int) {
		mu.Lock()
		defer mu.Unlock()
		counts = append(counts, c)
	})
	session.OnStatusChange(func(s gesture.Status) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s)
	})

	require.NoError(t, session.Start())
	defer session.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 2), "capture and render tickers")

	step := func(cond func() bool, msg string) {
		t.Helper()
		require.Eventually(t, func() bool {
			if cond() {
				return true
			}
			clock.Advance(frameInterval)
			return false
		}, waitFor, poll, msg)
	}

	t.Run("IdleWithoutHands", func(t *testing.T) {
		step(func() bool { return surface.Frames() > 0 }, "first canvas")
		assert.Equal(t, render.ModeIdle, session.Mode())
		assert.Equal(t, gesture.StatusIdle, session.Status())
	})

	t.Run("ActiveGrowsToMax", func(t *testing.T) {
		det.SetHands(detector.TwoHands(detector.ReadyLandmarks(), detector.ReadyLandmarks(), 0.1))
		step(session.Active, "hands close together activate")
		assert.Equal(t, 0, session.Count())

		// the sequence timer joins the capture and render tickers
		require.NoError(t, clock.BlockUntilContext(ctx, 3))

		interval := cfg.Sequence.Interval
		want := []int{2, 4, 4}
		for i, n := range want {
			clock.Advance(interval)
			require.Eventually(t, func() bool { return session.Count() == n }, waitFor, poll, "tick %d", i+1)
		}

		step(func() bool { return session.Mode() == render.ModePanels }, "clones drawn")
		assert.Equal(t, 4.0, testutil.ToFloat64(session.Metrics().CloneCount))
	})

	t.Run("FistReleasesClones", func(t *testing.T) {
		det.SetHands(detector.TwoHands(detector.FistLandmarks(), detector.FistLandmarks(), 0.1))
		step(func() bool { return !session.Active() }, "fist ends the sequence")
		assert.Equal(t, 0, session.Count())
		assert.Equal(t, gesture.StatusFist, session.Status())
		step(func() bool { return session.Mode() == render.ModeIdle }, "idle canvas")
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(counts) == 3
	}, waitFor, poll)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 4, 0}, counts)
	assert.Equal(t, []gesture.Status{gesture.StatusActive, gesture.StatusFist}, statuses)
}
