package main

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/app"
)

// windowPoll keeps the window responsive before the first canvas arrives.
const windowPoll = 100 * time.Millisecond

// showWindow displays every canvas presented to surface until ctx is done or
// the user presses q or Esc. HighGUI wants the calling goroutine to stay on
// one OS thread, so this runs on the main goroutine.
func showWindow(ctx context.Context, surface *app.LatestSurface, title string, quit func()) {
	window := gocv.NewWindow(title)
	defer window.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-surface.Updated():
		case <-time.After(windowPoll):
		}

		if canvas, ok := surface.Latest(); ok {
			window.IMShow(canvas)
			canvas.Close()
		}

		switch window.WaitKey(1) {
		case 27, 'q':
			quit()
			return
		}
	}
}
