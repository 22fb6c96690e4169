package app

import (
	"sync"

	"gocv.io/x/gocv"
)

// Surface receives every composited canvas. Present is called from the render
// loop and must not block; the canvas is only valid during the call.
type Surface interface {
	Present(canvas *gocv.Mat) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(canvas *gocv.Mat) error

func (f SurfaceFunc) Present(canvas *gocv.Mat) error {
	return f(canvas)
}

// LatestSurface keeps a copy of the most recent canvas for a consumer on
// another goroutine, such as a window loop pinned to the main thread.
type LatestSurface struct {
	mu     sync.Mutex
	last   gocv.Mat
	frames int
	notify chan struct{}
}

// NewLatestSurface returns an empty LatestSurface.
func NewLatestSurface() *LatestSurface {
	return &LatestSurface{
		last:   gocv.NewMat(),
		notify: make(chan struct{}, 1),
	}
}

func (s *LatestSurface) Present(canvas *gocv.Mat) error {
	s.mu.Lock()
	canvas.CopyTo(&s.last)
	s.frames++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Updated is signalled after each Present. Signals coalesce.
func (s *LatestSurface) Updated() <-chan struct{} {
	return s.notify
}

// Frames returns how many canvases were presented.
func (s *LatestSurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Latest returns a clone of the last canvas; ok is false before the first one.
func (s *LatestSurface) Latest() (gocv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last.Empty() {
		return gocv.Mat{}, false
	}
	return s.last.Clone(), true
}

// Close releases the stored canvas.
func (s *LatestSurface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.Close()
}

// nopSurface discards every canvas.
type nopSurface struct{}

func (nopSurface) Present(*gocv.Mat) error { return nil }
