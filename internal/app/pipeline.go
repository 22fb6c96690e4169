package app

import (
	"context"

	"github.com/jonboulle/clockwork"
	"gocv.io/x/gocv"

	"github.com/ayusman/bunshin/internal/metrics"
	"github.com/ayusman/bunshin/internal/render"
)

// captureLoop polls the camera, publishes the latest frame and offers a copy
// to the inference gate.
func (s *Session) captureLoop(ctx context.Context, ticker clockwork.Ticker, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.captureTick()
		}
	}
}

func (s *Session) captureTick() {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		s.metrics.CaptureErrors.Inc()
		s.log.Debug("read frame", "error", err)
		return
	}
	s.metrics.FramesCaptured.Inc()

	s.submit(frame)
	s.frame.Store(*frame)
}

// submit starts an inference on a copy of frame unless one is in flight.
// Frames arriving while busy are dropped, never queued.
func (s *Session) submit(frame *gocv.Mat) {
	if !s.enabled.Load() || s.detector == nil {
		return
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.InferencesDropped.WithLabelValues(metrics.DropBusy).Inc()
		return
	}

	if pass, _ := s.gate.Pass(frame); !pass {
		s.busy.Store(false)
		s.metrics.InferencesDropped.WithLabelValues(metrics.DropStill).Inc()
		return
	}

	in := frame.Clone()
	s.metrics.InferencesSubmitted.Inc()
	s.inflight.Add(1)

	go func() {
		defer s.inflight.Done()
		defer s.busy.Store(false)
		defer in.Close()

		s.infer(&in)
	}()
}

// infer runs the hand detector, feeds the classifier, and refreshes the
// segmentation mask while clones are on screen.
func (s *Session) infer(frame *gocv.Mat) {
	start := s.clock.Now()
	hands, err := s.detector.Detect(frame)
	s.metrics.InferenceDuration.Observe(s.clock.Since(start).Seconds())

	if err != nil {
		s.metrics.InferenceErrors.WithLabelValues(metrics.SourceHands).Inc()
		if !s.failing.Swap(true) {
			s.log.Warn("hand detection failed, treating as no hands", "error", err)
		} else {
			s.log.Debug("hand detection failed", "error", err)
		}
		hands = nil
	} else if s.failing.Swap(false) {
		s.log.Info("hand detection recovered")
	}

	s.applyMu.Lock()
	if !s.enabled.Load() {
		s.applyMu.Unlock()
		return
	}
	s.hands.Store(&hands)
	s.classifier.Update(hands)
	s.applyMu.Unlock()

	s.segment(frame)
}

func (s *Session) segment(frame *gocv.Mat) {
	if s.segmenter == nil {
		return
	}

	active, count := s.seq.State()
	if !active || count == 0 {
		s.mask.Clear()
		return
	}

	mask, err := s.segmenter.Segment(frame)
	if err != nil {
		mask.Close()
		s.mask.Clear()
		s.metrics.InferenceErrors.WithLabelValues(metrics.SourceSegment).Inc()
		s.log.Debug("segmentation failed", "error", err)
		return
	}
	s.mask.Store(mask)
}

// renderLoop draws one canvas per refresh tick. Ticks with no frame ready are
// skipped. The compositor belongs to this goroutine.
func (s *Session) renderLoop(ctx context.Context, ticker clockwork.Ticker, comp *render.Compositor, done chan<- struct{}) {
	defer close(done)
	defer comp.Close()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.renderTick(comp)
		}
	}
}

func (s *Session) renderTick(comp *render.Compositor) {
	if size := s.viewport.Load(); size != nil {
		if w, h := comp.Size(); w != size.X || h != size.Y {
			comp.Resize(size.X, size.Y)
		}
	}

	frame, ok := s.frame.Load()
	if !ok {
		s.metrics.TicksSkipped.Inc()
		return
	}
	defer frame.Close()

	scene := s.snapshot()
	if scene.Mask != nil {
		defer scene.Mask.Close()
	}

	plan := comp.Render(frame, scene)

	s.mode.Store(int32(plan.Mode))
	s.metrics.RenderMode.Set(float64(plan.Mode))
	s.metrics.FramesRendered.WithLabelValues(plan.Mode.String()).Inc()

	if err := s.surface.Present(comp.Canvas()); err != nil {
		s.log.Debug("present canvas", "error", err)
	}
}

// snapshot reads every shared cell once. The mask is a private clone the
// caller must close.
func (s *Session) snapshot() render.Scene {
	active, count := s.seq.State()

	scene := render.Scene{
		Status: s.classifier.Status(),
		Active: active,
		Count:  count,
	}
	if h := s.hands.Load(); h != nil {
		scene.Hands = *h
	}
	if active && count > 0 {
		if m, ok := s.mask.Load(); ok {
			scene.Mask = &m
		}
	}
	return scene
}
