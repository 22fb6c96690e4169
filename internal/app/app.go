// Package app runs a clone session: camera capture, gesture inference, the
// clone sequencer and the render loop, wired through single-writer cells.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ayusman/bunshin/internal/capture"
	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/gesture"
	"github.com/ayusman/bunshin/internal/logging"
	"github.com/ayusman/bunshin/internal/metrics"
	"github.com/ayusman/bunshin/internal/render"
	"github.com/ayusman/bunshin/internal/sequencer"
)

// ErrAlreadyRunning is returned by Start on a running session.
var ErrAlreadyRunning = errors.New("session already running")

// Deps are the collaborators of a session. Nil fields get defaults: the real
// camera and clock, MediaPipe models, and a surface that discards frames.
type Deps struct {
	Camera    capture.Camera
	Detector  detector.Detector
	Segmenter detector.Segmenter
	Surface   Surface
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Session owns one live clone effect.
//
// Three goroutines share state through cells that each have a single writer:
// the capture loop writes the frame cell, the inference goroutine writes the
// hands and mask cells (and drives the classifier and sequencer), and the
// render loop reads everything once per tick.
type Session struct {
	id    string
	cfg   Config
	log   *slog.Logger
	clock clockwork.Clock

	camera    capture.Camera
	detector  detector.Detector
	segmenter detector.Segmenter
	surface   Surface
	gate      *capture.MotionGate

	classifier *gesture.Classifier
	seq        *sequencer.Sequencer
	metrics    *metrics.Metrics

	frame    matCell
	mask     matCell
	hands    atomic.Pointer[[]detector.HandLandmarks]
	viewport atomic.Pointer[image.Point]
	mode     atomic.Int32

	// applyMu orders inference results against SetEnabled.
	applyMu  sync.Mutex
	enabled  atomic.Bool
	busy     atomic.Bool
	failing  atomic.Bool
	inflight sync.WaitGroup

	cbMu     sync.RWMutex
	onStatus func(gesture.Status)
	onCount  func(int)

	mu          sync.Mutex
	running     bool
	stopCapture context.CancelFunc
	stopRender  context.CancelFunc
	captureDone chan struct{}
	renderDone  chan struct{}
}

// New creates a session. Models that fail to load are logged and left out:
// without a hand detector the session stays idle and draws no overlay, and
// without a segmenter clones are drawn as panels.
func New(cfg Config, deps Deps) *Session {
	id := uuid.NewString()

	log := deps.Logger
	if log == nil {
		log = logging.WithSession(id)
	} else {
		log = log.With("session_id", id)
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	if cfg.CaptureInterval <= 0 {
		cfg.CaptureInterval = DefaultCaptureInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}

	s := &Session{
		id:         id,
		cfg:        cfg,
		log:        log,
		clock:      clock,
		camera:     deps.Camera,
		detector:   deps.Detector,
		segmenter:  deps.Segmenter,
		surface:    deps.Surface,
		gate:       capture.NewMotionGate(cfg.MotionThreshold, 0),
		classifier: gesture.NewClassifier(cfg.Thresholds),
		seq:        sequencer.New(cfg.Sequence, clock),
		metrics:    metrics.New(),
	}

	if s.camera == nil {
		s.camera = capture.NewCamera(cfg.Camera)
	}
	if s.surface == nil {
		s.surface = nopSurface{}
	}
	if s.detector == nil {
		if d, err := detector.NewMediaPipeDetector(cfg.Detector); err != nil {
			log.Warn("hand detector unavailable, running without overlay", "error", err)
		} else {
			s.detector = d
		}
	}
	if s.segmenter == nil && cfg.Segmentation {
		if seg, err := detector.NewMediaPipeSegmenter(cfg.Detector); err != nil {
			log.Warn("person segmenter unavailable, clones drawn as panels", "error", err)
		} else {
			s.segmenter = seg
		}
	}

	s.viewport.Store(&image.Point{X: cfg.Render.Width, Y: cfg.Render.Height})
	s.enabled.Store(true)
	s.classifier.OnChange(s.handleStatus)
	s.seq.OnCountChange(s.handleCount)

	return s
}

// ID returns the session id carried by its log lines.
func (s *Session) ID() string {
	return s.id
}

// OnStatusChange sets the callback invoked with every gesture status edge.
// It runs on the inference goroutine or inside SetEnabled, must not block,
// and must not call SetEnabled.
func (s *Session) OnStatusChange(fn func(gesture.Status)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onStatus = fn
}

// OnCountChange sets the callback invoked whenever the clone count changes.
func (s *Session) OnCountChange(fn func(int)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onCount = fn
}

// Start opens the camera and launches the capture and render loops.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	size := s.viewport.Load()
	rcfg := s.cfg.Render
	rcfg.Width, rcfg.Height = size.X, size.Y
	comp := render.New(rcfg)

	// Tickers are created here, before the goroutines start, so a fake clock
	// sees them as soon as Start returns.
	captureTicker := s.clock.NewTicker(s.cfg.CaptureInterval)
	renderTicker := s.clock.NewTicker(s.cfg.RefreshInterval)

	captureCtx, stopCapture := context.WithCancel(context.Background())
	renderCtx, stopRender := context.WithCancel(context.Background())
	s.stopCapture, s.stopRender = stopCapture, stopRender
	s.captureDone = make(chan struct{})
	s.renderDone = make(chan struct{})

	go s.captureLoop(captureCtx, captureTicker, s.captureDone)
	go s.renderLoop(renderCtx, renderTicker, comp, s.renderDone)

	s.running = true
	s.log.Info("session started",
		"capture_interval", s.cfg.CaptureInterval,
		"refresh_interval", s.cfg.RefreshInterval,
		"hands", s.detector != nil,
		"segmentation", s.segmenter != nil,
	)
	return nil
}

// Run starts the session and blocks until ctx is cancelled, then stops it.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop tears the session down: capture and inference first, then the
// sequencer timer, then the render loop. Models are closed only after the
// in-flight inference has returned. Stop is a no-op on a stopped session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.stopCapture()
	<-s.captureDone
	s.inflight.Wait()

	s.seq.Close()

	s.stopRender()
	<-s.renderDone

	if err := s.camera.Close(); err != nil {
		s.log.Warn("close camera", "error", err)
	}
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			s.log.Warn("close hand detector", "error", err)
		}
	}
	if s.segmenter != nil {
		if err := s.segmenter.Close(); err != nil {
			s.log.Warn("close segmenter", "error", err)
		}
	}

	s.gate.Reset()
	s.frame.Clear()
	s.mask.Clear()
	s.hands.Store(nil)
	s.classifier.Reset()
	s.metrics.CloneCount.Set(0)

	s.log.Info("session stopped")
}

// Running reports whether the loops are active.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetEnabled pauses or resumes gesture inference. While paused the camera
// keeps playing, hands are dropped and the status falls back to idle.
// A running clone sequence is left alone; Deactivate releases it.
func (s *Session) SetEnabled(enabled bool) {
	s.applyMu.Lock()
	if s.enabled.Swap(enabled) == enabled {
		s.applyMu.Unlock()
		return
	}
	if !enabled {
		s.hands.Store(nil)
		s.gate.Reset()
		s.classifier.Update(nil)
	}
	s.applyMu.Unlock()

	s.log.Info("inference toggled", "enabled", enabled)
}

// IsEnabled reports whether inference is running.
func (s *Session) IsEnabled() bool {
	return s.enabled.Load()
}

// Deactivate releases the clones from outside the gesture flow.
func (s *Session) Deactivate() bool {
	return s.seq.Deactivate()
}

// Count returns the live clone count.
func (s *Session) Count() int {
	return s.seq.Count()
}

// Active reports whether a clone sequence is running.
func (s *Session) Active() bool {
	return s.seq.Active()
}

// Status returns the last emitted gesture status.
func (s *Session) Status() gesture.Status {
	return s.classifier.Status()
}

// Mode returns the render mode of the last drawn tick.
func (s *Session) Mode() render.Mode {
	return render.Mode(s.mode.Load())
}

// Resize changes the surface size. It takes effect on the next render tick.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.viewport.Store(&image.Point{X: width, Y: height})
	s.log.Debug("viewport resized", "width", width, "height", height)
}

// Size returns the requested surface size.
func (s *Session) Size() (int, int) {
	p := s.viewport.Load()
	return p.X, p.Y
}

// Metrics returns the session's collectors.
func (s *Session) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Session) handleStatus(status gesture.Status) {
	s.metrics.StatusChanges.WithLabelValues(status.String()).Inc()
	s.log.Info("gesture status", "status", status.String())

	s.seq.HandleStatus(status)

	s.cbMu.RLock()
	fn := s.onStatus
	s.cbMu.RUnlock()
	if fn != nil {
		fn(status)
	}
}

func (s *Session) handleCount(count int) {
	s.metrics.CloneCount.Set(float64(count))
	s.log.Debug("clone count", "count", count)

	s.cbMu.RLock()
	fn := s.onCount
	s.cbMu.RUnlock()
	if fn != nil {
		fn(count)
	}
}
