package app

import (
	"time"

	"github.com/ayusman/bunshin/internal/capture"
	"github.com/ayusman/bunshin/internal/config"
	"github.com/ayusman/bunshin/internal/detector"
	"github.com/ayusman/bunshin/internal/gesture"
	"github.com/ayusman/bunshin/internal/render"
	"github.com/ayusman/bunshin/internal/sequencer"
)

// Loop timing defaults.
const (
	DefaultCaptureInterval = time.Second / capture.DefaultFPS
	DefaultRefreshInterval = time.Second / 60
)

// Config holds the settings of one session.
type Config struct {
	Camera   capture.Config
	Detector detector.Config
	// Segmentation enables the person segmenter when no Segmenter is injected.
	Segmentation bool

	Thresholds gesture.Thresholds
	Sequence   sequencer.Config
	Render     render.Config

	CaptureInterval time.Duration
	RefreshInterval time.Duration
	// MotionThreshold is the changed-pixel percentage a frame needs to be
	// analysed. Zero analyses every frame.
	MotionThreshold float64
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		Camera:          capture.DefaultConfig(),
		Detector:        detector.DefaultConfig(),
		Segmentation:    true,
		Thresholds:      gesture.DefaultThresholds(),
		Sequence:        sequencer.DefaultConfig(),
		Render:          render.DefaultConfig(sequencer.DefaultMax),
		CaptureInterval: DefaultCaptureInterval,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// FromEnv maps loaded environment settings onto a session Config.
func FromEnv(c *config.Config) Config {
	cfg := DefaultConfig()

	cfg.Camera = capture.Config{
		DeviceID: c.CameraDevice,
		Width:    c.CameraWidth,
		Height:   c.CameraHeight,
		FPS:      c.CaptureFPS,
	}
	cfg.Detector.MinConfidence = c.MinConfidence
	cfg.Detector.MinTrackingConf = c.MinConfidence
	cfg.Detector.IdleShutdown = c.DetectorIdle
	cfg.Segmentation = c.Segmentation

	cfg.Thresholds = gesture.Thresholds{Far: c.FarDistance, Active: c.ActiveDistance}
	cfg.Sequence = sequencer.Config{Step: c.CloneStep, Interval: c.CloneInterval, Max: c.MaxClones}

	cfg.Render = render.DefaultConfig(c.MaxClones)
	cfg.Render.Width = c.Width
	cfg.Render.Height = c.Height
	cfg.Render.FlashDecay = c.FlashDecay

	cfg.CaptureInterval = c.CaptureInterval()
	cfg.RefreshInterval = c.RefreshInterval()
	cfg.MotionThreshold = c.MotionThreshold
	return cfg
}
