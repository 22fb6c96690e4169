// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of a session. Values come from BUNSHIN_*
// environment variables, optionally seeded from a .env file.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	CameraDevice int `env:"CAMERA_DEVICE" envDefault:"0"`
	CameraWidth  int `env:"CAMERA_WIDTH" envDefault:"640"`
	CameraHeight int `env:"CAMERA_HEIGHT" envDefault:"480"`
	CaptureFPS   int `env:"CAPTURE_FPS" envDefault:"30"`

	Width       int `env:"WIDTH" envDefault:"1280"`
	Height      int `env:"HEIGHT" envDefault:"720"`
	RefreshRate int `env:"REFRESH_RATE" envDefault:"60"`

	MaxClones     int           `env:"MAX_CLONES" envDefault:"4"`
	CloneStep     int           `env:"CLONE_STEP" envDefault:"2"`
	CloneInterval time.Duration `env:"CLONE_INTERVAL" envDefault:"400ms"`

	FarDistance    float64 `env:"FAR_DISTANCE" envDefault:"0.3"`
	ActiveDistance float64 `env:"ACTIVE_DISTANCE" envDefault:"0.15"`
	FlashDecay     float64 `env:"FLASH_DECAY" envDefault:"0.85"`

	Segmentation    bool          `env:"SEGMENTATION" envDefault:"true"`
	MinConfidence   float64       `env:"MIN_CONFIDENCE" envDefault:"0.5"`
	DetectorIdle    time.Duration `env:"DETECTOR_IDLE" envDefault:"30s"`
	MotionThreshold float64       `env:"MOTION_THRESHOLD" envDefault:"0"`

	Window bool `env:"WINDOW" envDefault:"true"`
	Tray   bool `env:"TRAY" envDefault:"true"`
}

// Prefix is prepended to every variable name.
const Prefix = "BUNSHIN_"

// Load reads the given .env files (".env" when none are given), then the
// environment, and validates the result. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			slog.Debug("env file not loaded", "file", f, "error", err)
		}
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse maps the current environment onto a Config without validating it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.CameraWidth <= 0 || c.CameraHeight <= 0 {
		errs = append(errs, fmt.Errorf("camera size %dx%d must be positive", c.CameraWidth, c.CameraHeight))
	}
	if c.CaptureFPS <= 0 {
		errs = append(errs, fmt.Errorf("%sCAPTURE_FPS must be positive, got %d", Prefix, c.CaptureFPS))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport %dx%d must be positive", c.Width, c.Height))
	}
	if c.RefreshRate <= 0 || c.RefreshRate > 240 {
		errs = append(errs, fmt.Errorf("%sREFRESH_RATE must be in (0, 240], got %d", Prefix, c.RefreshRate))
	}
	if c.MaxClones <= 0 {
		errs = append(errs, fmt.Errorf("%sMAX_CLONES must be positive, got %d", Prefix, c.MaxClones))
	}
	if c.CloneStep <= 0 {
		errs = append(errs, fmt.Errorf("%sCLONE_STEP must be positive, got %d", Prefix, c.CloneStep))
	}
	if c.MaxClones > 0 && c.CloneStep > 0 && c.MaxClones%c.CloneStep != 0 {
		errs = append(errs, fmt.Errorf("%sMAX_CLONES (%d) must be a multiple of %sCLONE_STEP (%d)", Prefix, c.MaxClones, Prefix, c.CloneStep))
	}
	if c.CloneInterval <= 0 {
		errs = append(errs, fmt.Errorf("%sCLONE_INTERVAL must be positive, got %s", Prefix, c.CloneInterval))
	}
	if c.ActiveDistance <= 0 || c.FarDistance <= c.ActiveDistance {
		errs = append(errs, fmt.Errorf("distances must satisfy 0 < active (%g) < far (%g)", c.ActiveDistance, c.FarDistance))
	}
	if c.FlashDecay <= 0 || c.FlashDecay >= 1 {
		errs = append(errs, fmt.Errorf("%sFLASH_DECAY must be in (0, 1), got %g", Prefix, c.FlashDecay))
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("%sMIN_CONFIDENCE must be in [0, 1], got %g", Prefix, c.MinConfidence))
	}
	if c.MotionThreshold < 0 || c.MotionThreshold > 100 {
		errs = append(errs, fmt.Errorf("%sMOTION_THRESHOLD must be a percentage, got %g", Prefix, c.MotionThreshold))
	}

	return errors.Join(errs...)
}

// RefreshInterval returns the render tick period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Second / time.Duration(c.RefreshRate)
}

// CaptureInterval returns the camera poll period.
func (c *Config) CaptureInterval() time.Duration {
	return time.Second / time.Duration(c.CaptureFPS)
}
