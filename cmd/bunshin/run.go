package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/bunshin/internal/app"
	"github.com/ayusman/bunshin/internal/config"
	"github.com/ayusman/bunshin/internal/gesture"
	"github.com/ayusman/bunshin/internal/logging"
	"github.com/ayusman/bunshin/internal/tray"
)

// runOptions are flag values that override the environment.
type runOptions struct {
	EnvFile         string
	LogLevel        string
	LogFormat       string
	Camera          int
	Width           int
	Height          int
	MaxClones       int
	MotionThreshold float64
	NoSegmentation  bool
	NoWindow        bool
	NoTray          bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the camera and start the clone effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, runOpts)
		if err != nil {
			return err
		}
		return runSession(cmd.Context(), cfg)
	},
}

func init() {
	bindRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
}

func bindRunFlags(cmd *cobra.Command, opts *runOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.EnvFile, "env-file", ".env", "Environment file loaded before the process environment")
	f.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&opts.LogFormat, "log-format", "text", "Log format (text, json)")
	f.IntVarP(&opts.Camera, "camera", "c", 0, "Camera device index")
	f.IntVar(&opts.Width, "width", 1280, "Surface width in pixels")
	f.IntVar(&opts.Height, "height", 720, "Surface height in pixels")
	f.IntVarP(&opts.MaxClones, "max-clones", "m", 4, "Clone count the sequence stops at, a multiple of the clone step")
	f.Float64Var(&opts.MotionThreshold, "motion-threshold", 0, "Changed-pixel percentage a frame needs to be analysed (0 analyses every frame)")
	f.BoolVar(&opts.NoSegmentation, "no-segmentation", false, "Draw clones as panels instead of person cutouts")
	f.BoolVar(&opts.NoWindow, "no-window", false, "Do not open the preview window")
	f.BoolVar(&opts.NoTray, "no-tray", false, "Do not show the system tray menu")
}

// loadConfig reads the environment, then applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts runOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = opts.LogFormat
	}
	if f.Changed("camera") {
		cfg.CameraDevice = opts.Camera
	}
	if f.Changed("width") {
		cfg.Width = opts.Width
	}
	if f.Changed("height") {
		cfg.Height = opts.Height
	}
	if f.Changed("max-clones") {
		cfg.MaxClones = opts.MaxClones
	}
	if f.Changed("motion-threshold") {
		cfg.MotionThreshold = opts.MotionThreshold
	}
	if opts.NoSegmentation {
		cfg.Segmentation = false
	}
	if opts.NoWindow {
		cfg.Window = false
	}
	if opts.NoTray {
		cfg.Tray = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runSession(ctx context.Context, cfg *config.Config) error {
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surface := app.NewLatestSurface()
	defer surface.Close()

	session := app.New(app.FromEnv(cfg), app.Deps{Surface: surface})
	log := logging.WithSession(session.ID())

	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New(session, nil)
		tr.OnQuit(cancel)
		session.OnStatusChange(func(s gesture.Status) { tr.SetStatus(s.String()) })
		session.OnCountChange(tr.SetCount)
	}

	if err := session.Start(); err != nil {
		logging.WithError(err).Error("session failed to start", "session_id", session.ID())
		return err
	}
	start := time.Now()

	switch {
	case cfg.Window:
		if tr != nil {
			go tr.Run()
			defer tr.Quit()
		}
		showWindow(ctx, surface, "bunshin", cancel)
	case tr != nil:
		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		tr.Run()
	default:
		<-ctx.Done()
	}

	session.Stop()
	logSummary(log, session, time.Since(start))
	return nil
}

func logSummary(log *slog.Logger, session *app.Session, uptime time.Duration) {
	s := session.Metrics().Summary()
	log.Info("session summary",
		"uptime", uptime.Round(time.Second),
		"frames_rendered", s["bunshin_frames_rendered_total"],
		"ticks_skipped", s["bunshin_ticks_skipped_total"],
		"frames_captured", s["bunshin_frames_captured_total"],
		"inferences", s["bunshin_inferences_submitted_total"],
		"inferences_dropped", s["bunshin_inferences_dropped_total"],
		"inference_errors", s["bunshin_inference_errors_total"],
		"status_changes", s["bunshin_status_changes_total"],
	)
}
