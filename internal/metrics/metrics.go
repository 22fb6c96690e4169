// Package metrics defines the per-session Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of one session. Each session registers on its
// own registry, so several sessions (and tests) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	// FramesRendered counts ticks that produced a canvas, by render mode.
	FramesRendered *prometheus.CounterVec
	// TicksSkipped counts refresh ticks with no frame ready.
	TicksSkipped prometheus.Counter
	// FramesCaptured counts frames read from the camera.
	FramesCaptured prometheus.Counter
	// CaptureErrors counts failed camera reads.
	CaptureErrors prometheus.Counter

	// InferencesSubmitted counts frames handed to the detector.
	InferencesSubmitted prometheus.Counter
	// InferencesDropped counts frames discarded because an inference was in
	// flight, or because the scene was still.
	InferencesDropped *prometheus.CounterVec
	// InferenceErrors counts failed detector or segmenter calls, by source.
	InferenceErrors *prometheus.CounterVec
	// InferenceDuration observes detector round trips.
	InferenceDuration prometheus.Histogram

	// StatusChanges counts emitted gesture statuses.
	StatusChanges *prometheus.CounterVec
	// CloneCount is the live clone count.
	CloneCount prometheus.Gauge
	// RenderMode is the mode of the last rendered tick (0 idle, 1 panels, 2 segmentation).
	RenderMode prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		FramesRendered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bunshin_frames_rendered_total",
				Help: "Canvases composited, by render mode",
			},
			[]string{"mode"},
		),
		TicksSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "bunshin_ticks_skipped_total",
			Help: "Refresh ticks skipped because no frame was ready",
		}),
		FramesCaptured: f.NewCounter(prometheus.CounterOpts{
			Name: "bunshin_frames_captured_total",
			Help: "Frames read from the camera",
		}),
		CaptureErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "bunshin_capture_errors_total",
			Help: "Failed camera reads",
		}),

		InferencesSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "bunshin_inferences_submitted_total",
			Help: "Frames handed to the landmark detector",
		}),
		InferencesDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bunshin_inferences_dropped_total",
				Help: "Frames not analysed, by reason (busy, still)",
			},
			[]string{"reason"},
		),
		InferenceErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bunshin_inference_errors_total",
				Help: "Failed model calls, by source (hands, segment)",
			},
			[]string{"source"},
		),
		InferenceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bunshin_inference_duration_seconds",
			Help:    "Landmark detection round trip in seconds",
			Buckets: []float64{.005, .01, .02, .033, .05, .1, .25, .5, 1},
		}),

		StatusChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bunshin_status_changes_total",
				Help: "Gesture status edges, by new status",
			},
			[]string{"status"},
		),
		CloneCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "bunshin_clone_count",
			Help: "Current clone count",
		}),
		RenderMode: f.NewGauge(prometheus.GaugeOpts{
			Name: "bunshin_render_mode",
			Help: "Render mode of the last tick (0=idle, 1=panels, 2=segmentation)",
		}),
	}
}

// Drop reasons.
const (
	DropBusy  = "busy"
	DropStill = "still"
)

// Inference sources.
const (
	SourceHands   = "hands"
	SourceSegment = "segment"
)

// Summary sums every counter and gauge in the registry by metric name,
// across label values. It is meant for a shutdown log line.
func (m *Metrics) Summary() map[string]float64 {
	out := make(map[string]float64)

	families, err := m.Registry.Gather()
	if err != nil {
		return out
	}
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				total += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out
}
