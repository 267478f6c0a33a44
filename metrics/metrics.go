package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boxcam/events"
)

// Metrics holds the boxcam collectors
type Metrics struct {
	FramesProcessed   prometheus.Counter
	CandidatesSeen    prometheus.Counter
	SnapshotsTaken    prometheus.Counter
	SnapshotErrors    prometheus.Counter
	RecordingActive   prometheus.Gauge
	RecordingsStarted prometheus.Counter
	RecordingErrors   prometheus.Counter
	FramesRecorded    prometheus.Counter
	FrameSeconds      prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		FramesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_frames_processed_total",
			Help: "Frames read from the source and run through the loop",
		}),
		CandidatesSeen: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_candidates_total",
			Help: "Contours that passed the minimum area filter",
		}),
		SnapshotsTaken: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_snapshots_total",
			Help: "Snapshots written to disk",
		}),
		SnapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_snapshot_errors_total",
			Help: "Snapshots that could not be cropped or written",
		}),
		RecordingActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "boxcam_recording_active",
			Help: "1 while a recording session is open",
		}),
		RecordingsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_recordings_started_total",
			Help: "Recording sessions opened",
		}),
		RecordingErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_recording_errors_total",
			Help: "Recording sessions that failed to open",
		}),
		FramesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxcam_frames_recorded_total",
			Help: "Raw frames appended to recordings",
		}),
		FrameSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "boxcam_frame_seconds",
			Help:    "Time spent processing one frame",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		gatherer: reg,
	}
}

// Subscribe updates the event counters from bus events. RecordingActive is
// set by the frame loop itself since subscribers run out of order.
// Returns a function that removes all subscriptions.
func (m *Metrics) Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(events.SnapshotTakenEvent) { m.SnapshotsTaken.Inc() }),
		bus.Subscribe(func(events.SnapshotFailedEvent) { m.SnapshotErrors.Inc() }),
		bus.Subscribe(func(events.RecordingStartedEvent) { m.RecordingsStarted.Inc() }),
		bus.Subscribe(func(events.RecordingFailedEvent) { m.RecordingErrors.Inc() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics endpoint failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
