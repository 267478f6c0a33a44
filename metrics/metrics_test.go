package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"boxcam/events"
)

func waitFor(t *testing.T, c prometheus.Collector, want float64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(c) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %v, got %v", want, testutil.ToFloat64(c))
}

func TestSubscribeCountsEvents(t *testing.T) {
	m := New()
	bus := events.New()
	unsub := m.Subscribe(bus)
	defer unsub()

	bus.Publish(events.SnapshotTakenEvent{Counter: 0})
	bus.Publish(events.SnapshotTakenEvent{Counter: 1})
	bus.Publish(events.SnapshotFailedEvent{Counter: 2})
	bus.Publish(events.RecordingStartedEvent{Path: "a.avi"})

	waitFor(t, m.SnapshotsTaken, 2)
	waitFor(t, m.SnapshotErrors, 1)
	waitFor(t, m.RecordingsStarted, 1)

	bus.Publish(events.RecordingFailedEvent{Error: "no codec"})
	waitFor(t, m.RecordingErrors, 1)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.FramesProcessed.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "boxcam_frames_processed_total 3") {
		t.Errorf("Expected frame counter in output, got:\n%s", rec.Body.String())
	}
}
