package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"boxcam/detection"
	"boxcam/events"
	"boxcam/input"
	"boxcam/metrics"
	"boxcam/recording"
)

// Source yields raw frames in order. ok is false once the stream is exhausted.
type Source[F any] interface {
	Read() (frame F, ok bool)
	Info() recording.SourceInfo
}

// View is everything the display needs besides the frame
type View struct {
	Detection *detection.Result
	Recording bool
	Elapsed   time.Duration
	Debug     bool
	Snapshots int
	Help      []string
}

// Display shows a frame with overlays and polls the keyboard.
// It must draw on its own copy and leave frame untouched.
type Display[F any] interface {
	Show(frame F, view View) (key int)
}

// ImageWriter stores snapshot images
type ImageWriter interface {
	WriteImage(path string, img image.Image) error
}

// Deps are the collaborators of a Loop. Pipeline and Recorder are optional.
type Deps[F detection.Frame] struct {
	Source      Source[F]
	Pipeline    *detection.Pipeline
	Recorder    *recording.Controller[F]
	Display     Display[F]
	Writer      ImageWriter
	Bus         *events.Bus
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	RunID       string
	SnapshotDir string
	ImageExt    string
}

// Summary describes how a run ended
type Summary struct {
	Frames    int
	Snapshots int
	Reason    string
}

// Loop is the single threaded frame loop. One frame is read, recorded,
// run through detection and displayed before the next one is read.
type Loop[F detection.Frame] struct {
	deps      Deps[F]
	logger    *slog.Logger
	debug     bool
	frames    int
	snapshots int
}

// New creates a loop
func New[F detection.Frame](deps Deps[F]) *Loop[F] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.ImageExt == "" {
		deps.ImageExt = "png"
	}
	return &Loop[F]{deps: deps, logger: logger}
}

// Run processes frames until the stream ends, the quit key is pressed or ctx is done.
// An active recording is always flushed before Run returns.
func (l *Loop[F]) Run(ctx context.Context) (summary Summary, err error) {
	reason := "end of stream"

	defer func() {
		if flushErr := l.flushRecording(); flushErr != nil {
			err = errors.Join(err, flushErr)
		}
		summary = Summary{Frames: l.frames, Snapshots: l.snapshots, Reason: reason}
		l.deps.Bus.Publish(events.StreamEndedEvent{
			RunID:     l.deps.RunID,
			Frames:    l.frames,
			Snapshots: l.snapshots,
			Reason:    reason,
			Timestamp: time.Now(),
		})
		l.logger.Info("Frame loop finished", "reason", reason, "frames", l.frames, "snapshots", l.snapshots)
	}()

	for {
		if ctx.Err() != nil {
			reason = "cancelled"
			return summary, nil
		}

		frame, ok := l.deps.Source.Read()
		if !ok {
			l.logger.Info("Source returned no frame, stream ended")
			return summary, nil
		}

		if l.step(frame) == input.CommandQuit {
			reason = "quit"
			return summary, nil
		}
	}
}

func (l *Loop[F]) step(frame F) input.Command {
	start := time.Now()
	l.frames++
	l.deps.Metrics.FramesProcessed.Inc()

	// Raw frame goes to the recording before anything is drawn.
	if rec := l.deps.Recorder; rec != nil && rec.IsRecording() {
		if err := rec.WriteFrame(frame); err != nil {
			l.logger.Warn("Failed to append frame to recording", "error", err)
		} else {
			l.deps.Metrics.FramesRecorded.Inc()
		}
	}

	view := View{
		Debug: l.debug,
		Help:  input.HelpLines(l.deps.Recorder != nil),
	}

	if l.deps.Pipeline != nil {
		result, err := l.deps.Pipeline.Process(frame)
		if err != nil {
			l.logger.Warn("Frame processing failed", "frame", l.frames, "error", err)
			if errors.Is(err, detection.ErrCapture) {
				l.publishSnapshotFailure(-1, "", err)
			}
		}
		l.deps.Metrics.CandidatesSeen.Add(float64(len(result.Candidates)))
		if result.Snapshot != nil {
			l.saveSnapshot(*result.Snapshot)
		}
		view.Detection = &result
	}

	if rec := l.deps.Recorder; rec != nil {
		view.Recording = rec.IsRecording()
		view.Elapsed = rec.Elapsed()
	}
	view.Snapshots = l.snapshots

	l.deps.Metrics.FrameSeconds.Observe(time.Since(start).Seconds())

	key := l.deps.Display.Show(frame, view)
	cmd := input.ParseKey(key)
	switch cmd {
	case input.CommandToggleRecording:
		l.toggleRecording()
	case input.CommandToggleDebug:
		l.debug = !l.debug
		l.logger.Info("Debug panel toggled", "enabled", l.debug)
	case input.CommandQuit:
		l.logger.Info("Quit requested")
	}
	return cmd
}

func (l *Loop[F]) saveSnapshot(snap detection.Snapshot) {
	path := detection.SnapshotPath(l.deps.SnapshotDir, snap, l.deps.ImageExt)

	if snap.Empty() {
		l.logger.Warn("Skipping empty snapshot", "path", path)
		l.publishSnapshotFailure(snap.Counter, path, errors.New("empty crop"))
		return
	}

	if err := l.deps.Writer.WriteImage(path, snap.Image); err != nil {
		l.logger.Error("Failed to write snapshot", "path", path, "error", err)
		l.publishSnapshotFailure(snap.Counter, path, err)
		return
	}

	l.snapshots++
	size := snap.Image.Bounds().Size()
	l.logger.Info("Snapshot taken", "path", path, "counter", snap.Counter, "width", size.X, "height", size.Y)
	l.deps.Bus.Publish(events.SnapshotTakenEvent{
		RunID:     l.deps.RunID,
		Counter:   snap.Counter,
		Path:      path,
		Width:     size.X,
		Height:    size.Y,
		Timestamp: snap.Timestamp,
	})
}

func (l *Loop[F]) publishSnapshotFailure(counter int, path string, err error) {
	l.deps.Bus.Publish(events.SnapshotFailedEvent{
		RunID:     l.deps.RunID,
		Counter:   counter,
		Path:      path,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

func (l *Loop[F]) toggleRecording() {
	rec := l.deps.Recorder
	if rec == nil {
		return
	}

	wasRecording := rec.IsRecording()
	elapsed := rec.Elapsed()

	session, started, err := rec.Toggle(l.deps.Source.Info())
	switch {
	case started:
		l.deps.Metrics.RecordingActive.Set(1)
		l.deps.Bus.Publish(events.RecordingStartedEvent{
			RunID:     l.deps.RunID,
			Path:      session.Path,
			Codec:     session.Codec,
			FPS:       session.FPS,
			Timestamp: session.StartTime,
		})
	case wasRecording:
		l.recordingStopped(session, elapsed)
		if err != nil {
			l.logger.Error("Failed to stop recording", "path", session.Path, "error", err)
		}
	case err != nil:
		l.logger.Error("Recording error", "error", err)
		l.deps.Bus.Publish(events.RecordingFailedEvent{
			RunID:     l.deps.RunID,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
	}
}

// flushRecording closes an active session on the way out of Run
func (l *Loop[F]) flushRecording() error {
	rec := l.deps.Recorder
	if rec == nil || !rec.IsRecording() {
		return nil
	}

	session, elapsed := rec.Session(), rec.Elapsed()
	err := rec.Close()
	l.recordingStopped(session, elapsed)
	if err != nil {
		return fmt.Errorf("stop recording %s: %w", session.Path, err)
	}
	return nil
}

func (l *Loop[F]) recordingStopped(session recording.Session, elapsed time.Duration) {
	l.deps.Metrics.RecordingActive.Set(0)
	l.deps.Bus.Publish(events.RecordingStoppedEvent{
		RunID:     l.deps.RunID,
		Path:      session.Path,
		Frames:    session.Frames,
		Duration:  elapsed,
		Timestamp: time.Now(),
	})
}
