package recording

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"boxcam/types"
)

var (
	// ErrSinkOpen is returned when no configured codec could open the output file
	ErrSinkOpen = errors.New("could not open video sink")
	// ErrAlreadyRecording is returned by Start while a session is active
	ErrAlreadyRecording = errors.New("recording already active")
	// ErrNotRecording is returned by Stop while idle
	ErrNotRecording = errors.New("no active recording")
)

// State of the recording controller
type State int

const (
	// StateIdle has no open sink
	StateIdle State = iota
	// StateRecording appends every raw frame to the sink
	StateRecording
)

func (s State) String() string {
	if s == StateRecording {
		return "RECORDING"
	}
	return "IDLE"
}

// SourceInfo is what the frame source reports about itself
type SourceInfo struct {
	Width  int
	Height int
	FPS    float64
}

// Sink receives raw frames for one recording
type Sink[F any] interface {
	Append(frame F) error
	Close() error
}

// SinkOpener creates video sinks
type SinkOpener[F any] interface {
	OpenSink(path, codec string, fps float64, size image.Point) (Sink[F], error)
}

// Session describes one recording
type Session struct {
	Path      string
	Codec     string
	StartTime time.Time
	FPS       float64
	Size      image.Point
	Frames    int
}

// Controller toggles recording of the raw stream.
// It is owned by the frame loop and is not safe for concurrent use.
type Controller[F any] struct {
	opener  SinkOpener[F]
	config  types.VideoConfig
	dir     string
	sink    Sink[F]
	session Session
	state   State
	now     func() time.Time
	logger  *slog.Logger
}

// NewController creates an idle controller writing into dir
func NewController[F any](opener SinkOpener[F], dir string, config types.VideoConfig, logger *slog.Logger) *Controller[F] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[F]{
		opener: opener,
		config: config,
		dir:    dir,
		state:  StateIdle,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock replaces the time source
func (c *Controller[F]) SetClock(now func() time.Time) {
	c.now = now
}

// State returns the current state
func (c *Controller[F]) State() State {
	return c.state
}

// IsRecording reports whether a session is open
func (c *Controller[F]) IsRecording() bool {
	return c.state == StateRecording
}

// Session returns the active session, or the zero Session when idle
func (c *Controller[F]) Session() Session {
	if c.state != StateRecording {
		return Session{}
	}
	return c.session
}

// FileName returns recording_<YYYY-MM-DD_HH-MM-SS>.<ext>
func FileName(start time.Time, ext string) string {
	return fmt.Sprintf("recording_%s.%s", start.Format("2006-01-02_15-04-05"), ext)
}

// Start opens a sink sized to the source. Codecs are tried in configured order.
// On failure the controller stays idle.
func (c *Controller[F]) Start(info SourceInfo) (Session, error) {
	if c.state == StateRecording {
		return Session{}, ErrAlreadyRecording
	}

	fps := info.FPS
	if fps <= 0 {
		fps = c.config.FPS
		c.logger.Warn("Source reported no frame rate, using default", "fps", fps)
	}

	start := c.now()
	path := filepath.Join(c.dir, FileName(start, c.config.Extension))
	size := image.Pt(info.Width, info.Height)

	var sink Sink[F]
	var err error
	var usedCodec string
	for _, codec := range c.config.Codecs {
		sink, err = c.opener.OpenSink(path, codec, fps, size)
		if err == nil {
			usedCodec = codec
			break
		}
		c.logger.Debug("Codec rejected", "codec", codec, "error", err)
	}
	if sink == nil {
		if err == nil {
			err = errors.New("no codecs configured")
		}
		return Session{}, fmt.Errorf("%w %s: %w", ErrSinkOpen, path, err)
	}

	c.sink = sink
	c.state = StateRecording
	c.session = Session{
		Path:      path,
		Codec:     usedCodec,
		StartTime: start,
		FPS:       fps,
		Size:      size,
	}
	c.logger.Info("Recording started", "path", path, "codec", usedCodec, "fps", fps, "width", size.X, "height", size.Y)

	return c.session, nil
}

// Stop flushes and releases the sink
func (c *Controller[F]) Stop() (Session, error) {
	if c.state != StateRecording {
		return Session{}, ErrNotRecording
	}

	session := c.session
	var err error
	if c.sink != nil {
		if closeErr := c.sink.Close(); closeErr != nil {
			err = fmt.Errorf("error closing video sink: %w", closeErr)
		}
		c.sink = nil
	}

	c.state = StateIdle
	c.session = Session{}
	c.logger.Info("Recording stopped", "path", session.Path, "frames", session.Frames)

	return session, err
}

// Toggle starts or stops recording.
// started is true when the call opened a new session.
func (c *Controller[F]) Toggle(info SourceInfo) (session Session, started bool, err error) {
	if c.state == StateRecording {
		session, err = c.Stop()
		return session, false, err
	}
	session, err = c.Start(info)
	return session, err == nil, err
}

// WriteFrame appends a raw frame when recording; it is a no-op when idle.
// Callers must pass the frame as read from the source, before any overlay is drawn.
func (c *Controller[F]) WriteFrame(frame F) error {
	if c.state != StateRecording || c.sink == nil {
		return nil
	}
	if err := c.sink.Append(frame); err != nil {
		return err
	}
	c.session.Frames++
	return nil
}

// Elapsed returns the time since the session started, recomputed on every call
func (c *Controller[F]) Elapsed() time.Duration {
	if c.state != StateRecording {
		return 0
	}
	return c.now().Sub(c.session.StartTime)
}

// Close stops an active recording; used on quit and end of stream
func (c *Controller[F]) Close() error {
	if c.state != StateRecording {
		return nil
	}
	_, err := c.Stop()
	return err
}

// FormatElapsed renders a duration as HH:MM:SS
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
