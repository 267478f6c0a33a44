package vision

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"

	"gocv.io/x/gocv"

	"boxcam/recording"
	"boxcam/utils"
)

// ErrSourceUnavailable is returned when the camera or video cannot be opened
var ErrSourceUnavailable = errors.New("video source unavailable")

// MatFrame adapts a gocv.Mat to detection.Frame.
// The Mat is owned by the Source and is only valid until the next Read.
type MatFrame struct {
	Mat gocv.Mat
}

// Size returns the frame dimensions
func (f MatFrame) Size() image.Point {
	return image.Pt(f.Mat.Cols(), f.Mat.Rows())
}

// Crop copies r out of the frame
func (f MatFrame) Crop(r image.Rectangle) (image.Image, error) {
	r = utils.ClampRect(r, f.Mat.Cols(), f.Mat.Rows())
	if r.Empty() {
		return image.NewNRGBA(image.Rectangle{}), nil
	}

	region := f.Mat.Region(r)
	defer region.Close()

	img, err := region.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert region %v: %w", r, err)
	}
	return img, nil
}

// SourceOptions controls how frames are delivered
type SourceOptions struct {
	// Resize every frame to this size; zero keeps the native size.
	Resize image.Point
	// Capture asks the device for this resolution; zero leaves the driver default.
	Capture image.Point
}

// Source reads frames from a camera, file or stream URL
type Source struct {
	id      string
	capture *gocv.VideoCapture
	raw     gocv.Mat
	resized gocv.Mat
	opts    SourceOptions
	logger  *slog.Logger
}

// OpenSource opens id as an existing file, a device index or a URL, in that order
func OpenSource(id string, opts SourceOptions, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var capture *gocv.VideoCapture
	var err error
	if _, statErr := os.Stat(id); statErr == nil {
		capture, err = gocv.VideoCaptureFile(id)
	} else if index, convErr := strconv.Atoi(id); convErr == nil {
		capture, err = gocv.VideoCaptureDevice(index)
	} else {
		capture, err = gocv.VideoCaptureFile(id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrSourceUnavailable, id, err)
	}
	if !capture.IsOpened() {
		_ = capture.Close()
		return nil, fmt.Errorf("%w %q", ErrSourceUnavailable, id)
	}

	if opts.Capture.X > 0 && opts.Capture.Y > 0 {
		logger.Info("Requesting capture resolution", "width", opts.Capture.X, "height", opts.Capture.Y)
		capture.Set(gocv.VideoCaptureFrameWidth, float64(opts.Capture.X))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(opts.Capture.Y))
	}

	s := &Source{
		id:      id,
		capture: capture,
		raw:     gocv.NewMat(),
		resized: gocv.NewMat(),
		opts:    opts,
		logger:  logger,
	}

	info := s.Info()
	logger.Info("Source opened", "source", id, "width", info.Width, "height", info.Height, "fps", info.FPS)
	return s, nil
}

// Read returns the next frame. ok is false at the end of the stream.
func (s *Source) Read() (MatFrame, bool) {
	if ok := s.capture.Read(&s.raw); !ok || s.raw.Empty() {
		return MatFrame{}, false
	}

	target := s.opts.Resize
	if target.X <= 0 || target.Y <= 0 || (s.raw.Cols() == target.X && s.raw.Rows() == target.Y) {
		return MatFrame{Mat: s.raw}, true
	}

	if err := gocv.Resize(s.raw, &s.resized, target, 0, 0, gocv.InterpolationLinear); err != nil {
		s.logger.Warn("Failed to resize frame, using native size", "error", err)
		return MatFrame{Mat: s.raw}, true
	}
	return MatFrame{Mat: s.resized}, true
}

// Info reports the size of delivered frames and the source frame rate
func (s *Source) Info() recording.SourceInfo {
	info := recording.SourceInfo{
		Width:  int(s.capture.Get(gocv.VideoCaptureFrameWidth)),
		Height: int(s.capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:    s.capture.Get(gocv.VideoCaptureFPS),
	}
	if r := s.opts.Resize; r.X > 0 && r.Y > 0 {
		info.Width, info.Height = r.X, r.Y
	}
	return info
}

// Close releases the capture device and frame buffers
func (s *Source) Close() error {
	_ = s.raw.Close()
	_ = s.resized.Close()
	return s.capture.Close()
}
