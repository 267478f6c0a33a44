package detection

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
)

var (
	// ErrInvalidTrigger is returned when the trigger fraction cannot place a line inside the frame
	ErrInvalidTrigger = errors.New("invalid trigger position")
	// ErrCapture marks a crossing box whose snapshot could not be produced
	ErrCapture = errors.New("capture failed")
)

// Mask is the foreground mask of one frame. Its contents are only meaningful
// to the ContourExtractor that pairs with the Segmenter that produced it.
// The Segmenter owns the mask and may reuse it on the next call; the pipeline never closes it.
type Mask any

// Segmenter updates the background model with a frame and returns its foreground mask.
// Shadow pixels must already be folded into the background.
type Segmenter interface {
	Segment(frame Frame) (Mask, error)
}

// ContourExtractor cleans a mask and returns its outer contours
type ContourExtractor interface {
	ExtractContours(mask Mask) ([]Contour, error)
}

// PipelineConfig holds the fixed detection parameters
type PipelineConfig struct {
	MinArea         float64
	TriggerFraction float64
}

// Result is what one frame produced
type Result struct {
	Candidates []Candidate
	TriggerX   int
	State      CaptureState
	Snapshot   *Snapshot
}

// Pipeline carries all state that survives from one frame to the next
type Pipeline struct {
	segmenter Segmenter
	extractor ContourExtractor
	debouncer *Debouncer
	config    PipelineConfig
	trigger   TriggerLine
	frames    int
	logger    *slog.Logger
}

// NewPipeline wires the collaborators to a debouncer
func NewPipeline(segmenter Segmenter, extractor ContourExtractor, debouncer *Debouncer, config PipelineConfig, logger *slog.Logger) (*Pipeline, error) {
	if config.TriggerFraction <= 0 || config.TriggerFraction >= 1 {
		return nil, fmt.Errorf("%w: fraction %.3f must be between 0 and 1", ErrInvalidTrigger, config.TriggerFraction)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		segmenter: segmenter,
		extractor: extractor,
		debouncer: debouncer,
		config:    config,
		logger:    logger,
	}, nil
}

// Process runs segmentation, contour extraction, filtering, the trigger test
// and the debouncer for one frame. Frames must be passed in order.
func (p *Pipeline) Process(frame Frame) (Result, error) {
	p.frames++

	width := frame.Size().X
	if p.trigger.FrameWidth != width {
		line, err := NewTriggerLine(width, p.config.TriggerFraction)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
		}
		p.trigger = line
		p.logger.Debug("Trigger line placed", "x", line.X, "frame_width", width)
	}

	mask, err := p.segmenter.Segment(frame)
	if err != nil {
		return Result{}, fmt.Errorf("segment frame %d: %w", p.frames, err)
	}

	contours, err := p.extractor.ExtractContours(mask)
	if err != nil {
		return Result{}, fmt.Errorf("extract contours frame %d: %w", p.frames, err)
	}

	candidates := FilterCandidates(contours, p.config.MinArea)

	before := p.debouncer.State()
	snap, err := p.debouncer.Evaluate(frame, candidates, p.trigger.X)
	if after := p.debouncer.State(); after != before {
		p.logger.Debug("Capture state changed", "from", before, "to", after, "frame", p.frames)
	}

	result := Result{
		Candidates: candidates,
		TriggerX:   p.trigger.X,
		State:      p.debouncer.State(),
		Snapshot:   snap,
	}
	if err != nil {
		return result, fmt.Errorf("%w on frame %d: %w", ErrCapture, p.frames, err)
	}
	return result, nil
}

// State returns the debouncer state
func (p *Pipeline) State() CaptureState {
	return p.debouncer.State()
}

// Frames returns how many frames have been processed
func (p *Pipeline) Frames() int {
	return p.frames
}

// SnapshotPath returns <dir>/box_<unix>_<counter>.<ext>
func SnapshotPath(dir string, snap Snapshot, ext string) string {
	return filepath.Join(dir, snap.ID()+"."+ext)
}
