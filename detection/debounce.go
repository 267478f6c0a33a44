package detection

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/gift"

	"boxcam/sharpen"
	"boxcam/utils"
)

// CaptureState tells whether the next crossing box may be captured
type CaptureState int

const (
	// StateReady captures the next box that crosses the trigger line
	StateReady CaptureState = iota
	// StateWaiting suppresses captures until a frame without candidates is seen
	StateWaiting
)

func (s CaptureState) String() string {
	switch s {
	case StateReady:
		return "READY"
	case StateWaiting:
		return "WAITING"
	default:
		return fmt.Sprintf("CaptureState(%d)", int(s))
	}
}

// Frame is one picture from the frame source
type Frame interface {
	Size() image.Point
	// Crop returns a copy of r; r is relative to the top left of the frame.
	Crop(r image.Rectangle) (image.Image, error)
}

// ImageFrame adapts an image.Image to Frame
type ImageFrame struct {
	Image image.Image
}

// Size returns the frame dimensions
func (f ImageFrame) Size() image.Point {
	return f.Image.Bounds().Size()
}

// Crop copies r out of the image
func (f ImageFrame) Crop(r image.Rectangle) (image.Image, error) {
	g := gift.New(gift.Crop(r.Add(f.Image.Bounds().Min)))
	out := image.NewNRGBA(g.Bounds(f.Image.Bounds()))
	g.Draw(out, f.Image)
	return out, nil
}

// Snapshot is the sharpened still of one box, taken once per crossing
type Snapshot struct {
	Counter   int
	Timestamp time.Time
	Rect      image.Rectangle
	Image     image.Image
}

// ID names the snapshot as box_<unix>_<counter>
func (s Snapshot) ID() string {
	return fmt.Sprintf("box_%d_%d", s.Timestamp.Unix(), s.Counter)
}

// Empty reports whether the snapshot holds no pixels
func (s Snapshot) Empty() bool {
	return s.Image == nil || s.Image.Bounds().Empty()
}

// Debouncer decides per frame whether a snapshot fires.
//
// After a capture it waits for a frame with no candidates at all before it
// captures again. It does not track identity, so two boxes that follow each
// other without an empty frame in between produce a single snapshot.
type Debouncer struct {
	state   CaptureState
	counter int
	sharpen sharpen.Options
	now     func() time.Time
}

// NewDebouncer creates a debouncer in the ready state
func NewDebouncer(opts sharpen.Options) *Debouncer {
	return &Debouncer{
		state:   StateReady,
		sharpen: opts,
		now:     time.Now,
	}
}

// SetClock replaces the time source used to stamp snapshots
func (d *Debouncer) SetClock(now func() time.Time) {
	d.now = now
}

// State returns the current capture state
func (d *Debouncer) State() CaptureState {
	return d.state
}

// Count returns how many snapshots have been emitted
func (d *Debouncer) Count() int {
	return d.counter
}

// Evaluate runs one frame through the state machine.
// At most one snapshot is returned per frame: the first candidate, in order,
// that crosses triggerX while the debouncer is ready.
func (d *Debouncer) Evaluate(frame Frame, candidates []Candidate, triggerX int) (*Snapshot, error) {
	anyFound := len(candidates) > 0

	var snap *Snapshot
	var err error
	for _, c := range candidates {
		if d.state != StateReady || !CrossesTrigger(c, triggerX) {
			continue
		}
		snap, err = d.capture(frame, c)
		d.state = StateWaiting
		break
	}

	if !anyFound {
		d.state = StateReady
	}

	return snap, err
}

func (d *Debouncer) capture(frame Frame, c Candidate) (*Snapshot, error) {
	size := frame.Size()
	rect := utils.ClampRect(c.Rect, size.X, size.Y)

	var img image.Image = image.NewNRGBA(image.Rectangle{})
	if !rect.Empty() {
		crop, err := frame.Crop(rect)
		if err != nil {
			return nil, fmt.Errorf("crop %v: %w", rect, err)
		}
		img = crop
	}

	// An empty crop is kept as is; there is nothing to sharpen.
	if !img.Bounds().Empty() {
		img = sharpen.Sharpen(img, d.sharpen)
	}

	snap := &Snapshot{
		Counter:   d.counter,
		Timestamp: d.now(),
		Rect:      rect,
		Image:     img,
	}
	d.counter++
	return snap, nil
}
