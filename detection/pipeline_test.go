package detection

import (
	"errors"
	"image"
	"testing"
	"time"

	"boxcam/sharpen"
)

// scriptedSegmenter hands out the frame index as the mask
type scriptedSegmenter struct {
	calls int
	err   error
}

func (s *scriptedSegmenter) Segment(Frame) (Mask, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	s.calls++
	return idx, nil
}

// scriptedExtractor returns the contours scripted for each frame index
type scriptedExtractor struct {
	frames [][]Contour
}

func (e *scriptedExtractor) ExtractContours(mask Mask) ([]Contour, error) {
	idx := mask.(int)
	if idx >= len(e.frames) {
		return nil, nil
	}
	return e.frames[idx], nil
}

func newTestPipeline(t *testing.T, frames [][]Contour, minArea, fraction float64) (*Pipeline, *scriptedSegmenter) {
	t.Helper()
	d := NewDebouncer(sharpen.DefaultOptions())
	d.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	seg := &scriptedSegmenter{}
	p, err := NewPipeline(seg, &scriptedExtractor{frames: frames}, d, PipelineConfig{
		MinArea:         minArea,
		TriggerFraction: fraction,
	}, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p, seg
}

func TestPipelineSlidingBoxScenario(t *testing.T) {
	const (
		w = 375
		h = 400
	)

	var frames [][]Contour
	var xs []int
	for i := 0; i < 10; i++ {
		x := 500 + i*150/9
		xs = append(xs, x)
		frames = append(frames, []Contour{RectContour{Rect: rect(x, 40, w, h), RectArea: w * h}})
	}
	for i := 0; i < 5; i++ {
		frames = append(frames, nil)
	}

	p, _ := newTestPipeline(t, frames, 100000, 0.9)
	frame := solidFrame(640, 480)

	var snaps []int
	for i := range frames {
		res, err := p.Process(frame)
		if err != nil {
			t.Fatalf("frame %d: Process failed: %v", i, err)
		}
		if res.TriggerX != 576 {
			t.Fatalf("frame %d: expected trigger 576, got %d", i, res.TriggerX)
		}
		if res.Snapshot != nil {
			snaps = append(snaps, i)
		}
	}

	if len(snaps) != 1 {
		t.Fatalf("Expected exactly 1 snapshot, got %d at frames %v", len(snaps), snaps)
	}
	x := xs[snaps[0]]
	if !(500 <= x && x < 576 && 576 < x+w) {
		t.Errorf("Snapshot fired at x=%d, outside the crossing window", x)
	}
	if p.State() != StateReady {
		t.Errorf("Expected READY after the box left, got %v", p.State())
	}
	if p.Frames() != 15 {
		t.Errorf("Expected 15 frames processed, got %d", p.Frames())
	}
}

func TestPipelineNoCandidatesStaysReady(t *testing.T) {
	noise := []Contour{RectContour{Rect: rect(570, 10, 20, 20), RectArea: 400}}
	frames := [][]Contour{nil, noise, nil, noise, noise, nil}

	p, _ := newTestPipeline(t, frames, 100000, 0.9)
	frame := solidFrame(640, 480)

	for i := range frames {
		res, err := p.Process(frame)
		if err != nil {
			t.Fatalf("frame %d: Process failed: %v", i, err)
		}
		if res.Snapshot != nil {
			t.Fatalf("frame %d: unexpected snapshot", i)
		}
		if res.State != StateReady {
			t.Fatalf("frame %d: expected READY, got %v", i, res.State)
		}
		if len(res.Candidates) != 0 {
			t.Fatalf("frame %d: expected small contours filtered out, got %d", i, len(res.Candidates))
		}
	}
}

func TestPipelineTwoBoxesWithGap(t *testing.T) {
	box := []Contour{RectContour{Rect: rect(500, 40, 200, 300), RectArea: 60000}}
	frames := [][]Contour{box, box, nil, box, box}

	p, _ := newTestPipeline(t, frames, 1000, 0.9)
	frame := solidFrame(640, 480)

	var counters []int
	for range frames {
		res, err := p.Process(frame)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if res.Snapshot != nil {
			counters = append(counters, res.Snapshot.Counter)
		}
	}

	if len(counters) != 2 || counters[0] != 0 || counters[1] != 1 {
		t.Errorf("Expected counters [0 1], got %v", counters)
	}
}

func TestPipelineSegmenterError(t *testing.T) {
	p, seg := newTestPipeline(t, nil, 100, 0.5)
	seg.err = errors.New("model failure")

	if _, err := p.Process(solidFrame(100, 100)); err == nil {
		t.Fatal("Expected segmentation error")
	}
}

func TestNewPipelineRejectsBadFraction(t *testing.T) {
	for _, fraction := range []float64{0, 1, -1, 2} {
		_, err := NewPipeline(&scriptedSegmenter{}, &scriptedExtractor{}, NewDebouncer(sharpen.DefaultOptions()), PipelineConfig{TriggerFraction: fraction}, nil)
		if !errors.Is(err, ErrInvalidTrigger) {
			t.Errorf("fraction %v: expected ErrInvalidTrigger, got %v", fraction, err)
		}
	}
}

func TestPipelineRejectsTinyFrame(t *testing.T) {
	p, _ := newTestPipeline(t, nil, 100, 0.5)

	_, err := p.Process(ImageFrame{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1))})
	if !errors.Is(err, ErrInvalidTrigger) {
		t.Errorf("Expected ErrInvalidTrigger for a 1px wide frame, got %v", err)
	}
}

type maskRecorder struct {
	seen []Mask
}

func (m *maskRecorder) ExtractContours(mask Mask) ([]Contour, error) {
	m.seen = append(m.seen, mask)
	return nil, nil
}

func TestPipelineHandsMaskToExtractorUnchanged(t *testing.T) {
	ext := &maskRecorder{}
	p, err := NewPipeline(&scriptedSegmenter{}, ext, NewDebouncer(sharpen.DefaultOptions()), PipelineConfig{TriggerFraction: 0.5}, nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := p.Process(solidFrame(100, 100)); err != nil {
			t.Fatalf("Process failed: %v", err)
		}
	}

	for i, m := range ext.seen {
		if got, ok := m.(int); !ok || got != i {
			t.Errorf("frame %d: expected segmenter mask %d, got %v", i, i, m)
		}
	}
	if len(ext.seen) != 3 {
		t.Errorf("Expected 3 masks, got %d", len(ext.seen))
	}
}
