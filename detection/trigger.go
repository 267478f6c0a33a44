package detection

import (
	"fmt"
)

// TriggerLine is the vertical line a box must straddle to be captured
type TriggerLine struct {
	X          int
	FrameWidth int
}

// NewTriggerLine places the line at fraction of the frame width.
// The resulting position must lie strictly inside the frame.
func NewTriggerLine(frameWidth int, fraction float64) (TriggerLine, error) {
	x := int(float64(frameWidth) * fraction)
	if x <= 0 || x >= frameWidth {
		return TriggerLine{}, fmt.Errorf("trigger line at %d is outside frame width %d (fraction %.3f)", x, frameWidth, fraction)
	}
	return TriggerLine{X: x, FrameWidth: frameWidth}, nil
}

// CrossesTrigger reports whether triggerX lies strictly between the candidate's left and right edges
func CrossesTrigger(c Candidate, triggerX int) bool {
	return c.X() < triggerX && triggerX < c.X()+c.Width()
}
