package detection

import (
	"image"
)

// Contour is one closed outline produced by the contour extraction step
type Contour interface {
	Area() float64
	BoundingRect() image.Rectangle
}

// RectContour is a contour that is exactly its bounding rectangle, with an explicit area
type RectContour struct {
	Rect     image.Rectangle
	RectArea float64
}

// Area returns the contour area
func (c RectContour) Area() float64 { return c.RectArea }

// BoundingRect returns the contour bounding rectangle
func (c RectContour) BoundingRect() image.Rectangle { return c.Rect }

// Candidate is a detected region that passed the minimum area filter
type Candidate struct {
	Rect image.Rectangle
	Area float64
}

// X returns the left edge of the candidate
func (c Candidate) X() int { return c.Rect.Min.X }

// Width returns the horizontal extent of the candidate
func (c Candidate) Width() int { return c.Rect.Dx() }

// FilterCandidates drops contours whose area is below minArea and keeps the rest in input order.
// A contour with area == minArea is kept.
func FilterCandidates(contours []Contour, minArea float64) []Candidate {
	candidates := make([]Candidate, 0, len(contours))
	for _, contour := range contours {
		area := contour.Area()
		if area < minArea {
			continue
		}
		candidates = append(candidates, Candidate{
			Rect: contour.BoundingRect(),
			Area: area,
		})
	}
	return candidates
}
