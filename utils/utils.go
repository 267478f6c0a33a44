package utils

import (
	"image"
)

// ClampRect keeps a rectangle inside an image of the given size.
// The result may be empty when rect lies fully outside the image.
func ClampRect(rect image.Rectangle, imgWidth, imgHeight int) image.Rectangle {
	rect = rect.Canon()

	if rect.Min.X < 0 {
		rect.Min.X = 0
	}
	if rect.Min.Y < 0 {
		rect.Min.Y = 0
	}
	if rect.Max.X > imgWidth {
		rect.Max.X = imgWidth
	}
	if rect.Max.Y > imgHeight {
		rect.Max.Y = imgHeight
	}

	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return image.Rectangle{}
	}

	return rect
}

// ScaleToFit returns the size that fits inside bounds while keeping the aspect ratio of size
func ScaleToFit(size, bounds image.Point) image.Point {
	if size.X <= 0 || size.Y <= 0 || bounds.X <= 0 || bounds.Y <= 0 {
		return image.Point{}
	}

	scale := float64(bounds.X) / float64(size.X)
	if s := float64(bounds.Y) / float64(size.Y); s < scale {
		scale = s
	}

	return image.Pt(int(float64(size.X)*scale), int(float64(size.Y)*scale))
}
