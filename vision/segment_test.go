package vision

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"boxcam/types"
)

func TestContourFinderExtractsFilledBox(t *testing.T) {
	finder := NewContourFinder(types.DefaultDetectionConfig())
	defer finder.Close()

	mask := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8U)
	defer mask.Close()
	box := image.Rect(100, 50, 300, 250)
	_ = gocv.Rectangle(&mask, box, color.RGBA{R: 255, G: 255, B: 255}, -1)

	contours, err := finder.ExtractContours(mask)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	if got := contours[0].BoundingRect(); got != box {
		t.Errorf("Expected bounding rect %v, got %v", box, got)
	}
	if finder.Mask().Empty() {
		t.Error("Expected the cleaned mask to be kept for display")
	}
}

func TestContourFinderRejectsForeignMask(t *testing.T) {
	finder := NewContourFinder(types.DefaultDetectionConfig())
	defer finder.Close()

	if _, err := finder.ExtractContours("not a mat"); err == nil {
		t.Error("Expected an error for a non Mat mask")
	}
}

func TestMatFrameCropClampsToFrame(t *testing.T) {
	mat := gocv.NewMatWithSize(100, 200, gocv.MatTypeCV8UC3)
	defer mat.Close()
	frame := MatFrame{Mat: mat}

	if got := frame.Size(); got != image.Pt(200, 100) {
		t.Fatalf("Expected size 200x100, got %v", got)
	}

	crop, err := frame.Crop(image.Rect(150, 80, 260, 140))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if got := crop.Bounds().Size(); got != image.Pt(50, 20) {
		t.Errorf("Expected clamped 50x20 crop, got %v", got)
	}

	crop, err = frame.Crop(image.Rect(300, 300, 400, 400))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if !crop.Bounds().Empty() {
		t.Errorf("Expected empty crop outside the frame, got %v", crop.Bounds())
	}
}
