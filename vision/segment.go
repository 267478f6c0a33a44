package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"boxcam/detection"
	"boxcam/types"
)

// MOG2Segmenter separates moving foreground from a learned background.
// Shadow pixels are thresholded away so only solid foreground remains.
type MOG2Segmenter struct {
	backSub gocv.BackgroundSubtractorMOG2
	fgMask  gocv.Mat
	cutoff  float32
}

// NewMOG2Segmenter creates the background model
func NewMOG2Segmenter(cfg types.DetectionConfig) *MOG2Segmenter {
	return &MOG2Segmenter{
		backSub: gocv.NewBackgroundSubtractorMOG2WithParams(cfg.History, cfg.VarThreshold, cfg.DetectShadows),
		fgMask:  gocv.NewMat(),
		cutoff:  cfg.ShadowCutoff,
	}
}

// Segment updates the model with frame and returns the binary foreground mask.
// The returned Mat is reused on the next call.
func (s *MOG2Segmenter) Segment(frame detection.Frame) (detection.Mask, error) {
	f, ok := frame.(MatFrame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}

	if err := s.backSub.Apply(f.Mat, &s.fgMask); err != nil {
		return nil, fmt.Errorf("apply background subtractor: %w", err)
	}

	// MOG2 marks shadows as 127
	gocv.Threshold(s.fgMask, &s.fgMask, s.cutoff, 255, gocv.ThresholdBinary)

	return s.fgMask, nil
}

// Close releases the model and mask
func (s *MOG2Segmenter) Close() error {
	_ = s.fgMask.Close()
	return s.backSub.Close()
}

// ContourFinder closes gaps in the mask and returns its outer contours
type ContourFinder struct {
	kernel     gocv.Mat
	iterations int
	cleaned    gocv.Mat
}

// NewContourFinder builds an elliptic structuring element of the configured size
func NewContourFinder(cfg types.DetectionConfig) *ContourFinder {
	return &ContourFinder{
		kernel:     gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(cfg.MorphKernel, cfg.MorphKernel)),
		iterations: cfg.MorphIterations,
		cleaned:    gocv.NewMat(),
	}
}

// ExtractContours runs a morphological close and finds the external contours
func (c *ContourFinder) ExtractContours(mask detection.Mask) ([]detection.Contour, error) {
	m, ok := mask.(gocv.Mat)
	if !ok {
		return nil, fmt.Errorf("unsupported mask type %T", mask)
	}

	if err := gocv.MorphologyExWithParams(m, &c.cleaned, gocv.MorphClose, c.kernel, c.iterations, gocv.BorderConstant); err != nil {
		return nil, fmt.Errorf("close mask: %w", err)
	}

	contours := gocv.FindContours(c.cleaned, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]detection.Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pts := contours.At(i)
		out = append(out, detection.RectContour{
			Rect:     gocv.BoundingRect(pts),
			RectArea: gocv.ContourArea(pts),
		})
	}
	return out, nil
}

// Mask returns the cleaned mask of the last call, for the mask window
func (c *ContourFinder) Mask() gocv.Mat {
	return c.cleaned
}

// Close releases the kernel and mask
func (c *ContourFinder) Close() error {
	_ = c.cleaned.Close()
	return c.kernel.Close()
}
