package ui

import (
	"image"

	"gocv.io/x/gocv"

	"boxcam/app"
	"boxcam/types"
	"boxcam/utils"
	"boxcam/vision"
)

// MaskSource exposes the latest foreground mask
type MaskSource interface {
	Mask() gocv.Mat
}

// DisplayOptions configures the windows
type DisplayOptions struct {
	Title string
	// Mask adds a second window showing the foreground mask when set.
	Mask MaskSource
	// MaxSize downscales larger frames for display only.
	MaxSize image.Point
}

// Display shows annotated copies of frames and polls the keyboard
type Display struct {
	window     *gocv.Window
	maskWindow *gocv.Window
	mask       MaskSource
	config     types.UIConfig
	maxSize    image.Point
	canvas     gocv.Mat
	scaled     gocv.Mat
}

// NewDisplay opens the frame window and, if requested, the mask window
func NewDisplay(config types.UIConfig, opts DisplayOptions) *Display {
	d := &Display{
		window:  gocv.NewWindow(opts.Title),
		mask:    opts.Mask,
		config:  config,
		maxSize: opts.MaxSize,
		canvas:  gocv.NewMat(),
		scaled:  gocv.NewMat(),
	}
	if opts.Mask != nil {
		d.maskWindow = gocv.NewWindow("Foreground Mask")
	}
	return d
}

// Show draws view onto a copy of frame, displays it and returns the pressed key or -1
func (d *Display) Show(frame vision.MatFrame, view app.View) int {
	frame.Mat.CopyTo(&d.canvas)
	if d.canvas.Empty() {
		logger().Warn("Failed to copy frame for display")
		return d.window.WaitKey(1)
	}

	RenderFrame(&d.canvas, view, d.config)

	shown := d.canvas
	size := image.Pt(d.canvas.Cols(), d.canvas.Rows())
	if d.maxSize.X > 0 && d.maxSize.Y > 0 && (size.X > d.maxSize.X || size.Y > d.maxSize.Y) {
		fit := utils.ScaleToFit(size, d.maxSize)
		if err := gocv.Resize(d.canvas, &d.scaled, fit, 0, 0, gocv.InterpolationArea); err == nil {
			shown = d.scaled
		}
	}

	d.window.IMShow(shown)
	if d.maskWindow != nil {
		if m := d.mask.Mask(); !m.Empty() {
			d.maskWindow.IMShow(m)
		}
	}

	return d.window.WaitKey(1)
}

// Close destroys the windows
func (d *Display) Close() error {
	_ = d.canvas.Close()
	_ = d.scaled.Close()
	if d.maskWindow != nil {
		_ = d.maskWindow.Close()
	}
	return d.window.Close()
}
