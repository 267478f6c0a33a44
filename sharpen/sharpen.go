// Package sharpen implements unsharp masking for captured snapshots.
package sharpen

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/gift"

	"boxcam/types"
)

// Options configures the unsharp mask.
type Options struct {
	// Radius is the half size of the Gaussian kernel; 2 gives a 5x5 kernel.
	Radius int
	// Sigma is the Gaussian standard deviation. Zero or less derives it from Radius.
	Sigma float64
	// Amount of 1.0 leaves the image unchanged, larger values sharpen.
	Amount float64
	// Threshold skips pixels whose difference to the blurred copy is below it (0-255 scale).
	Threshold float64
}

// DefaultOptions returns a 5x5 kernel, sigma 1 and amount 2
func DefaultOptions() Options {
	return OptionsFromConfig(types.DefaultSharpenConfig())
}

// OptionsFromConfig converts the configured sharpening values
func OptionsFromConfig(cfg types.SharpenConfig) Options {
	return Options{
		Radius:    cfg.Radius,
		Sigma:     cfg.Sigma,
		Amount:    cfg.Amount,
		Threshold: cfg.Threshold,
	}
}

// Sharpen returns original*amount - blurred*(amount-1), clamped to the pixel range.
// The input is never modified. Empty images and Amount == 1 return img as is.
func Sharpen(img image.Image, opts Options) image.Image {
	if img == nil || img.Bounds().Empty() {
		return img
	}
	if opts.Amount == 1 {
		return img
	}

	bounds := img.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	src := image.NewNRGBA(rect)
	draw.Draw(src, rect, img, bounds.Min, draw.Src)

	blurred := src
	if kernel := GaussianKernel(opts.Radius, opts.Sigma); len(kernel) > 1 {
		blurred = image.NewNRGBA(rect)
		gift.New(gift.Convolution(kernel, true, false, false, 0)).Draw(blurred, src)
	}

	out := image.NewNRGBA(rect)
	amount := opts.Amount
	for i := 0; i+3 < len(src.Pix); i += 4 {
		if opts.Threshold > 0 && maxDiff(src.Pix[i:i+3], blurred.Pix[i:i+3]) < opts.Threshold {
			copy(out.Pix[i:i+4], src.Pix[i:i+4])
			continue
		}
		for c := 0; c < 3; c++ {
			v := float64(src.Pix[i+c])*amount - float64(blurred.Pix[i+c])*(amount-1)
			out.Pix[i+c] = clampUint8(v)
		}
		out.Pix[i+3] = src.Pix[i+3]
	}

	return out
}

// GaussianKernel builds a normalized (2*radius+1)^2 kernel in row-major order.
// A non-positive sigma is derived from the kernel size the same way OpenCV does.
func GaussianKernel(radius int, sigma float64) []float32 {
	if radius <= 0 {
		return []float32{1}
	}
	size := 2*radius + 1
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	weights := make([]float64, size)
	var sum float64
	for i := range weights {
		d := float64(i - radius)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}

	kernel := make([]float32, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			kernel[y*size+x] = float32(weights[y] * weights[x] / (sum * sum))
		}
	}
	return kernel
}

func maxDiff(a, b []uint8) float64 {
	var m float64
	for i := range a {
		if d := math.Abs(float64(a[i]) - float64(b[i])); d > m {
			m = d
		}
	}
	return m
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
