package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// ThresholdMode selects how the binarization cutoff is chosen.
type ThresholdMode string

const (
	// ThresholdFixed uses BinarizeOptions.Value as the cutoff. Scans with a
	// known brightness grade most reliably with a tuned fixed value.
	ThresholdFixed ThresholdMode = "fixed"

	// ThresholdOtsu derives the cutoff from the image histogram, for frames
	// taken under unknown lighting.
	ThresholdOtsu ThresholdMode = "otsu"
)

// Mask pixel values. A mask never contains anything else.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// BinarizeOptions configures Binarize.
type BinarizeOptions struct {
	// Mode picks the threshold policy. Empty means ThresholdFixed.
	Mode ThresholdMode

	// Value is the fixed cutoff (0-255). Pixels at or below it are foreground.
	Value uint8

	// BlurKernelSize is the Gaussian kernel width in pixels. Values of 1 or
	// less disable smoothing.
	BlurKernelSize int
}

// Mask is a binarized sheet: dark ink on light paper becomes Foreground on
// Background. It is an image.Image and can be encoded directly.
type Mask struct {
	*image.Gray

	// Threshold is the cutoff actually applied, which for ThresholdOtsu is
	// only known after the histogram has been analyzed.
	Threshold uint8 `json:"threshold"`
}

// Binarize converts a sheet into a two-valued foreground mask.
//
// The image is reduced to luminance, smoothed with a Gaussian blur to suppress
// sensor and print noise, and thresholded with inverted polarity so that
// filled bubbles become white (Foreground) pixels. The input is not modified.
// The mask always starts at (0,0); an input with a shifted origin is
// rebased first so that mask and annotation coordinates agree.
//
// # Errors
//
//   - ErrInvalidImage when img is nil or has zero area
//   - an error for an unknown ThresholdMode
func Binarize(img image.Image, opts BinarizeOptions) (*Mask, error) {
	if err := CheckImage(img); err != nil {
		return nil, err
	}

	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}

	gray := effect.Grayscale(img)
	if radius := blurRadius(opts.BlurKernelSize); radius > 0 {
		gray = effect.Grayscale(blur.Gaussian(gray, radius))
	}
	lum := luminance(gray)

	var threshold uint8
	switch opts.Mode {
	case "", ThresholdFixed:
		threshold = opts.Value
	case ThresholdOtsu:
		threshold = OtsuThreshold(histogram.NewRGBAHistogram(lum).R.Bins)
	default:
		return nil, fmt.Errorf("unknown threshold mode: %q", opts.Mode)
	}

	return &Mask{Gray: thresholdInverse(lum, threshold), Threshold: threshold}, nil
}

// blurRadius maps an OpenCV-style kernel size onto bild's Gaussian radius,
// which produces a kernel of length 2*radius+1.
func blurRadius(kernelSize int) float64 {
	if kernelSize <= 1 {
		return 0
	}
	return float64(kernelSize-1) / 2
}

// luminance packs the gray RGBA image bild produces into one byte per pixel.
func luminance(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := src.Pix[src.PixOffset(bounds.Min.X, y):]
		out := dst.Pix[dst.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			out[x] = row[x*4]
		}
	}
	return dst
}

// thresholdInverse marks pixels at or below threshold as Foreground.
func thresholdInverse(lum *image.Gray, threshold uint8) *image.Gray {
	bounds := lum.Bounds()
	mask := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := lum.Pix[lum.PixOffset(bounds.Min.X, y):]
		dst := mask.Pix[mask.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			if src[x] <= threshold {
				dst[x] = Foreground
			}
		}
	}
	return mask
}

// OtsuThreshold returns the level that maximizes between-class variance of a
// 256-bin luminance histogram. The darker class is every level at or below
// the returned value. An empty or single-level histogram yields 128.
func OtsuThreshold(bins []int) uint8 {
	total := 0
	var sum float64
	for level, n := range bins {
		total += n
		sum += float64(level) * float64(n)
	}
	if total == 0 {
		return 128
	}

	var (
		sumB   float64
		wB     int
		maxVar float64
		found  bool
	)
	threshold := uint8(128)

	for t := 0; t < len(bins) && t < 256; t++ {
		wB += bins[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(bins[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if !found || variance > maxVar {
			maxVar = variance
			threshold = uint8(t)
			found = true
		}
	}
	return threshold
}
