package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxWidth is the processing width sheets are downscaled to. Bubble
// area limits are tuned for sheets of roughly this width.
const DefaultMaxWidth = 1000

// Region represents a rectangular region within an image.
//
// (X1, Y1) is the inclusive top-left corner and (X2, Y2) the exclusive
// bottom-right corner.
type Region struct {
	X1 int `json:"x1" yaml:"x1" mapstructure:"x1" validate:"min=0"`
	Y1 int `json:"y1" yaml:"y1" mapstructure:"y1" validate:"min=0"`
	X2 int `json:"x2" yaml:"x2" mapstructure:"x2" validate:"gtefield=X1"`
	Y2 int `json:"y2" yaml:"y2" mapstructure:"y2" validate:"gtefield=Y1"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Empty reports whether the region selects nothing.
func (r Region) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// FrameOptions controls how a raw photo or scan is normalized before grading.
type FrameOptions struct {
	// ROI restricts grading to a fixed window of the frame, as the webcam
	// scanner does. A zero region means the whole frame.
	ROI Region `json:"roi" yaml:"roi" mapstructure:"roi"`

	// MaxWidth downscales wider frames, preserving aspect ratio. Zero disables.
	MaxWidth int `json:"max_width" yaml:"max_width" mapstructure:"max_width" validate:"min=0"`
}

// DefaultFrameOptions returns whole-frame grading at DefaultMaxWidth.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{MaxWidth: DefaultMaxWidth}
}

// NormalizeFrame crops the frame to the configured ROI and limits its width.
//
// The result is always a new image; the input is never modified. An ROI that
// is not fully inside the frame is an error.
func NormalizeFrame(img image.Image, opts FrameOptions) (image.Image, error) {
	if err := CheckImage(img); err != nil {
		return nil, err
	}

	var out image.Image = img
	if opts.ROI != (Region{}) {
		cropped, err := cropRegion(img, opts.ROI)
		if err != nil {
			return nil, err
		}
		out = cropped
	}

	if opts.MaxWidth > 0 && out.Bounds().Dx() > opts.MaxWidth {
		scale := float64(opts.MaxWidth) / float64(out.Bounds().Dx())
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		if newHeight < 1 {
			newHeight = 1
		}
		return imaging.Resize(out, opts.MaxWidth, newHeight, imaging.Linear), nil
	}

	if out == img {
		return imaging.Clone(img), nil
	}
	return out, nil
}

// CropResult contains a cropped sheet region
type CropResult struct {
	EncodedImage
}

// Crop extracts a rectangular region from a sheet, optionally scaling it, and
// returns it as base64 PNG.
func Crop(img image.Image, r Region, scale float64) (*CropResult, error) {
	cropped, err := cropRegion(img, r)
	if err != nil {
		return nil, err
	}

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses the crop to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	enc, err := EncodeImage(cropped, FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}
	return &CropResult{EncodedImage: *enc}, nil
}

func cropRegion(img image.Image, r Region) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r.Rect()), nil
}
