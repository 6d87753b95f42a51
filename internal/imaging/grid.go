package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// DefaultGridSpacing is the line spacing used when GridOptions.Spacing is 0.
const DefaultGridSpacing = 100

// GridOptions configures GridOverlay.
type GridOptions struct {
	// Spacing between grid lines in pixels.
	Spacing int

	// ShowCoordinates labels every intersection with its "x,y".
	ShowCoordinates bool

	// Color of the grid lines; nil means semi-transparent red.
	Color color.Color
}

// GridOverlayResult contains the image with grid overlay
type GridOverlayResult struct {
	EncodedImage
	GridSpacing int `json:"grid_spacing"`
}

// GridOverlay returns a copy of img with a coordinate grid drawn on it. It is
// meant for reading off a region of interest for frame.roi.
func GridOverlay(img image.Image, opts GridOptions) (*GridOverlayResult, error) {
	if err := CheckImage(img); err != nil {
		return nil, err
	}
	if opts.Spacing == 0 {
		opts.Spacing = DefaultGridSpacing
	}
	if opts.Spacing < 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %d", opts.Spacing)
	}

	canvas := DrawGrid(img, opts)

	enc, err := EncodeImage(canvas, FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &GridOverlayResult{EncodedImage: *enc, GridSpacing: opts.Spacing}, nil
}

// DrawGrid draws the grid described by opts on a copy of img. A spacing of
// zero or less uses DefaultGridSpacing.
func DrawGrid(img image.Image, opts GridOptions) *image.NRGBA {
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultGridSpacing
	}
	if opts.Color == nil {
		opts.Color = color.NRGBA{R: 255, A: 128}
	}
	canvas := Canvas(img)
	bounds := canvas.Bounds()
	src := image.NewUniform(opts.Color)

	for x := opts.Spacing; x < bounds.Dx(); x += opts.Spacing {
		draw.Draw(canvas, image.Rect(x, 0, x+1, bounds.Dy()), src, image.Point{}, draw.Over)
	}
	for y := opts.Spacing; y < bounds.Dy(); y += opts.Spacing {
		draw.Draw(canvas, image.Rect(0, y, bounds.Dx(), y+1), src, image.Point{}, draw.Over)
	}

	if opts.ShowCoordinates {
		white := color.White
		backdrop := image.NewUniform(color.NRGBA{A: 180})
		for y := opts.Spacing; y < bounds.Dy(); y += opts.Spacing {
			for x := opts.Spacing; x < bounds.Dx(); x += opts.Spacing {
				label := fmt.Sprintf("%d,%d", x, y)
				box := labelBounds(x+2, y+2, label)
				draw.Draw(canvas, box.Intersect(bounds), backdrop, image.Point{}, draw.Over)
				DrawLabel(canvas, x+2, y+2+labelFace.Metrics().Ascent.Ceil(), label, white)
			}
		}
	}
	return canvas
}

// labelBounds is the box DrawLabel covers for text whose top-left is (x, y).
func labelBounds(x, y int, text string) image.Rectangle {
	m := labelFace.Metrics()
	w := labelFace.Advance * len(text)
	return image.Rect(x-1, y-1, x+w+1, y+m.Height.Ceil()+1)
}
