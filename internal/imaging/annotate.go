package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelFace is the bitmap face used for every annotation. It has no external
// font file dependency, which keeps the binary self-contained.
var labelFace = basicfont.Face7x13

// Canvas returns a mutable copy of img for annotation. The copy always starts
// at (0,0), matching the coordinates produced by Binarize.
func Canvas(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// DrawRect outlines r on dst with the given line thickness, growing inward.
// Parts of the outline that fall outside dst are clipped.
func DrawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r = r.Canon()
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), // top
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), // left
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		e = e.Intersect(dst.Bounds())
		if e.Empty() {
			continue
		}
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// DrawLabel writes text with its baseline starting at (x, y).
func DrawLabel(dst draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawStrokedText writes text scaled by an integer factor with its baseline
// starting at (x, y). The glyphs are first stamped in stroke color at every
// offset within strokeWidth, then drawn once in fill color on top, so the text
// reads on any background.
func DrawStrokedText(dst draw.Image, x, y int, text string, scale, strokeWidth int, fill, stroke color.Color) {
	if text == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}
	glyphs := textMask(text, scale)
	ascent := labelFace.Metrics().Ascent.Ceil() * scale
	origin := image.Pt(x, y-ascent)
	size := glyphs.Bounds().Size()

	strokeSrc := image.NewUniform(stroke)
	for dy := -strokeWidth; dy <= strokeWidth; dy++ {
		for dx := -strokeWidth; dx <= strokeWidth; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			at := origin.Add(image.Pt(dx, dy))
			draw.DrawMask(dst, image.Rectangle{Min: at, Max: at.Add(size)}, strokeSrc, image.Point{}, glyphs, image.Point{}, draw.Over)
		}
	}
	draw.DrawMask(dst, image.Rectangle{Min: origin, Max: origin.Add(size)}, image.NewUniform(fill), image.Point{}, glyphs, image.Point{}, draw.Over)
}

// textMask renders text into an alpha mask, upscaled with nearest-neighbor
// sampling so the bitmap glyphs stay crisp.
func textMask(text string, scale int) image.Image {
	metrics := labelFace.Metrics()
	width := font.MeasureString(labelFace, text).Ceil()
	height := metrics.Height.Ceil()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: labelFace,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)

	if scale == 1 {
		return mask
	}
	return imaging.Resize(mask, width*scale, height*scale, imaging.NearestNeighbor)
}
