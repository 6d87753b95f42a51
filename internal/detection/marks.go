package detection

import (
	"image"
	"image/color"
	"sort"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Mark is a candidate bubble found on a binarized sheet.
//
// The bounding box follows the image convention: (X, Y) is the top-left pixel
// and the box spans Width x Height pixels. Outline is the filled interior of
// the region's outer boundary (holes included), stored as an alpha mask whose
// bounds equal the bounding box; it is what fill intensity is sampled over.
//
// A Mark is never modified after FindMarks returns it.
type Mark struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// Area is the number of pixels enclosed by the outer boundary.
	Area int `json:"area"`

	Outline *image.Alpha `json:"-"`
}

// Bounds returns the mark's bounding box.
func (m Mark) Bounds() image.Rectangle {
	return image.Rect(m.X, m.Y, m.X+m.Width, m.Y+m.Height)
}

// Ratio returns width divided by height.
func (m Mark) Ratio() float64 {
	if m.Height == 0 {
		return 0
	}
	return float64(m.Width) / float64(m.Height)
}

// Contains reports whether (x, y) lies inside the mark's outline.
func (m Mark) Contains(x, y int) bool {
	if m.Outline == nil || !(image.Point{X: x, Y: y}).In(m.Outline.Rect) {
		return false
	}
	return m.Outline.AlphaAt(x, y).A != 0
}

// MarkOptions bounds the shapes FindMarks accepts as bubbles.
//
// Area limits are exclusive and ratio limits inclusive. Text glyphs are too
// small, rules and staples too elongated, and boxes around the answer grid
// too large, so area and shape are the only filter against non-bubble ink.
// The limits scale with scan resolution and must be tuned per sheet layout.
type MarkOptions struct {
	MinArea  int     `json:"min_area"`
	MaxArea  int     `json:"max_area"`
	MinRatio float64 `json:"min_ratio"`
	MaxRatio float64 `json:"max_ratio"`
}

// DefaultMarkOptions suits a sheet scanned at about 1000 px wide.
func DefaultMarkOptions() MarkOptions {
	return MarkOptions{
		MinArea:  300,
		MaxArea:  3000,
		MinRatio: 0.8,
		MaxRatio: 1.2,
	}
}

// Accept reports whether a region passes the area and aspect filters.
func (o MarkOptions) Accept(m Mark) bool {
	if m.Area <= o.MinArea || m.Area >= o.MaxArea {
		return false
	}
	ratio := m.Ratio()
	return ratio >= o.MinRatio && ratio <= o.MaxRatio
}

// MarksResult contains the bubbles found on a sheet.
type MarksResult struct {
	// Marks are the accepted candidates, top-to-bottom then left-to-right.
	Marks []Mark `json:"marks"`

	// Count is len(Marks).
	Count int `json:"count"`

	// Regions is how many outer regions were examined before filtering.
	Regions int `json:"regions"`
}

// FindMarks extracts every outer foreground region of mask and keeps the ones
// shaped like bubbles.
//
// Any non-zero mask pixel is foreground. Foreground connectivity is
// 8-neighbor; a region drawn entirely inside another region's outer boundary
// (a tick inside a ring, for instance) is part of that region and is not
// reported on its own.
//
// Callers must not depend on the order of the result; grouping sorts
// explicitly.
func FindMarks(mask *image.Gray, opts MarkOptions) *MarksResult {
	regions := FindRegions(mask)

	marks := make([]Mark, 0, len(regions))
	for _, r := range regions {
		if opts.Accept(r) {
			marks = append(marks, r)
		}
	}

	return &MarksResult{
		Marks:   marks,
		Count:   len(marks),
		Regions: len(regions),
	}
}

// component is one 8-connected foreground region before hole filling.
type component struct {
	label  int32
	seed   Point
	bounds image.Rectangle
}

// FindRegions returns every outer region of mask without filtering.
//
// # Algorithm
//
//  1. Label 8-connected foreground components with an iterative flood fill.
//  2. Visit components from the largest bounding box down. A component whose
//     seed pixel is already enclosed by an earlier component is nested and
//     skipped; a nested component always has a strictly smaller box.
//  3. For each outer component, flood the 4-connected background of its
//     padded bounding box from the border, treating only that component's
//     pixels as walls. Everything the flood cannot reach is enclosed.
func FindRegions(mask *image.Gray) []Mark {
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	labels := make([]int32, width*height)
	components := labelComponents(mask, labels, width, height)

	sort.SliceStable(components, func(i, j int) bool {
		ai := components[i].bounds.Dx() * components[i].bounds.Dy()
		aj := components[j].bounds.Dx() * components[j].bounds.Dy()
		return ai > aj
	})

	enclosed := make([]bool, width*height)
	regions := make([]Mark, 0, len(components))

	for _, c := range components {
		if enclosed[c.seed.Y*width+c.seed.X] {
			continue
		}
		outline, area := fillOutline(labels, enclosed, width, c)
		outline.Rect = outline.Rect.Add(bounds.Min)

		regions = append(regions, Mark{
			X:       c.bounds.Min.X + bounds.Min.X,
			Y:       c.bounds.Min.Y + bounds.Min.Y,
			Width:   c.bounds.Dx(),
			Height:  c.bounds.Dy(),
			Area:    area,
			Outline: outline,
		})
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})

	return regions
}

// labelComponents assigns a positive label to every foreground pixel.
// Coordinates in the returned components are relative to the mask origin.
func labelComponents(mask *image.Gray, labels []int32, width, height int) []component {
	bounds := mask.Bounds()
	components := make([]component, 0)
	next := int32(0)
	stack := make([]Point, 0, 256)

	for y := 0; y < height; y++ {
		row := mask.Pix[mask.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			if row[x] == 0 || labels[y*width+x] != 0 {
				continue
			}
			next++
			c := component{label: next, seed: Point{X: x, Y: y}, bounds: image.Rect(x, y, x+1, y+1)}

			stack = append(stack[:0], Point{X: x, Y: y})
			labels[y*width+x] = next
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.bounds = c.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						idx := ny*width + nx
						if labels[idx] != 0 || mask.Pix[mask.PixOffset(bounds.Min.X+nx, bounds.Min.Y+ny)] == 0 {
							continue
						}
						labels[idx] = next
						stack = append(stack, Point{X: nx, Y: ny})
					}
				}
			}
			components = append(components, c)
		}
	}
	return components
}

// fillOutline computes the enclosed interior of component c, records it in
// enclosed, and returns it with its pixel count. The outline is in
// mask-relative coordinates.
func fillOutline(labels []int32, enclosed []bool, width int, c component) (*image.Alpha, int) {
	b := c.bounds
	// One pixel of padding lets the outside flood reach all the way around.
	pw, ph := b.Dx()+2, b.Dy()+2
	outside := make([]bool, pw*ph)

	wall := func(px, py int) bool {
		x, y := b.Min.X+px-1, b.Min.Y+py-1
		if px == 0 || py == 0 || px == pw-1 || py == ph-1 {
			return false
		}
		return labels[y*width+x] == c.label
	}

	stack := []Point{{X: 0, Y: 0}}
	outside[0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors := [4]Point{{X: p.X + 1, Y: p.Y}, {X: p.X - 1, Y: p.Y}, {X: p.X, Y: p.Y + 1}, {X: p.X, Y: p.Y - 1}}
		for _, n := range neighbors {
			if n.X < 0 || n.X >= pw || n.Y < 0 || n.Y >= ph {
				continue
			}
			idx := n.Y*pw + n.X
			if outside[idx] || wall(n.X, n.Y) {
				continue
			}
			outside[idx] = true
			stack = append(stack, n)
		}
	}

	outline := image.NewAlpha(b)
	area := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if outside[(y-b.Min.Y+1)*pw+(x-b.Min.X+1)] {
				continue
			}
			outline.SetAlpha(x, y, color.Alpha{A: 255})
			enclosed[y*width+x] = true
			area++
		}
	}
	return outline, area
}
