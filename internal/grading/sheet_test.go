package grading

import (
	"image"
	"image/color"
	"image/draw"
)

// Synthetic sheet layout. Bubbles are rings of ringWidth pixels with a
// diameter of 2*bubbleRadius+1; a marked bubble is a filled disk.
const (
	bubbleRadius = 12
	ringWidth    = 3
	altSpacing   = 40
	rowSpacing   = 50
	colSpacing   = 260
	marginX      = 40
	marginY      = 80
)

// sheetSpec describes a synthetic answer sheet. Answers are listed in
// question order; questions fill each column top to bottom before moving to
// the next. An answer of -1 leaves the question blank.
type sheetSpec struct {
	columns      int
	alternatives int
	answers      []int

	// missing maps a question index (0-based) to an alternative that is not
	// printed, as if the detector had lost it.
	missing map[int]int
}

func (s sheetSpec) rowsPerColumn() int {
	return (len(s.answers) + s.columns - 1) / s.columns
}

func (s sheetSpec) bubbleBox(question, alt int) image.Rectangle {
	rows := s.rowsPerColumn()
	col, row := question/rows, question%rows
	x := marginX + col*colSpacing + alt*altSpacing
	y := marginY + row*rowSpacing
	return image.Rect(x, y, x+2*bubbleRadius+1, y+2*bubbleRadius+1)
}

func (s sheetSpec) render() *image.RGBA {
	width := 2*marginX + s.columns*colSpacing
	height := marginY + s.rowsPerColumn()*rowSpacing + marginY
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for q, answer := range s.answers {
		for alt := 0; alt < s.alternatives; alt++ {
			if m, ok := s.missing[q]; ok && m == alt {
				continue
			}
			box := s.bubbleBox(q, alt)
			cx, cy := box.Min.X+bubbleRadius, box.Min.Y+bubbleRadius
			if alt == answer {
				paintDisk(img, cx, cy, bubbleRadius, 0)
			} else {
				paintDisk(img, cx, cy, bubbleRadius, bubbleRadius-ringWidth)
			}
		}
	}
	return img
}

// paintDisk paints black every pixel whose squared distance d from the center
// satisfies inner*inner < d <= r*r. inner 0 paints a filled disk.
func paintDisk(img *image.RGBA, cx, cy, r, inner int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			d := dx*dx + dy*dy
			if d <= r*r && (inner == 0 || d > inner*inner) {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// testConfig is DefaultConfig tuned for the sharp synthetic sheets.
func testConfig(columns int) Config {
	cfg := DefaultConfig()
	cfg.BlurKernelSize = 0
	cfg.NumColumns = columns
	return cfg
}
