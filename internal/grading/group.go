package grading

import (
	"sort"

	"github.com/ironsheep/omr-grader/internal/detection"
)

// Question is the ordered set of bubbles believed to be one question's
// alternatives, left to right. It is well formed only when its length equals
// the expected alternative count.
type Question []detection.Mark

// GroupOptions configures Group.
type GroupOptions struct {
	NumColumns   int
	ColumnGap    float64
	RowTolerance int
}

// Group arranges marks into questions in printed reading order.
//
// Marks are first split into NumColumns equal-width vertical bands spanning
// the leftmost to the rightmost mark. Inside each band they are walked top to
// bottom; a mark joins the current row while its Y is less than RowTolerance
// away from the Y of the last mark added to the row, otherwise it starts a new
// row. Rows therefore follow a slightly skewed scan. Each row is ordered left
// to right and becomes one question.
//
// Questions come out column-major: every row of the first column from top to
// bottom, then the second column, and so on. Rows of the wrong length are kept
// so question numbering stays aligned with the printed sheet.
//
// The input slice is not modified, and its order does not affect the result.
func Group(marks []detection.Mark, opts GroupOptions) []Question {
	if len(marks) == 0 {
		return nil
	}

	var questions []Question
	for _, column := range assignColumns(marks, opts.NumColumns, opts.ColumnGap) {
		questions = append(questions, clusterRows(column, opts.RowTolerance)...)
	}
	return questions
}

// assignColumns distributes marks across numColumns bands by their left edge.
func assignColumns(marks []detection.Mark, numColumns int, gap float64) [][]detection.Mark {
	if numColumns < 1 {
		numColumns = 1
	}

	minX, maxX := marks[0].X, marks[0].X
	for _, m := range marks[1:] {
		if m.X < minX {
			minX = m.X
		}
		if m.X > maxX {
			maxX = m.X
		}
	}

	bandWidth := float64(maxX-minX)/float64(numColumns) + gap
	columns := make([][]detection.Mark, numColumns)
	for _, m := range marks {
		idx := 0
		if bandWidth > 0 {
			idx = int(float64(m.X-minX) / bandWidth)
		}
		if idx > numColumns-1 {
			idx = numColumns - 1
		}
		columns[idx] = append(columns[idx], m)
	}
	return columns
}

// clusterRows splits one column into rows. The column slice is reordered.
func clusterRows(column []detection.Mark, tolerance int) []Question {
	if len(column) == 0 {
		return nil
	}
	sort.Slice(column, func(i, j int) bool { return verticalLess(column[i], column[j]) })

	var rows []Question
	row := Question{column[0]}
	rowY := column[0].Y
	for _, m := range column[1:] {
		if abs(m.Y-rowY) < tolerance {
			row = append(row, m)
			rowY = m.Y
			continue
		}
		rows = append(rows, sortRow(row))
		row = Question{m}
		rowY = m.Y
	}
	return append(rows, sortRow(row))
}

func sortRow(row Question) Question {
	sort.Slice(row, func(i, j int) bool { return horizontalLess(row[i], row[j]) })
	return row
}

// verticalLess and horizontalLess are total orders over bounding boxes, which
// is what makes grouping independent of detector output order.
func verticalLess(a, b detection.Mark) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Width != b.Width {
		return a.Width < b.Width
	}
	return a.Height < b.Height
}

func horizontalLess(a, b detection.Mark) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.Width != b.Width {
		return a.Width < b.Width
	}
	return a.Height < b.Height
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
