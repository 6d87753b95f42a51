package grading

import (
	"image"

	"github.com/ironsheep/omr-grader/internal/detection"
)

// Resolution is the chosen alternative of one question.
type Resolution struct {
	// Index is the position of the darkest-filled bubble, or -1 when the
	// question is unanswered.
	Index int `json:"index"`

	// Answered is false when the question did not have the expected number
	// of bubbles.
	Answered bool `json:"answered"`

	// Fill is the mean mask intensity (0-255) under each bubble, left to
	// right. It is empty for unanswered questions.
	Fill []float64 `json:"fill,omitempty"`
}

// Resolve picks one answer per question.
//
// A question whose length differs from expected is unanswered. Otherwise every
// bubble's fill intensity is measured over its outline and the bubble with the
// highest mean wins; on a tie the leftmost bubble wins. There is no minimum
// fill, so a question left blank on paper still resolves to some bubble.
//
// The mask must be the one the marks were detected on and is only read.
func Resolve(questions []Question, mask *image.Gray, expected int) []Resolution {
	out := make([]Resolution, len(questions))
	for i, q := range questions {
		if len(q) != expected || expected == 0 {
			out[i] = Resolution{Index: -1}
			continue
		}

		fill := make([]float64, len(q))
		best := 0
		for j, m := range q {
			fill[j] = FillIntensity(mask, m)
			if fill[j] > fill[best] {
				best = j
			}
		}
		out[i] = Resolution{Index: best, Answered: true, Fill: fill}
	}
	return out
}

// FillIntensity returns the mean mask value over the pixels of m's outline
// that fall inside mask. It returns 0 when no pixel can be sampled.
func FillIntensity(mask *image.Gray, m detection.Mark) float64 {
	if mask == nil || m.Outline == nil {
		return 0
	}
	r := m.Outline.Rect.Intersect(mask.Bounds())

	var sum, n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !m.Contains(x, y) {
				continue
			}
			sum += int(mask.GrayAt(x, y).Y)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
