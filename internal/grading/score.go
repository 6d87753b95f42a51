package grading

import (
	"fmt"
	"image"
	"sort"
	"strconv"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Annotation layout.
const (
	markThickness = 2
	labelOffsetY  = 5
	scoreX        = 30
	scoreY        = 30
	scoreScale    = 2
	scoreStroke   = 2
)

// QuestionResult is the outcome of one question number.
type QuestionResult struct {
	Number int `json:"number"`

	// Letter is the resolved alternative, empty when unanswered.
	Letter   string `json:"letter,omitempty"`
	Answered bool   `json:"answered"`

	// Keyed reports whether the answer key has an entry for Number. Only
	// keyed questions are graded; Expected and Correct are zero otherwise.
	Keyed    bool   `json:"keyed"`
	Expected string `json:"expected,omitempty"`
	Correct  bool   `json:"correct"`

	// Alternatives is how many bubbles the question was grouped with; zero
	// when the sheet has fewer questions than the key.
	Alternatives int       `json:"alternatives"`
	Fill         []float64 `json:"fill,omitempty"`
}

// Scorecard is the output of ScoreAndAnnotate.
type Scorecard struct {
	// Annotated is a fresh copy of the input image with feedback drawn on it.
	Annotated *image.NRGBA `json:"-"`

	// Questions holds one entry per grouped or keyed question number, in
	// ascending order.
	Questions []QuestionResult `json:"questions"`

	Correct    int `json:"correct"`
	TotalKeyed int `json:"total_keyed"`
}

// Score formats the summary drawn on the sheet, "Score: <correct>/<total>".
func (s *Scorecard) Score() string {
	return fmt.Sprintf("Score: %d/%d", s.Correct, s.TotalKeyed)
}

// ScoreAndAnnotate compares resolved answers with key and draws the result.
//
// Question numbers are 1-based positions in questions. Only keyed questions
// are graded; an unanswered or missing question counts as incorrect and gets
// no rectangle. Every answered keyed question gets a rectangle around its
// chosen bubble in the correct or incorrect color, labeled with its number
// just above the bubble. The score banner is drawn last at a fixed position.
//
// img, questions and answers are only read.
func ScoreAndAnnotate(img image.Image, questions []Question, answers []Resolution, key AnswerKey, palette imaging.Palette) *Scorecard {
	canvas := imaging.Canvas(img)
	nums := questionNumbers(len(questions), key)
	card := &Scorecard{
		Annotated:  canvas,
		Questions:  make([]QuestionResult, 0, len(nums)),
		TotalKeyed: len(key),
	}

	for _, num := range nums {
		qr := QuestionResult{Number: num}
		qr.Expected, qr.Keyed = key[num]

		idx := num - 1
		var q Question
		if idx >= 0 && idx < len(questions) && idx < len(answers) {
			q = questions[idx]
			qr.Alternatives = len(q)
			if res := answers[idx]; res.Answered && res.Index >= 0 && res.Index < len(q) {
				qr.Answered = true
				qr.Letter = LetterFor(res.Index)
				qr.Fill = res.Fill
			}
		}

		if qr.Keyed && qr.Answered {
			qr.Correct = qr.Letter != unknownLetter && qr.Letter == qr.Expected
			c := palette.Incorrect
			if qr.Correct {
				c = palette.Correct
				card.Correct++
			}
			chosen := q[answers[idx].Index]
			imaging.DrawRect(canvas, chosen.Bounds(), c, markThickness)
			imaging.DrawLabel(canvas, chosen.X, chosen.Y-labelOffsetY, strconv.Itoa(num), c)
		}

		card.Questions = append(card.Questions, qr)
	}

	imaging.DrawStrokedText(canvas, scoreX, scoreY, card.Score(), scoreScale, scoreStroke, palette.ScoreFill, palette.ScoreStroke)
	return card
}

// questionNumbers returns 1..grouped merged with every keyed number, sorted.
func questionNumbers(grouped int, key AnswerKey) []int {
	nums := make([]int, 0, grouped+len(key))
	for n := 1; n <= grouped; n++ {
		nums = append(nums, n)
	}
	for n := range key {
		if n < 1 || n > grouped {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}
