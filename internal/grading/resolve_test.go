package grading

import (
	"image"
	"reflect"
	"testing"

	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

// detectSheet runs the stages leading up to Resolve on img.
func detectSheet(t *testing.T, img image.Image, cfg Config) ([]Question, *imaging.Mask) {
	t.Helper()
	mask, err := imaging.Binarize(img, cfg.BinarizeOptions())
	if err != nil {
		t.Fatalf("Binarize() error = %v", err)
	}
	found := detection.FindMarks(mask.Gray, cfg.MarkOptions())
	return Group(found.Marks, cfg.GroupOptions()), mask
}

func TestResolve_FilledBubbleWins(t *testing.T) {
	for filled := 0; filled < 5; filled++ {
		spec := sheetSpec{columns: 1, alternatives: 5, answers: []int{filled}}
		questions, mask := detectSheet(t, spec.render(), testConfig(1))
		if len(questions) != 1 || len(questions[0]) != 5 {
			t.Fatalf("filled %d: got %d questions, want one with 5 bubbles", filled, len(questions))
		}

		res := Resolve(questions, mask.Gray, 5)
		if !res[0].Answered || res[0].Index != filled {
			t.Errorf("filled %d: got %+v", filled, res[0])
		}
		if len(res[0].Fill) != 5 {
			t.Fatalf("filled %d: %d fill values, want 5", filled, len(res[0].Fill))
		}
		for i, f := range res[0].Fill {
			if i != filled && f >= res[0].Fill[filled] {
				t.Errorf("filled %d: ring %d fill %.1f not below %.1f", filled, i, f, res[0].Fill[filled])
			}
		}
	}
}

func TestResolve_WrongLengthIsUnanswered(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 300, 100))
	row := func(n int) Question {
		q := make(Question, n)
		for i := range q {
			q[i] = box(10+i*40, 10)
		}
		return q
	}

	for _, n := range []int{0, 1, 4, 6} {
		res := Resolve([]Question{row(n)}, mask, 5)
		if res[0].Answered || res[0].Index != -1 || res[0].Fill != nil {
			t.Errorf("%d bubbles: got %+v, want unanswered", n, res[0])
		}
	}

	if res := Resolve([]Question{row(0)}, mask, 0); res[0].Answered {
		t.Error("expected 0 should never answer")
	}
}

func TestResolve_BlankPicksFirstAlternative(t *testing.T) {
	spec := sheetSpec{columns: 1, alternatives: 5, answers: []int{-1}}
	questions, mask := detectSheet(t, spec.render(), testConfig(1))

	res := Resolve(questions, mask.Gray, 5)
	if !res[0].Answered || res[0].Index != 0 {
		t.Errorf("got %+v, want index 0 answered", res[0])
	}
}

func TestResolve_Idempotent(t *testing.T) {
	spec := sheetSpec{columns: 1, alternatives: 4, answers: []int{3, 1, 0}}
	questions, mask := detectSheet(t, spec.render(), testConfig(1))
	before := append([]uint8(nil), mask.Pix...)

	first := Resolve(questions, mask.Gray, 4)
	second := Resolve(questions, mask.Gray, 4)
	if !reflect.DeepEqual(first, second) {
		t.Error("Resolve returned different results for the same input")
	}
	if !reflect.DeepEqual(before, mask.Pix) {
		t.Error("Resolve modified the mask")
	}

	want := []int{3, 1, 0}
	for i, r := range first {
		if r.Index != want[i] {
			t.Errorf("question %d: index %d, want %d", i+1, r.Index, want[i])
		}
	}
}

func TestFillIntensity(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}

	full := image.NewAlpha(image.Rect(0, 0, 10, 10))
	for i := range full.Pix {
		full.Pix[i] = 255
	}
	half := image.NewAlpha(image.Rect(5, 0, 15, 10))
	for i := range half.Pix {
		half.Pix[i] = 255
	}
	outside := image.NewAlpha(image.Rect(30, 30, 40, 40))
	for i := range outside.Pix {
		outside.Pix[i] = 255
	}

	tests := []struct {
		name string
		mark detection.Mark
		want float64
	}{
		{"fully inked", detection.Mark{Outline: full}, 255},
		{"half inked", detection.Mark{Outline: half}, 127.5},
		{"outside mask", detection.Mark{Outline: outside}, 0},
		{"no outline", detection.Mark{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FillIntensity(mask, tt.mark); got != tt.want {
				t.Errorf("FillIntensity() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := FillIntensity(nil, detection.Mark{Outline: full}); got != 0 {
		t.Errorf("nil mask: got %v, want 0", got)
	}
}
