package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

// writeSheet saves a single-column, five-alternative sheet with the given
// filled bubbles.
func writeSheet(t *testing.T, dir string, answers ...int) string {
	t.Helper()
	const r = 12
	img := image.NewRGBA(image.Rect(0, 0, 340, 160+50*len(answers)))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for q, answer := range answers {
		for alt := 0; alt < 5; alt++ {
			cx, cy := 52+alt*40, 92+q*50
			for y := cy - r; y <= cy+r; y++ {
				for x := cx - r; x <= cx+r; x++ {
					d := (x-cx)*(x-cx) + (y-cy)*(y-cy)
					if d <= r*r && (alt == answer || d > (r-3)*(r-3)) {
						img.Set(x, y, color.Black)
					}
				}
			}
		}
	}
	path := filepath.Join(dir, "sheet.png")
	if err := imaging.Save(path, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI in a scratch directory tuned for the test sheets.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("OMR_GRADING_BLUR_KERNEL_SIZE", "0")
	t.Setenv("OMR_GRADING_NUM_COLUMNS", "1")
	t.Setenv("OMR_LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestGradeCommand(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir, 2, 0, 4)
	annotated := filepath.Join(dir, "graded.png")

	out, err := run(t, "grade", "--image", sheet, "--key", "CBE", "--out", annotated)
	if err != nil {
		t.Fatalf("grade failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Score: 2/3") {
		t.Errorf("output missing score:\n%s", out)
	}
	if !strings.Contains(out, "wrong") {
		t.Errorf("output missing the wrong answer:\n%s", out)
	}
	if _, err := os.Stat(annotated); err != nil {
		t.Errorf("annotated sheet not written: %v", err)
	}
}

func TestGradeCommand_JSONWithKeyFile(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir, 1, 3)
	keyFile := filepath.Join(dir, "key.yaml")
	if err := os.WriteFile(keyFile, []byte("answers:\n  1: B\n  2: D\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "grade", "--image", sheet, "--key-file", keyFile, "--json")
	if err != nil {
		t.Fatalf("grade failed: %v\n%s", err, out)
	}
	var res grading.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Correct != 2 || res.TotalKeyed != 2 || res.RunID == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestGradeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir, 0)
	blank := filepath.Join(dir, "blank.png")
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if err := imaging.Save(blank, img); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no key", []string{"grade", "--image", sheet}, "answer key"},
		{"both keys", []string{"grade", "--image", sheet, "--key", "A", "--key-file", "k.yaml"}, "none of the others"},
		{"no image flag", []string{"grade", "--key", "A"}, "image"},
		{"blank sheet", []string{"grade", "--image", blank, "--key", "A"}, "no answer bubbles found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestMarksAndBinarizeCommands(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir, 4, 2)

	out, err := run(t, "marks", "--image", sheet)
	if err != nil {
		t.Fatalf("marks failed: %v", err)
	}
	if !strings.Contains(out, "10 bubbles") {
		t.Errorf("marks output:\n%s", out)
	}

	mask := filepath.Join(dir, "mask.png")
	if _, err := run(t, "binarize", "--image", sheet, "--out", mask); err != nil {
		t.Fatalf("binarize failed: %v", err)
	}
	if _, err := os.Stat(mask); err != nil {
		t.Errorf("mask not written: %v", err)
	}

	grid := filepath.Join(dir, "grid.png")
	if _, err := run(t, "grid", "--image", sheet, "--out", grid, "--spacing", "50"); err != nil {
		t.Fatalf("grid failed: %v", err)
	}
	if _, err := os.Stat(grid); err != nil {
		t.Errorf("grid not written: %v", err)
	}
}

func TestPrintResult(t *testing.T) {
	res := &grading.Result{
		Questions: []grading.QuestionResult{
			{Number: 1, Letter: "C", Answered: true, Keyed: true, Expected: "C", Correct: true},
			{Number: 2, Letter: "A", Answered: true, Keyed: true, Expected: "B"},
			{Number: 3, Keyed: true, Expected: "D"},
			{Number: 4, Letter: "E", Answered: true},
		},
		Correct:    1,
		TotalKeyed: 3,
	}

	var buf bytes.Buffer
	if err := printResult(&buf, res); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"correct", "wrong", "unanswered", "unkeyed"} {
		if !strings.HasSuffix(strings.TrimSpace(lines[i+1]), want) {
			t.Errorf("line %q does not end with %q", lines[i+1], want)
		}
	}
	if lines[5] != "Score: 1/3" {
		t.Errorf("last line = %q", lines[5])
	}
}
