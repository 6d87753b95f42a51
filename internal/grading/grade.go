package grading

import (
	"context"
	"fmt"
	"image"

	"github.com/google/uuid"
	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/ironsheep/omr-grader/internal/logging"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of grading one sheet.
type Result struct {
	RunID string `json:"run_id"`

	Questions  []QuestionResult `json:"questions"`
	Correct    int              `json:"correct"`
	TotalKeyed int              `json:"total_keyed"`

	// Marks is the number of accepted bubble candidates.
	Marks int `json:"marks"`

	// Threshold is the binarization cutoff that was applied.
	Threshold uint8 `json:"threshold"`

	Annotated image.Image `json:"-"`
}

// Score formats the summary drawn on the sheet.
func (r *Result) Score() string {
	return fmt.Sprintf("Score: %d/%d", r.Correct, r.TotalKeyed)
}

// Recognition is the answer-key independent part of grading: what the sheet
// says, before it is compared with anything.
type Recognition struct {
	Mask      *imaging.Mask
	Marks     []detection.Mark
	Regions   int
	Questions []Question
	Answers   []Resolution
}

// Option customizes Grade and Recognize.
type Option func(*options)

type options struct {
	palette imaging.Palette
	log     logrus.FieldLogger
	runID   string
}

// WithPalette sets the annotation colors.
func WithPalette(p imaging.Palette) Option {
	return func(o *options) { o.palette = p }
}

// WithLogger sets the logger for stage timings and counts. Grading is silent
// by default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

func buildOptions(opts []Option) *options {
	o := &options{palette: imaging.DefaultPalette(), log: logging.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	o.log = o.log.WithField("run_id", o.runID)
	return o
}

// Recognize binarizes img, detects bubbles, groups them into questions and
// resolves each question.
//
// ctx is checked between stages; a cancelled run returns ctx.Err() and no
// partial result.
//
// # Errors
//
//   - ErrInvalidConfig when cfg fails validation
//   - ErrInvalidImage when img is nil or empty
//   - ErrNoMarksDetected when no bubble or no question is found
func Recognize(ctx context.Context, img image.Image, cfg Config, opts ...Option) (*Recognition, error) {
	return recognize(ctx, img, cfg, buildOptions(opts))
}

func recognize(ctx context.Context, img image.Image, cfg Config, o *options) (*Recognition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := imaging.CheckImage(img); err != nil {
		return nil, err
	}

	mask, err := imaging.Binarize(img, cfg.BinarizeOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to binarize sheet: %w", err)
	}
	o.log.WithFields(logrus.Fields{
		"mode":      cfg.ThresholdMode,
		"threshold": mask.Threshold,
	}).Debug("sheet binarized")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := detection.FindMarks(mask.Gray, cfg.MarkOptions())
	o.log.WithFields(logrus.Fields{
		"regions": found.Regions,
		"marks":   found.Count,
	}).Debug("marks detected")
	if found.Count == 0 {
		return nil, fmt.Errorf("%w: %d regions examined, none shaped like a bubble", ErrNoMarksDetected, found.Regions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questions := Group(found.Marks, cfg.GroupOptions())
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions formed from %d marks", ErrNoMarksDetected, found.Count)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	answers := Resolve(questions, mask.Gray, cfg.ExpectedAlternatives)
	malformed := 0
	for _, a := range answers {
		if !a.Answered {
			malformed++
		}
	}
	entry := o.log.WithFields(logrus.Fields{
		"questions": len(questions),
		"malformed": malformed,
	})
	if malformed > 0 {
		entry.Warn("some questions did not have the expected number of bubbles")
	} else {
		entry.Debug("answers resolved")
	}

	return &Recognition{
		Mask:      mask,
		Marks:     found.Marks,
		Regions:   found.Regions,
		Questions: questions,
		Answers:   answers,
	}, nil
}

// Grade runs the full pipeline on img and scores it against key.
//
// img and key are only read. The annotated image in the result is a new
// image; see ScoreAndAnnotate for what is drawn.
//
// # Errors
//
// Everything Recognize returns, plus ErrInvalidAnswerKey when key does not
// fit cfg.ExpectedAlternatives.
func Grade(ctx context.Context, img image.Image, key AnswerKey, cfg Config, opts ...Option) (*Result, error) {
	o := buildOptions(opts)

	if err := key.Validate(cfg.ExpectedAlternatives); err != nil {
		return nil, err
	}

	rec, err := recognize(ctx, img, cfg, o)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	card := ScoreAndAnnotate(img, rec.Questions, rec.Answers, key, o.palette)
	o.log.WithFields(logrus.Fields{
		"correct": card.Correct,
		"keyed":   card.TotalKeyed,
	}).Info("sheet graded")

	return &Result{
		RunID:      o.runID,
		Questions:  card.Questions,
		Correct:    card.Correct,
		TotalKeyed: card.TotalKeyed,
		Marks:      len(rec.Marks),
		Threshold:  rec.Mask.Threshold,
		Annotated:  card.Annotated,
	}, nil
}
