package grading

import (
	"errors"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

var (
	// ErrInvalidImage means the sheet could not be decoded or has no pixels.
	// No partial result accompanies it.
	ErrInvalidImage = imaging.ErrInvalidImage

	// ErrNoMarksDetected means the image was readable but no bubbles (or no
	// questions) were found. Collaborators should show it as "nothing
	// detected" rather than as a score of zero.
	ErrNoMarksDetected = errors.New("no marks detected")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid grading config")

	// ErrInvalidAnswerKey wraps every answer key parsing or validation failure.
	ErrInvalidAnswerKey = errors.New("invalid answer key")
)
