package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Config holds every tunable of the recognition pipeline.
//
// Field tags serve three loaders: mapstructure for viper, yaml for config
// files and json for MCP tool arguments.
type Config struct {
	// ThresholdMode is "fixed" or "otsu".
	ThresholdMode imaging.ThresholdMode `mapstructure:"threshold_mode" yaml:"threshold_mode" json:"threshold_mode" validate:"oneof=fixed otsu"`

	// ThresholdValue is the cutoff used in fixed mode.
	ThresholdValue int `mapstructure:"threshold_value" yaml:"threshold_value" json:"threshold_value" validate:"min=0,max=255"`

	// BlurKernelSize is the smoothing kernel width; 0 or 1 disables blurring.
	BlurKernelSize int `mapstructure:"blur_kernel_size" yaml:"blur_kernel_size" json:"blur_kernel_size" validate:"min=0,max=51"`

	MinArea  int     `mapstructure:"min_area" yaml:"min_area" json:"min_area" validate:"min=0"`
	MaxArea  int     `mapstructure:"max_area" yaml:"max_area" json:"max_area" validate:"gtfield=MinArea"`
	MinRatio float64 `mapstructure:"min_ratio" yaml:"min_ratio" json:"min_ratio" validate:"gt=0"`
	MaxRatio float64 `mapstructure:"max_ratio" yaml:"max_ratio" json:"max_ratio" validate:"gtefield=MinRatio"`

	// NumColumns is how many question columns are printed on the sheet.
	NumColumns int `mapstructure:"num_columns" yaml:"num_columns" json:"num_columns" validate:"min=1"`

	// ColumnGap is slack added to every column band so bubbles sitting on a
	// band boundary do not flicker between columns.
	ColumnGap float64 `mapstructure:"column_gap" yaml:"column_gap" json:"column_gap" validate:"min=0"`

	// RowTolerance is the vertical distance, in pixels, under which two
	// bubbles belong to the same printed row.
	RowTolerance int `mapstructure:"row_tolerance" yaml:"row_tolerance" json:"row_tolerance" validate:"min=1"`

	// ExpectedAlternatives is the number of bubbles per question.
	ExpectedAlternatives int `mapstructure:"expected_alternatives" yaml:"expected_alternatives" json:"expected_alternatives" validate:"min=1,max=26"`
}

// DefaultConfig returns settings for a four-column A-E sheet scanned at about
// 1000 px wide.
func DefaultConfig() Config {
	marks := detection.DefaultMarkOptions()
	return Config{
		ThresholdMode:        imaging.ThresholdFixed,
		ThresholdValue:       200,
		BlurKernelSize:       7,
		MinArea:              marks.MinArea,
		MaxArea:              marks.MaxArea,
		MinRatio:             marks.MinRatio,
		MaxRatio:             marks.MaxRatio,
		NumColumns:           4,
		ColumnGap:            5,
		RowTolerance:         25,
		ExpectedAlternatives: 5,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and joins all violations into one error that
// wraps ErrInvalidConfig.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// BinarizeOptions returns the Preprocessor settings.
func (c Config) BinarizeOptions() imaging.BinarizeOptions {
	return imaging.BinarizeOptions{
		Mode:           c.ThresholdMode,
		Value:          uint8(c.ThresholdValue),
		BlurKernelSize: c.BlurKernelSize,
	}
}

// MarkOptions returns the MarkDetector filters.
func (c Config) MarkOptions() detection.MarkOptions {
	return detection.MarkOptions{
		MinArea:  c.MinArea,
		MaxArea:  c.MaxArea,
		MinRatio: c.MinRatio,
		MaxRatio: c.MaxRatio,
	}
}

// GroupOptions returns the QuestionGrouper settings.
func (c Config) GroupOptions() GroupOptions {
	return GroupOptions{
		NumColumns:   c.NumColumns,
		ColumnGap:    c.ColumnGap,
		RowTolerance: c.RowTolerance,
	}
}
