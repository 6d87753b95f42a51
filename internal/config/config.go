// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and OMR_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/ironsheep/omr-grader/internal/logging"
)

// EnvPrefix prefixes every environment override: OMR_GRADING_THRESHOLD_VALUE
// sets grading.threshold_value.
const EnvPrefix = "OMR"

// DefaultFileName is looked up in the working directory when no config file
// is given explicitly.
const DefaultFileName = "omr"

// Settings is the complete runtime configuration.
type Settings struct {
	Grading grading.Config       `mapstructure:"grading" yaml:"grading"`
	Frame   imaging.FrameOptions `mapstructure:"frame" yaml:"frame"`
	Palette imaging.PaletteHex   `mapstructure:"palette" yaml:"palette"`
	Log     logging.Options      `mapstructure:"log" yaml:"log"`

	// AnswerKeyFile is used by grade when neither --key nor --key-file is set.
	AnswerKeyFile string `mapstructure:"answer_key_file" yaml:"answer_key_file"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Grading: grading.DefaultConfig(),
		Frame:   imaging.DefaultFrameOptions(),
		Palette: imaging.DefaultPaletteHex(),
		Log:     logging.Options{Level: "info"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads settings. path is an explicit config file; when empty, omr.yaml
// in the working directory is used if present. A missing explicit file is an
// error, a missing default file is not.
func Load(path string) (Settings, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every section.
func (s Settings) Validate() error {
	if err := s.Grading.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(s.Frame); err != nil {
		return fmt.Errorf("%w: frame: %v", grading.ErrInvalidConfig, err)
	}
	if _, err := s.Palette.Parse(); err != nil {
		return fmt.Errorf("%w: %v", grading.ErrInvalidConfig, err)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it; viper only
// consults the environment for keys it already knows.
func setDefaults(v *viper.Viper, d Settings) {
	g := d.Grading
	v.SetDefault("grading.threshold_mode", string(g.ThresholdMode))
	v.SetDefault("grading.threshold_value", g.ThresholdValue)
	v.SetDefault("grading.blur_kernel_size", g.BlurKernelSize)
	v.SetDefault("grading.min_area", g.MinArea)
	v.SetDefault("grading.max_area", g.MaxArea)
	v.SetDefault("grading.min_ratio", g.MinRatio)
	v.SetDefault("grading.max_ratio", g.MaxRatio)
	v.SetDefault("grading.num_columns", g.NumColumns)
	v.SetDefault("grading.column_gap", g.ColumnGap)
	v.SetDefault("grading.row_tolerance", g.RowTolerance)
	v.SetDefault("grading.expected_alternatives", g.ExpectedAlternatives)

	v.SetDefault("frame.max_width", d.Frame.MaxWidth)
	v.SetDefault("frame.roi.x1", d.Frame.ROI.X1)
	v.SetDefault("frame.roi.y1", d.Frame.ROI.Y1)
	v.SetDefault("frame.roi.x2", d.Frame.ROI.X2)
	v.SetDefault("frame.roi.y2", d.Frame.ROI.Y2)

	v.SetDefault("palette.correct_color", d.Palette.Correct)
	v.SetDefault("palette.incorrect_color", d.Palette.Incorrect)
	v.SetDefault("palette.score_fill_color", d.Palette.ScoreFill)
	v.SetDefault("palette.score_stroke_color", d.Palette.ScoreStroke)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.no_colors", d.Log.NoColors)
	v.SetDefault("log.report_caller", d.Log.ReportCaller)

	v.SetDefault("answer_key_file", d.AnswerKeyFile)
}
