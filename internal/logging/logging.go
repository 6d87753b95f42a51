// Package logging builds the process logger.
//
// Log output always goes to stderr; stdout carries the MCP protocol when the
// server is running.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a logrus level name. Empty means "info".
	Level string `mapstructure:"level" yaml:"level" json:"level"`

	// File, when set, also writes logs to a size-rotated file.
	File string `mapstructure:"file" yaml:"file" json:"file"`

	// NoColors disables ANSI colors on stderr.
	NoColors bool `mapstructure:"no_colors" yaml:"no_colors" json:"no_colors"`

	// ReportCaller adds file, line and function to every entry.
	ReportCaller bool `mapstructure:"report_caller" yaml:"report_caller" json:"report_caller"`
}

// New returns a logger configured from opts, writing to stderr.
func New(opts Options) (*logrus.Logger, error) {
	return NewWithWriter(os.Stderr, opts)
}

// NewWithWriter is New with an explicit primary writer.
func NewWithWriter(w io.Writer, opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})
	logger.SetReportCaller(opts.ReportCaller)

	writers := []io.Writer{w}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
