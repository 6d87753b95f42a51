package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/config"
	"github.com/ironsheep/omr-grader/internal/logging"
	"github.com/ironsheep/omr-grader/internal/server"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	settings config.Settings
	log      *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "omr-grader",
		Short: "Grade multiple-choice answer sheets from scans or photos",
		Long: `omr-grader detects the filled bubbles on a multiple-choice answer sheet,
compares the chosen letters with an answer key and writes an annotated copy
of the sheet with the score.

Settings come from built-in defaults, an optional omr.yaml in the working
directory (or --config), a .env file and OMR_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./omr.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides OMR_LOG_LEVEL)")

	cmd.AddCommand(newGradeCmd(a))
	cmd.AddCommand(newBinarizeCmd(a))
	cmd.AddCommand(newMarksCmd(a))
	cmd.AddCommand(newGridCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}

func (a *app) init() error {
	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		settings.Log.Level = a.logLevel
	}

	log, err := logging.New(settings.Log)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	a.settings = settings
	a.log = log
	server.Version = Version
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("omr-grader starting")
	return nil
}
