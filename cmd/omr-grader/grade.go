package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

type gradeOptions struct {
	image   string
	keyFile string
	key     string
	out     string
	asJSON  bool
}

func newGradeCmd(a *app) *cobra.Command {
	var o gradeOptions

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade an answer sheet against an answer key",
		Long: `Grade detects the bubbles on a sheet, picks the most-filled alternative of
every question and compares it with the answer key.

The key is given inline with --key (one letter per question, '-' to skip a
question) or as a YAML file with --key-file. Without either, answer_key_file
from the configuration is used.`,
		Example: `  # Grade with an inline key and save the annotated sheet
  omr-grader grade --image sheet.jpg --key CDDCE --out graded.jpg

  # Grade with a key file and print JSON
  omr-grader grade --image sheet.jpg --key-file key.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGrade(cmd, o)
		},
	}

	cmd.Flags().StringVar(&o.image, "image", "", "answer sheet image (png, jpeg, gif, bmp)")
	cmd.Flags().StringVar(&o.keyFile, "key-file", "", "answer key YAML or JSON file")
	cmd.Flags().StringVar(&o.key, "key", "", "compact answer key, e.g. CDDCE")
	cmd.Flags().StringVar(&o.out, "out", "", "write the annotated sheet here")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("image")
	cmd.MarkFlagsMutuallyExclusive("key", "key-file")

	return cmd
}

func (a *app) answerKey(o gradeOptions) (grading.AnswerKey, error) {
	switch {
	case o.key != "":
		return grading.ParseAnswerString(o.key)
	case o.keyFile != "":
		return grading.LoadAnswerKey(o.keyFile)
	case a.settings.AnswerKeyFile != "":
		return grading.LoadAnswerKey(a.settings.AnswerKeyFile)
	default:
		return nil, fmt.Errorf("%w: use --key, --key-file or answer_key_file", grading.ErrInvalidAnswerKey)
	}
}

func (a *app) runGrade(cmd *cobra.Command, o gradeOptions) error {
	key, err := a.answerKey(o)
	if err != nil {
		return err
	}
	palette, err := a.settings.Palette.Parse()
	if err != nil {
		return err
	}
	img, err := a.loadFrame(o.image)
	if err != nil {
		return err
	}

	res, err := grading.Grade(cmd.Context(), img, key, a.settings.Grading,
		grading.WithLogger(a.log.WithField("image", o.image)),
		grading.WithPalette(palette),
	)
	if errors.Is(err, grading.ErrNoMarksDetected) {
		return fmt.Errorf("no answer bubbles found on %s; check the threshold and area settings: %w", o.image, err)
	}
	if err != nil {
		return err
	}

	if o.out != "" {
		if err := imaging.Save(o.out, res.Annotated); err != nil {
			return err
		}
		a.log.WithField("path", o.out).Info("annotated sheet written")
	}

	if o.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printResult(cmd.OutOrStdout(), res)
}

func printResult(w io.Writer, res *grading.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tANSWER\tKEY\tRESULT")
	for _, q := range res.Questions {
		answer := q.Letter
		if !q.Answered {
			answer = "-"
		}
		var verdict string
		switch {
		case !q.Keyed:
			verdict = "unkeyed"
		case q.Correct:
			verdict = "correct"
		case !q.Answered:
			verdict = "unanswered"
		default:
			verdict = "wrong"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", q.Number, answer, q.Expected, verdict)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, res.Score())
	return err
}
