package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/grading"
)

func newMarksCmd(a *app) *cobra.Command {
	var (
		image  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "marks",
		Short:   "List detected bubbles and the answer read for each question",
		Example: `  omr-grader marks --image sheet.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.loadFrame(image)
			if err != nil {
				return err
			}
			rec, err := grading.Recognize(cmd.Context(), img, a.settings.Grading,
				grading.WithLogger(a.log.WithField("image", image)))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"threshold": rec.Mask.Threshold,
					"regions":   rec.Regions,
					"marks":     rec.Marks,
					"answers":   rec.Answers,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d bubbles in %d regions, %d questions (threshold %d)\n",
				len(rec.Marks), rec.Regions, len(rec.Questions), rec.Mask.Threshold)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUESTION\tBUBBLES\tANSWER")
			for i, q := range rec.Questions {
				answer := "-"
				if res := rec.Answers[i]; res.Answered {
					answer = grading.LetterFor(res.Index)
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\n", i+1, len(q), answer)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "answer sheet image")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print marks and answers as JSON")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
