package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

func newBinarizeCmd(a *app) *cobra.Command {
	var image, out string

	cmd := &cobra.Command{
		Use:   "binarize",
		Short: "Write the thresholded mask the grader works on",
		Long: `Binarize applies the configured frame normalization, blur and threshold and
writes the resulting mask, ink white on black. Use it to tune threshold_value
and blur_kernel_size for a scanner or camera.`,
		Example: `  omr-grader binarize --image sheet.jpg --out mask.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.loadFrame(image)
			if err != nil {
				return err
			}
			mask, err := imaging.Binarize(img, a.settings.Grading.BinarizeOptions())
			if err != nil {
				return err
			}
			if err := imaging.Save(out, mask); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "mask written to %s (threshold %d)\n", out, mask.Threshold)
			return err
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "answer sheet image")
	cmd.Flags().StringVar(&out, "out", "mask.png", "output mask file")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
