package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

func newGridCmd(a *app) *cobra.Command {
	var (
		image   string
		out     string
		spacing int
		labels  bool
	)

	cmd := &cobra.Command{
		Use:     "grid",
		Short:   "Draw a coordinate grid over a raw sheet to choose frame.roi",
		Example: `  omr-grader grid --image frame.jpg --spacing 50 --out grid.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := imaging.Open(image)
			if err != nil {
				return err
			}
			if spacing <= 0 {
				return fmt.Errorf("--spacing must be positive, got %d", spacing)
			}
			canvas := imaging.DrawGrid(img, imaging.GridOptions{
				Spacing:         spacing,
				ShowCoordinates: labels,
			})
			if err := imaging.Save(out, canvas); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "grid written to %s\n", out)
			return err
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "raw sheet or camera frame")
	cmd.Flags().StringVar(&out, "out", "grid.png", "output file")
	cmd.Flags().IntVar(&spacing, "spacing", imaging.DefaultGridSpacing, "pixels between grid lines")
	cmd.Flags().BoolVar(&labels, "labels", true, "label intersections with coordinates")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
