package main

import (
	"image"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// loadFrame decodes the sheet at path and applies the configured frame
// normalization.
func (a *app) loadFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return imaging.NormalizeFrame(img, a.settings.Frame)
}
