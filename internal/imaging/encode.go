package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Output formats understood by EncodeImage.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// jpegQuality matches what most scanner software writes by default.
const jpegQuality = 90

// EncodedImage is an image serialized for transport in a JSON result.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeImage serializes img as base64 PNG or JPEG. An empty format means PNG.
func EncodeImage(img image.Image, format string) (*EncodedImage, error) {
	data, mime, err := EncodeBytes(img, format)
	if err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    mime,
	}, nil
}

// EncodeBytes serializes img and returns the bytes with their MIME type.
func EncodeBytes(img image.Image, format string) ([]byte, string, error) {
	var (
		buf  bytes.Buffer
		err  error
		mime string
	)
	switch strings.ToLower(format) {
	case "", FormatPNG:
		mime = "image/png"
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatJPEG, "jpg":
		mime = "image/jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	default:
		return nil, "", fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), mime, nil
}

// Save writes img to path, choosing the encoder from the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
