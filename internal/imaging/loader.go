package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// ErrInvalidImage is returned when a sheet cannot be decoded or has no pixels.
var ErrInvalidImage = errors.New("invalid image")

// CheckImage reports ErrInvalidImage for a nil image or one with zero area.
func CheckImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: no image data", ErrInvalidImage)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: image has zero area (%dx%d)", ErrInvalidImage, b.Dx(), b.Dy())
	}
	return nil
}

// Decode reads an encoded sheet (PNG, JPEG, GIF or BMP) from r.
//
// EXIF orientation is applied so phone photographs come out upright. Any
// decoding failure, and any image with zero area, is reported as
// ErrInvalidImage.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if err := CheckImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

// Open loads and decodes a sheet from disk. Failing to open the file is an
// I/O error; failing to decode it is ErrInvalidImage.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// SheetCache provides thread-safe caching of decoded sheets keyed by path.
//
// The MCP server grades the same scan repeatedly while an operator tunes
// thresholds, so decoded images are kept until Evict is called.
type SheetCache struct {
	mu     sync.RWMutex
	sheets map[string]image.Image
}

// NewSheetCache creates an empty cache that is ready for concurrent use.
func NewSheetCache() *SheetCache {
	return &SheetCache{
		sheets: make(map[string]image.Image),
	}
}

// Load returns the cached sheet for path, decoding it from disk on first use.
//
// The exact path string is the cache key; a relative and an absolute path to
// the same file are cached separately.
func (c *SheetCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.sheets[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sheets[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a single sheet. Unknown paths are ignored.
func (c *SheetCache) Evict(path string) {
	c.mu.Lock()
	delete(c.sheets, path)
	c.mu.Unlock()
}

// Len returns the number of cached sheets.
func (c *SheetCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sheets)
}

// SheetInfo contains metadata about a loaded sheet file.
type SheetInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "bmp" or "unknown", from the file extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadSheetInfo loads a sheet through the cache and describes it.
func LoadSheetInfo(cache *SheetCache, path string) (*SheetInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	}

	bounds := img.Bounds()
	return &SheetInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
