// Package imaging loads, normalizes, binarizes and annotates answer sheets.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Binarize, NormalizeFrame and Canvas always return images whose origin is
// (0,0), so a bubble found on a mask can be drawn on the annotation canvas at
// the same coordinates.
//
// # Thread Safety
//
// SheetCache is safe for concurrent use. Every other operation is stateless
// and never modifies its input image.
//
// # Error Handling
//
// Undecodable files and images with zero area are reported as ErrInvalidImage.
// Invalid regions, colors and formats return plain descriptive errors.
package imaging
