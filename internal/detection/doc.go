// Package detection finds candidate answer bubbles on a binarized sheet.
//
// The input is a two-valued mask (see imaging.Binarize) in which ink is
// foreground. Detection works on the outer boundaries of connected foreground
// regions: each region is reduced to a bounding box, an enclosed area and a
// filled outline, then filtered by area and width/height ratio.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// # Connectivity
//
// Foreground pixels are 8-connected and background pixels 4-connected. This
// pairing guarantees that a closed ring of ink, even one drawn with diagonal
// steps, always separates its inside from its outside.
//
// # Performance Considerations
//
// Labeling is a single pass over the mask plus one bounded flood per region,
// so run time grows linearly with the sheet area. Sheets are normally
// downscaled to about 1000 px wide before detection, which also keeps bubble
// areas inside the default acceptance band.
package detection
