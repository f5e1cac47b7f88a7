// Package imaging provides the image plumbing around the blueprint pipeline.
//
// It loads plan files, converts them to grayscale, crops regions of interest
// and renders diagnostic images: the Canny edge map the detector works on and
// an annotated overlay showing segments, vertices and the ordered polygon.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and never modify their input images.
//
// # Error Handling
//
// Load failures are reported as *LoadError so callers can tell a missing or
// corrupt file apart from other problems. Other functions return errors for:
//   - Regions outside image bounds or with x1 >= x2 or y1 >= y2
//   - Encoding errors during image output
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// decoding. The cache checks file size and modification time on every lookup,
// so edited or deleted files are never served from memory. Large images may
// consume significant memory while cached; Evict() and Clear() release them.
package imaging
