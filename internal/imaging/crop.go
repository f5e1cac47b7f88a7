package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangular region of interest in source pixel coordinates.
// X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// IsZero reports whether the region is unset.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// CropRegion extracts a region of interest from an image.
//
// The result is anchored at (0, 0), so anything detected in it is in
// region-local coordinates. A zero Region returns the image unchanged.
//
// # Errors
//
// Returns an error if the region is empty or extends past the image bounds.
func CropRegion(img image.Image, r Region) (image.Image, error) {
	if r.IsZero() {
		return img, nil
	}

	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, r.Rect()), nil
}
