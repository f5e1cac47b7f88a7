package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Grayscale converts an image to 8-bit luminance.
//
// *image.Gray input is returned unchanged; it is never written to.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	return effect.Grayscale(img)
}

// Binarize maps pixels at or above level to white and the rest to black.
//
// Text recognition on scanned plans is more stable on a clean two-tone image.
// A level of 0 returns the grayscale image untouched.
func Binarize(gray *image.Gray, level uint8) *image.Gray {
	if level == 0 {
		return gray
	}
	return segment.Threshold(gray, level)
}
