//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Tesseract is a stub recognizer used when the "ocr" build tag is not set.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled.
// To enable OCR, rebuild with: go build -tags ocr
func NewTesseract(opts Options) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Recognize returns ErrOCRNotEnabled. It is safe to call on a nil receiver.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	return "", ErrOCRNotEnabled
}

// GetInfo reports that OCR is not compiled in.
func GetInfo(opts Options) Info {
	return Info{
		Available: false,
		Error:     ErrOCRNotEnabled.Error(),
		Backend:   "none",
		Language:  opts.Language,
	}
}
