package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned when Tesseract support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer turns an image into raw text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecognizerFunc adapts an ordinary function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

// Recognize calls f(ctx, img).
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// PageSegMode controls how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes used for plans. Values match Tesseract's.
const (
	PageSegAuto        PageSegMode = 3  // Fully automatic
	PageSegSingleBlock PageSegMode = 6  // Single uniform block of text
	PageSegSingleLine  PageSegMode = 7  // Single text line
	PageSegSparseText  PageSegMode = 11 // Find as much text as possible in no particular order
)

// Options configures a Tesseract recognizer.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "eng+deu".
	Language string

	// Whitelist restricts recognized characters. Empty allows everything.
	Whitelist string

	// PageSegMode selects the layout analysis. Zero means PageSegSingleBlock.
	PageSegMode PageSegMode
}

// DefaultOptions returns options tuned for dimension labels.
func DefaultOptions() Options {
	return Options{
		Language:    "eng",
		Whitelist:   "0123456789.,",
		PageSegMode: PageSegSingleBlock,
	}
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
	Language  string `json:"language,omitempty"`
}

type recognition struct {
	text string
	err  error
}

// runWithContext runs fn in its own goroutine and returns early if ctx is
// done first.
func runWithContext(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan recognition, 1)
	go func() {
		text, err := fn()
		done <- recognition{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}
