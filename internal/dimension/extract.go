package dimension

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/blueprint-tools-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-tools-mcp/internal/ocr"
)

// DefaultTimeout bounds a single recognition call.
const DefaultTimeout = 30 * time.Second

// Recognition is the outcome of dimension extraction: either Recognized
// samples or an Unavailable reason.
type Recognition interface {
	// Samples returns the extracted values in metres. It is empty when
	// recognition was unavailable.
	Samples() []float64

	// Available reports whether recognition ran.
	Available() bool

	isRecognition()
}

// Recognized holds the values read from a successful recognition.
type Recognized struct {
	Values []float64
	Text   string
}

func (r Recognized) Samples() []float64 { return r.Values }
func (r Recognized) Available() bool    { return true }
func (Recognized) isRecognition()       {}

// Unavailable records why recognition could not run.
type Unavailable struct {
	Reason error
}

func (u Unavailable) Samples() []float64 { return []float64{} }
func (u Unavailable) Available() bool    { return false }
func (Unavailable) isRecognition()       {}

// Options configures Extract.
type Options struct {
	ParseOptions `yaml:",inline"`

	// BinarizeLevel pre-thresholds the image before recognition. Zero
	// disables it.
	BinarizeLevel uint8 `yaml:"binarize_level" json:"binarize_level"`

	// Timeout bounds the recognition call. Zero means DefaultTimeout.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultOptions returns the extractor defaults.
func DefaultOptions() Options {
	return Options{
		ParseOptions: DefaultParseOptions(),
		Timeout:      DefaultTimeout,
	}
}

// Extract recognizes text on gray and parses dimension values from it.
//
// A nil recognizer, a recognizer error or a timeout produce Unavailable.
// Extract never returns an error; the caller decides whether an
// unavailable recognition matters.
func Extract(ctx context.Context, r ocr.Recognizer, gray *image.Gray, opts Options) Recognition {
	if r == nil {
		return Unavailable{Reason: ocr.ErrOCRNotEnabled}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := r.Recognize(ctx, imaging.Binarize(gray, opts.BinarizeLevel))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("text recognition timed out after %s: %w", timeout, err)
		}
		return Unavailable{Reason: err}
	}

	return Recognized{
		Values: Parse(text, opts.ParseOptions),
		Text:   text,
	}
}
