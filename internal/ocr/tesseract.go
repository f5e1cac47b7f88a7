//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with the Tesseract engine via gosseract.
//
// A new gosseract client is created per call, so one Tesseract value can be
// shared by concurrent analyses.
type Tesseract struct {
	opts Options
}

// NewTesseract creates a recognizer and checks that the engine initializes
// with the requested language.
func NewTesseract(opts Options) (*Tesseract, error) {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.PageSegMode == 0 {
		opts.PageSegMode = PageSegSingleBlock
	}

	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := probe(client); err != nil {
		return nil, err
	}
	return &Tesseract{opts: opts}, nil
}

// probe forces engine initialization, which gosseract otherwise defers to
// the first Text call, so a missing language fails early.
func probe(client *gosseract.Client) error {
	var buf bytes.Buffer
	blank := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	if err := png.Encode(&buf, blank); err != nil {
		return fmt.Errorf("failed to encode probe image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to set probe image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		return fmt.Errorf("failed to initialize tesseract: %w", err)
	}
	return nil
}

func newClient(opts Options) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	return client, nil
}

// Recognize performs OCR on img and returns the text with surrounding
// whitespace trimmed.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	return runWithContext(ctx, func() (string, error) {
		client, err := newClient(t.opts)
		if err != nil {
			return "", err
		}
		defer client.Close()

		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			return "", fmt.Errorf("failed to set image: %w", err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("OCR failed: %w", err)
		}
		return strings.TrimSpace(text), nil
	})
}

// GetInfo reports the Tesseract version and whether the engine initializes
// with the configured language.
func GetInfo(opts Options) Info {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	info := Info{
		Backend:  "gosseract",
		Language: opts.Language,
	}

	client, err := newClient(opts)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer client.Close()

	if err := probe(client); err != nil {
		info.Error = err.Error()
		return info
	}

	info.Available = true
	info.Version = client.Version()
	return info
}
