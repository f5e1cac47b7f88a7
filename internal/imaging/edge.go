package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/ironsheep/blueprint-tools-mcp/internal/detection"
)

// EdgeDetectResult contains a rendered Canny edge map encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) are edges and
// black pixels (0) are not. It shows exactly what the line detector sees,
// which makes it the first thing to look at when tuning thresholds.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs the detector's Canny stage and renders the edge map.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - p: Canny parameters, usually detection.Params.Canny().
//
// Returns an error only if PNG encoding fails.
func EdgeDetect(img image.Image, p detection.CannyParams) (*EdgeDetectResult, error) {
	edges := detection.Canny(Grayscale(img), p)
	out := RenderEdges(edges)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       edges.Width,
		Height:      edges.Height,
		EdgePixels:  edges.Count(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// RenderEdges draws an edge map as a white-on-black grayscale image.
func RenderEdges(edges *detection.EdgeMap) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, edges.Width, edges.Height))
	for y := 0; y < edges.Height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < edges.Width; x++ {
			if edges.At(x, y) {
				row[x] = 255
			}
		}
	}
	return out
}
