package server

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

type analyzeResponse struct {
	Points     []geometry.Point3 `json:"points"`
	Dimensions []float64         `json:"dimensions"`
	Scale      float64           `json:"scale"`
}

func TestAnalyze(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText("12.0 0.2"))))
	path := createRoomFile(t)

	var resp analyzeResponse
	callToolOK(t, session, "blueprint_analyze", map[string]any{"path": path}, &resp)

	require.GreaterOrEqual(t, len(resp.Points), 3)
	assert.Equal(t, []float64{12.0}, resp.Dimensions)
	assert.Greater(t, resp.Scale, 0.0)

	flat := make([]geometry.Point, len(resp.Points))
	for i, p := range resp.Points {
		assert.Zero(t, p.Z)
		flat[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	assert.InDelta(t, 12.0, geometry.MaxPairwiseDistance(flat), 1e-6)
}

func TestAnalyze_Detailed(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))
	path := createRoomFile(t)

	var resp struct {
		analyzeResponse
		Segments []geometry.Segment `json:"segments"`
		Polygon  []geometry.Point   `json:"polygon"`
		OCRError string             `json:"ocr_error"`
		Timings  map[string]float64 `json:"timings"`
	}
	callToolOK(t, session, "blueprint_analyze", map[string]any{"path": path, "detailed": true}, &resp)

	assert.GreaterOrEqual(t, len(resp.Segments), 4)
	assert.Len(t, resp.Polygon, len(resp.Points))
	assert.Equal(t, 0.01, resp.Scale)
	assert.NotEmpty(t, resp.OCRError)
	assert.Contains(t, resp.Timings, "total_ms")
}

func TestAnalyze_BlankImage(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText("4.5"))))

	var resp analyzeResponse
	callToolOK(t, session, "blueprint_analyze", map[string]any{"path": createBlankFile(t, 100, 100)}, &resp)

	assert.Empty(t, resp.Points)
	assert.NotNil(t, resp.Points)
	assert.Equal(t, 0.01, resp.Scale)
}

func TestAnalyze_InvalidOverrides(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))
	path := createRoomFile(t)

	tests := []map[string]any{
		{"path": path, "blur_radius": 4},
		{"path": path, "canny_low": 200, "canny_high": 100},
		{"path": path, "tolerance": -1},
		{"path": path, "binarize_level": 300},
		{"path": path, "region": map[string]any{"x1": 0, "y1": 0, "x2": 500, "y2": 10}},
	}
	for _, args := range tests {
		_, isErr := callTool(t, session, "blueprint_analyze", args)
		assert.True(t, isErr, "expected tool error for %v", args)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText("6"))))
	room := createRoomFile(t)
	missing := filepath.Join(t.TempDir(), "missing.png")

	var resp struct {
		Items []struct {
			Path   string          `json:"path"`
			Result *analyzeResponse `json:"result"`
			Error  string          `json:"error"`
		} `json:"items"`
		Count  int `json:"count"`
		Failed int `json:"failed"`
	}
	callToolOK(t, session, "blueprint_analyze_batch", map[string]any{
		"paths":       []string{room, missing},
		"concurrency": 2,
	}, &resp)

	require.Equal(t, 2, resp.Count)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, room, resp.Items[0].Path)
	require.NotNil(t, resp.Items[0].Result)
	assert.Equal(t, []float64{6}, resp.Items[0].Result.Dimensions)
	assert.NotEmpty(t, resp.Items[1].Error)

	_, isErr := callTool(t, session, "blueprint_analyze_batch", map[string]any{"paths": []string{}})
	assert.True(t, isErr)
}

func TestDetectSegments(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))
	path := createRoomFile(t)

	var resp struct {
		Segments   []geometry.Segment `json:"segments"`
		Count      int                `json:"count"`
		EdgePixels int                `json:"edge_pixels"`
	}
	callToolOK(t, session, "blueprint_detect_segments", map[string]any{"path": path}, &resp)
	assert.GreaterOrEqual(t, resp.Count, 4)
	assert.Len(t, resp.Segments, resp.Count)
	assert.Positive(t, resp.EdgePixels)

	// a vote threshold above any wall length finds nothing
	callToolOK(t, session, "blueprint_detect_segments", map[string]any{
		"path":            path,
		"hough_threshold": 5000,
	}, &resp)
	assert.Zero(t, resp.Count)
}

func TestDetectSegments_Region(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))
	path := createRoomFile(t)

	var resp struct {
		Segments []geometry.Segment `json:"segments"`
	}
	callToolOK(t, session, "blueprint_detect_segments", map[string]any{
		"path":   path,
		"region": map[string]any{"x1": 100, "y1": 100, "x2": 200, "y2": 200},
	}, &resp)
	assert.Empty(t, resp.Segments, "the room interior has no walls")
}

func TestExtractDimensions(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText("4,50 x 3,20"))))
	path := createBlankFile(t, 60, 40)

	var resp struct {
		Dimensions []float64 `json:"dimensions"`
		Count      int       `json:"count"`
		Available  bool      `json:"available"`
		Text       string    `json:"text"`
	}
	callToolOK(t, session, "blueprint_extract_dimensions", map[string]any{
		"path":          path,
		"comma_decimal": true,
	}, &resp)

	assert.True(t, resp.Available)
	assert.Equal(t, []float64{4.5, 3.2}, resp.Dimensions)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "4,50 x 3,20", resp.Text)
}

func TestExtractDimensions_Unavailable(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))

	var resp struct {
		Dimensions []float64 `json:"dimensions"`
		Available  bool      `json:"available"`
		Error      string    `json:"error"`
	}
	callToolOK(t, session, "blueprint_extract_dimensions", map[string]any{"path": createBlankFile(t, 20, 20)}, &resp)

	assert.False(t, resp.Available)
	assert.Empty(t, resp.Dimensions)
	assert.NotEmpty(t, resp.Error)
}

func TestEdgeDetect(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))

	var resp struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		EdgePixels  int    `json:"edge_pixels"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	callToolOK(t, session, "blueprint_edge_detect", map[string]any{"path": createRoomFile(t)}, &resp)

	assert.Equal(t, 300, resp.Width)
	assert.Equal(t, 300, resp.Height)
	assert.Positive(t, resp.EdgePixels)
	assert.Equal(t, "image/png", resp.MimeType)

	data, err := base64.StdEncoding.DecodeString(resp.ImageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestAnnotate(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText("5"))))

	var resp struct {
		Width       int     `json:"width"`
		Height      int     `json:"height"`
		Segments    int     `json:"segments"`
		Vertices    int     `json:"vertices"`
		Polygon     int     `json:"polygon_vertices"`
		Scale       float64 `json:"scale"`
		ImageBase64 string  `json:"image_base64"`
	}
	callToolOK(t, session, "blueprint_annotate", map[string]any{
		"path":     createRoomFile(t),
		"max_side": 150,
	}, &resp)

	assert.Equal(t, 150, resp.Width)
	assert.Equal(t, 150, resp.Height)
	assert.GreaterOrEqual(t, resp.Segments, 4)
	assert.GreaterOrEqual(t, resp.Polygon, 3)
	assert.GreaterOrEqual(t, resp.Vertices, resp.Polygon)
	assert.False(t, math.IsNaN(resp.Scale))
	assert.NotEmpty(t, resp.ImageBase64)
}

func TestImageInfo(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(nil)))

	var resp struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	callToolOK(t, session, "blueprint_image_info", map[string]any{"path": createBlankFile(t, 64, 48)}, &resp)

	assert.Equal(t, 64, resp.Width)
	assert.Equal(t, 48, resp.Height)
	assert.Equal(t, "png", resp.Format)
}

func TestOCRInfo(t *testing.T) {
	session := mcpSession(t, newTestServer(t, WithRecognizer(fixedText(""))))

	var resp struct {
		Backend string `json:"backend"`
		Enabled bool   `json:"enabled"`
		InUse   bool   `json:"in_use"`
	}
	callToolOK(t, session, "blueprint_ocr_info", map[string]any{}, &resp)

	assert.NotEmpty(t, resp.Backend)
	assert.True(t, resp.Enabled)
	assert.True(t, resp.InUse)
}
