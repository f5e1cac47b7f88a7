package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/blueprint-tools-mcp/internal/blueprint"
	"github.com/ironsheep/blueprint-tools-mcp/internal/detection"
	"github.com/ironsheep/blueprint-tools-mcp/internal/dimension"
	"github.com/ironsheep/blueprint-tools-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-tools-mcp/internal/ocr"
)

type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

func (s *Server) handlers() map[string]toolHandler {
	return map[string]toolHandler{
		"blueprint_analyze":            s.handleAnalyze,
		"blueprint_analyze_batch":      s.handleAnalyzeBatch,
		"blueprint_detect_segments":    s.handleDetectSegments,
		"blueprint_extract_dimensions": s.handleExtractDimensions,
		"blueprint_edge_detect":        s.handleEdgeDetect,
		"blueprint_annotate":           s.handleAnnotate,
		"blueprint_image_info":         s.handleImageInfo,
		"blueprint_ocr_info":           s.handleOCRInfo,
	}
}

func (s *Server) registerTools() {
	handlers := s.handlers()
	for _, tool := range toolDefinitions() {
		h, ok := handlers[tool.Name]
		if !ok {
			panic(fmt.Sprintf("no handler for tool %s", tool.Name))
		}
		s.mcp.AddTool(tool, s.wrap(tool.Name, h))
	}
}

// wrap adapts a handler to the MCP SDK. Handler errors become tool errors
// (IsError results) rather than protocol errors.
func (s *Server) wrap(name string, h toolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}

		resp, err := h(ctx, args)
		if err != nil {
			s.logger.Debug("tool failed", "tool", name, "error", err)
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("failed to marshal result: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func decodeArgs(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// detectorArgs are optional per-call overrides of the detector config.
type detectorArgs struct {
	BlurRadius     *int     `json:"blur_radius"`
	CannyLow       *float64 `json:"canny_low"`
	CannyHigh      *float64 `json:"canny_high"`
	HoughThreshold *int     `json:"hough_threshold"`
	MinLength      *int     `json:"min_length"`
	MaxGap         *int     `json:"max_gap"`
}

func (d detectorArgs) apply(p detection.Params) (detection.Params, error) {
	if d.BlurRadius != nil {
		p.BlurRadius = *d.BlurRadius
	}
	if d.CannyLow != nil {
		p.CannyLow = *d.CannyLow
	}
	if d.CannyHigh != nil {
		p.CannyHigh = *d.CannyHigh
	}
	if d.HoughThreshold != nil {
		p.HoughThreshold = *d.HoughThreshold
	}
	if d.MinLength != nil {
		p.MinLength = *d.MinLength
	}
	if d.MaxGap != nil {
		p.MaxGap = *d.MaxGap
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid detector parameters: %w", err)
	}
	return p, nil
}

type clusterArgs struct {
	Tolerance *float64 `json:"tolerance"`
}

type dimensionArgs struct {
	CommaDecimal  *bool    `json:"comma_decimal"`
	MinValue      *float64 `json:"min_value"`
	BinarizeLevel *int     `json:"binarize_level"`
}

func (d dimensionArgs) apply(o dimension.Options) (dimension.Options, error) {
	if d.CommaDecimal != nil {
		o.CommaDecimal = *d.CommaDecimal
	}
	if d.MinValue != nil {
		if *d.MinValue < 0 {
			return o, fmt.Errorf("min_value must be >= 0")
		}
		o.MinValue = *d.MinValue
	}
	if d.BinarizeLevel != nil {
		if *d.BinarizeLevel < 0 || *d.BinarizeLevel > 255 {
			return o, fmt.Errorf("binarize_level must be in [0, 255]")
		}
		o.BinarizeLevel = uint8(*d.BinarizeLevel)
	}
	return o, nil
}

type pipelineArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region"`
	detectorArgs
	clusterArgs
	dimensionArgs
}

// settings builds per-call analyzer settings from the server config.
func (s *Server) settings(a pipelineArgs) (blueprint.Settings, error) {
	st := s.analyzer.Settings()

	var err error
	if st.Detector, err = a.detectorArgs.apply(st.Detector); err != nil {
		return st, err
	}
	if st.Dimensions, err = a.dimensionArgs.apply(st.Dimensions); err != nil {
		return st, err
	}
	if a.Tolerance != nil {
		if *a.Tolerance < 0 {
			return st, fmt.Errorf("tolerance must be >= 0")
		}
		st.Tolerance = *a.Tolerance
	}
	if a.Region != nil {
		st.Region = *a.Region
	}
	return st, nil
}

// loadRegion loads the image at path through the cache and crops it.
func (s *Server) loadRegion(path string, region *imaging.Region) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return img, nil
	}
	return imaging.CropRegion(img, *region)
}

// === Pipeline Handlers ===

type analyzeArgs struct {
	pipelineArgs
	Detailed bool `json:"detailed"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (any, error) {
	var a analyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	st, err := s.settings(a.pipelineArgs)
	if err != nil {
		return nil, err
	}

	report, err := s.analyzer.WithSettings(st).AnalyzeDetailed(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if a.Detailed {
		return report, nil
	}
	return report.Result, nil
}

type analyzeBatchArgs struct {
	Paths       []string `json:"paths"`
	Concurrency int      `json:"concurrency"`
	detectorArgs
	clusterArgs
	dimensionArgs
}

type analyzeBatchResult struct {
	Items  []blueprint.BatchItem `json:"items"`
	Count  int                   `json:"count"`
	Failed int                   `json:"failed"`
}

func (s *Server) handleAnalyzeBatch(ctx context.Context, args json.RawMessage) (any, error) {
	var a analyzeBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}
	st, err := s.settings(pipelineArgs{
		detectorArgs:  a.detectorArgs,
		clusterArgs:   a.clusterArgs,
		dimensionArgs: a.dimensionArgs,
	})
	if err != nil {
		return nil, err
	}
	if a.Concurrency <= 0 {
		a.Concurrency = s.cfg.Server.BatchConcurrency
	}

	items, err := s.analyzer.WithSettings(st).AnalyzeBatch(ctx, a.Paths, a.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	return &analyzeBatchResult{Items: items, Count: len(items), Failed: failed}, nil
}

func (s *Server) handleDetectSegments(ctx context.Context, args json.RawMessage) (any, error) {
	var a pipelineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	params, err := a.detectorArgs.apply(s.analyzer.Settings().Detector)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	return detection.DetectSegments(imaging.Grayscale(img), params), nil
}

type extractDimensionsResult struct {
	Dimensions []float64 `json:"dimensions"`
	Count      int       `json:"count"`
	Available  bool      `json:"available"`
	Text       string    `json:"text,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (s *Server) handleExtractDimensions(ctx context.Context, args json.RawMessage) (any, error) {
	var a pipelineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.dimensionArgs.apply(s.analyzer.Settings().Dimensions)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	rec := dimension.Extract(ctx, s.recognizer, imaging.Grayscale(img), opts)
	result := &extractDimensionsResult{
		Dimensions: rec.Samples(),
		Count:      len(rec.Samples()),
		Available:  rec.Available(),
	}
	switch r := rec.(type) {
	case dimension.Recognized:
		result.Text = r.Text
	case dimension.Unavailable:
		if r.Reason != nil {
			result.Error = r.Reason.Error()
		}
	}
	return result, nil
}

func (s *Server) handleEdgeDetect(ctx context.Context, args json.RawMessage) (any, error) {
	var a pipelineArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	params, err := a.detectorArgs.apply(s.analyzer.Settings().Detector)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, params.Canny())
}

type annotateArgs struct {
	pipelineArgs
	ShowIndices  *bool  `json:"show_indices"`
	PolygonColor string `json:"polygon_color"`
	MaxSide      *int   `json:"max_side"`
}

type annotateResult struct {
	*imaging.AnnotateResult
	Polygon int     `json:"polygon_vertices"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleAnnotate(ctx context.Context, args json.RawMessage) (any, error) {
	var a annotateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	st, err := s.settings(a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	// img is already cropped
	st.Region = imaging.Region{}
	report, err := s.analyzer.WithSettings(st).AnalyzeImageDetailed(ctx, img)
	if err != nil {
		return nil, err
	}

	opts := imaging.AnnotateOptions{
		Segments:     report.Segments,
		Vertices:     report.Vertices,
		Polygon:      report.Polygon,
		ShowIndices:  true,
		PolygonColor: a.PolygonColor,
		MaxSide:      s.cfg.Server.OverlayMaxSide,
	}
	if a.ShowIndices != nil {
		opts.ShowIndices = *a.ShowIndices
	}
	if a.MaxSide != nil {
		opts.MaxSide = *a.MaxSide
	}

	overlay, err := imaging.Annotate(img, opts)
	if err != nil {
		return nil, err
	}
	return &annotateResult{
		AnnotateResult: overlay,
		Polygon:        len(report.Polygon),
		Scale:          float64(report.Scale),
	}, nil
}

// === Information Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(ctx context.Context, args json.RawMessage) (any, error) {
	var a imageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type ocrInfoResult struct {
	ocr.Info
	Enabled bool `json:"enabled"`
	InUse   bool `json:"in_use"`
}

func (s *Server) handleOCRInfo(ctx context.Context, args json.RawMessage) (any, error) {
	return &ocrInfoResult{
		Info:    ocr.GetInfo(s.cfg.OCROptions()),
		Enabled: s.cfg.Dimensions.Enabled,
		InUse:   s.recognizer != nil,
	}, nil
}
