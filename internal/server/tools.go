package server

import "github.com/modelcontextprotocol/go-sdk/mcp"

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// withProps merges property maps; later maps win.
func withProps(maps ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var pathProp = map[string]any{
	"path": map[string]any{
		"type":        "string",
		"description": "Absolute path to the plan image (JPEG, PNG, BMP, TIFF or GIF)",
	},
}

var regionProp = map[string]any{
	"region": map[string]any{
		"type":        "object",
		"description": "Optional region of interest; x2/y2 are exclusive. Results are in region-local coordinates.",
		"properties": map[string]any{
			"x1": map[string]any{"type": "integer"},
			"y1": map[string]any{"type": "integer"},
			"x2": map[string]any{"type": "integer"},
			"y2": map[string]any{"type": "integer"},
		},
	},
}

var detectorProps = map[string]any{
	"blur_radius": map[string]any{
		"type":        "integer",
		"description": "Nominal Gaussian kernel size, odd; sets sigma (default: 5)",
	},
	"canny_low": map[string]any{
		"type":        "number",
		"description": "Low hysteresis threshold, 0-255 scale (default: 50)",
	},
	"canny_high": map[string]any{
		"type":        "number",
		"description": "High hysteresis threshold, 0-255 scale (default: 150)",
	},
	"hough_threshold": map[string]any{
		"type":        "integer",
		"description": "Votes needed to accept a line (default: 100)",
	},
	"min_length": map[string]any{
		"type":        "integer",
		"description": "Minimum segment extent in pixels (default: 50)",
	},
	"max_gap": map[string]any{
		"type":        "integer",
		"description": "Largest gap bridged inside a segment, in pixels (default: 10)",
	},
}

var clusterProps = map[string]any{
	"tolerance": map[string]any{
		"type":        "number",
		"description": "Endpoint merge distance in pixels (default: 10)",
	},
}

var dimensionProps = map[string]any{
	"comma_decimal": map[string]any{
		"type":        "boolean",
		"description": "Read '4,50' as 4.5 instead of 4 and 50 (default: false)",
	},
	"min_value": map[string]any{
		"type":        "number",
		"description": "Discard values at or below this (default: 0.5)",
	},
	"binarize_level": map[string]any{
		"type":        "integer",
		"description": "Threshold the image at this gray level before OCR, 0 disables (default: 0)",
	},
}

// toolDefinitions returns all available tools.
func toolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "blueprint_analyze",
			Description: "Analyze a floor plan image: detect walls, read dimension labels and return the room outline as ordered metric points (x, y, z=0) with the scale in metres per pixel. Empty points mean no geometry was found.",
			InputSchema: inputSchema(withProps(pathProp, regionProp, detectorProps, clusterProps, dimensionProps, map[string]any{
				"detailed": map[string]any{
					"type":        "boolean",
					"description": "Include segments, pixel polygon, OCR status and timings (default: false)",
				},
			}), []string{"path"}),
		},
		{
			Name:        "blueprint_analyze_batch",
			Description: "Analyze several floor plan images concurrently. Results are returned in input order; a failing file records its error without stopping the others.",
			InputSchema: inputSchema(withProps(detectorProps, clusterProps, dimensionProps, map[string]any{
				"paths": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Absolute paths to plan images",
				},
				"concurrency": map[string]any{
					"type":        "integer",
					"description": "Maximum analyses running at once (default: from config)",
				},
			}), []string{"paths"}),
		},
		{
			Name:        "blueprint_detect_segments",
			Description: "Run only the edge/line detector and return the straight wall candidates in pixel coordinates. Use this to tune detector parameters.",
			InputSchema: inputSchema(withProps(pathProp, regionProp, detectorProps), []string{"path"}),
		},
		{
			Name:        "blueprint_extract_dimensions",
			Description: "Run only text recognition and return the dimension values (metres) read from the plan, with the raw recognized text.",
			InputSchema: inputSchema(withProps(pathProp, regionProp, dimensionProps), []string{"path"}),
		},
		{
			Name:        "blueprint_edge_detect",
			Description: "Render the Canny edge map the detector works on as a base64 PNG (white edges on black).",
			InputSchema: inputSchema(withProps(pathProp, regionProp, detectorProps), []string{"path"}),
		},
		{
			Name:        "blueprint_annotate",
			Description: "Analyze a plan and return it as a base64 PNG with detected segments, vertex candidates and the ordered polygon drawn on top.",
			InputSchema: inputSchema(withProps(pathProp, regionProp, detectorProps, clusterProps, map[string]any{
				"show_indices": map[string]any{
					"type":        "boolean",
					"description": "Label polygon vertices with their order (default: true)",
				},
				"polygon_color": map[string]any{
					"type":        "string",
					"description": "Hex color for the polygon outline (default: #00C853)",
				},
				"max_side": map[string]any{
					"type":        "integer",
					"description": "Downscale so neither side exceeds this many pixels (default: from config)",
				},
			}), []string{"path"}),
		},
		{
			Name:        "blueprint_image_info",
			Description: "Get the width, height, format and file size of an image file.",
			InputSchema: inputSchema(pathProp, []string{"path"}),
		},
		{
			Name:        "blueprint_ocr_info",
			Description: "Report whether text recognition is available, with the engine version and language.",
			InputSchema: inputSchema(map[string]any{}, nil),
		},
	}
}
