// Package server exposes the blueprint analysis pipeline as MCP tools.
//
// The server is built on the official MCP Go SDK and normally runs over
// stdio, started by an MCP client. Every tool returns its result as JSON in
// a single text content block.
//
// # Available Tools
//
// Analysis:
//   - blueprint_analyze: Full pipeline, ordered metric polygon and scale
//   - blueprint_analyze_batch: Full pipeline over many files
//
// Pipeline stages:
//   - blueprint_detect_segments: Wall segments in pixel coordinates
//   - blueprint_extract_dimensions: Dimension labels read by OCR
//
// Diagnostics:
//   - blueprint_edge_detect: Canny edge map as PNG
//   - blueprint_annotate: Plan with segments, vertices and polygon drawn on top
//   - blueprint_image_info: Image size and format
//   - blueprint_ocr_info: Text recognition availability
//
// Pipeline tools accept optional per-call overrides of the detector,
// clusterer and dimension settings loaded from the config file, and an
// optional region of interest.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across tool calls while the file on disk is unchanged, so
// analysing a plan and then annotating it decodes the file once. Editing the
// file invalidates its entry; deleting it makes the next call fail with a load
// error, exactly as without the cache.
//
// # Error Handling
//
// Tool failures (missing files, invalid parameters) are returned as tool
// results with IsError set and the error text as content, so the client
// model can see and correct them. Protocol errors are left to the SDK.
//
// # Usage
//
//	srv := server.New(cfg, version, server.WithLogger(logger))
//	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
//	    log.Fatal(err)
//	}
package server
