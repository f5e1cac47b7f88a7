// Package blueprint turns a raster floor plan into an ordered metric polygon.
//
// An Analyzer runs the full pipeline for one image:
//
//  1. Load and decode the file (the only fatal step, see imaging.LoadError)
//  2. Crop to the region of interest, if one is configured
//  3. Convert to grayscale
//  4. Detect wall segments (detection.DetectSegments)
//  5. Read dimension labels (dimension.Extract)
//  6. Merge segment endpoints into vertex candidates (geometry.Cluster)
//  7. Order the candidates into a polygon (geometry.OrderPolygon)
//  8. Estimate metres per pixel and scale the vertices (scale)
//
// # Degraded Results
//
// Missing geometry and missing text are not errors. Fewer than three vertex
// candidates produce a Result with no points; no readable dimensions produce
// the fallback scale. Callers must not build walls from an empty result.
//
// # Concurrency
//
// An Analyzer keeps no per-call state and is safe for concurrent use.
// AnalyzeBatch fans out over many files with bounded concurrency.
package blueprint
