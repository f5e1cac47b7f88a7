// Package detection finds straight wall candidates in grayscale floor plans.
//
// The detector is the most parameter-sensitive stage of the blueprint
// pipeline. It works in two steps:
//
//  1. Canny edge detection: Gaussian smoothing, Sobel gradients, non-maximum
//     suppression and hysteresis thresholding produce a thin binary EdgeMap.
//  2. Progressive probabilistic Hough transform: edge pixels vote for
//     (θ, ρ) lines in a seeded random order; a line is traced as soon as one
//     of its bins collects enough votes, and its pixels are consumed so they
//     cannot support another line.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// EdgeMap coordinates are relative to the source image's Bounds().Min;
// DetectSegments adds the offset back so segments are in source coordinates.
//
// # Parameters
//
// Defaults (see DefaultParams) are tuned for clean scans of hand-drawn plans:
// blur kernel 5, Canny thresholds 50/150, 100 Hough votes, segments at least
// 50px long with gaps of at most 10px. Thin pencil lines may need lower Canny
// thresholds; dense hatching may need a higher vote threshold.
//
// # Determinism
//
// The Hough visiting order comes from a PCG generator seeded by Params.Seed,
// so the same image and parameters always produce the same segments.
//
// # Limitations
//
// Detection works best on high-contrast outlines. Curved walls are broken into
// short segments that usually fall under MinLength; thick walls produce one
// segment per side of the stroke.
package detection
