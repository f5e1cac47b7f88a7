// Package scale infers the metres-per-pixel ratio of a blueprint by matching
// the widest span of the detected outline against the largest dimension
// printed on the drawing.
//
// The heuristic assumes the single largest measurement labels the single
// largest span. That holds for simple rectangular rooms and is fragile for
// complex plans; callers should treat the factor as an estimate.
package scale

import (
	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

// Factor is a conversion ratio from pixel distance to metres.
type Factor float64

// Fallback is used whenever no ratio can be inferred: 1 cm per pixel.
const Fallback Factor = 0.01

// Estimator computes a Factor from a pixel-space polygon and dimension samples.
//
// The zero value uses Fallback.
type Estimator struct {
	// Fallback replaces the package Fallback when positive.
	Fallback Factor
}

// Estimate computes the scale with the package Fallback.
func Estimate(polygon []geometry.Point, dimensions []float64) Factor {
	return Estimator{}.Estimate(polygon, dimensions)
}

// Estimate returns max(dimensions) / max pairwise vertex distance.
//
// The fallback is returned when the polygon or the dimensions are empty, or
// when every vertex coincides so the widest span is zero.
func (e Estimator) Estimate(polygon []geometry.Point, dimensions []float64) Factor {
	fallback := e.Fallback
	if fallback <= 0 {
		fallback = Fallback
	}

	if len(polygon) == 0 || len(dimensions) == 0 {
		return fallback
	}

	maxPixels := geometry.MaxPairwiseDistance(polygon)
	if maxPixels == 0 {
		return fallback
	}

	maxMetres := dimensions[0]
	for _, d := range dimensions[1:] {
		if d > maxMetres {
			maxMetres = d
		}
	}
	if maxMetres <= 0 {
		return fallback
	}

	return Factor(maxMetres / maxPixels)
}

// Apply converts pixel-space vertices to metric vertices with z = 0.
func (f Factor) Apply(points []geometry.Point) []geometry.Point3 {
	scaled := make([]geometry.Point3, len(points))
	for i, p := range points {
		scaled[i] = geometry.Point3{
			X: p.X * float64(f),
			Y: p.Y * float64(f),
			Z: 0,
		}
	}
	return scaled
}

// Pixels converts metric vertices back to pixel space, dropping z.
func (f Factor) Pixels(points []geometry.Point3) []geometry.Point {
	unscaled := make([]geometry.Point, len(points))
	for i, p := range points {
		unscaled[i] = geometry.Point{
			X: p.X / float64(f),
			Y: p.Y / float64(f),
		}
	}
	return unscaled
}
