package geometry

import "math"

// Point represents a 2D position in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3 represents a metric vertex. Z is always 0 for plan outlines.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Segment is a detected straight edge between two pixel-space endpoints.
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Length returns the Euclidean length of the segment in pixels.
func (s Segment) Length() float64 {
	return Distance(s.A, s.B)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Centroid returns the arithmetic mean of the points.
// An empty slice yields the zero Point.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point{X: sumX / n, Y: sumY / n}
}

// Endpoints flattens segments into their endpoints, A before B, preserving
// segment order. The clusterer depends on this arrival order.
func Endpoints(segments []Segment) []Point {
	points := make([]Point, 0, len(segments)*2)
	for _, s := range segments {
		points = append(points, s.A, s.B)
	}
	return points
}

// MaxPairwiseDistance returns the largest distance between any two points,
// or 0 when fewer than two points are given.
func MaxPairwiseDistance(points []Point) float64 {
	maxDist := 0.0
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := Distance(points[i], points[j]); d > maxDist {
				maxDist = d
			}
		}
	}
	return maxDist
}
