package geometry

import (
	"math"
	"sort"
)

// MinPolygonVertices is the smallest vertex count that can enclose a room.
const MinPolygonVertices = 3

// OrderPolygon arranges vertex candidates into a closed polygon sorted by the
// angle from their centroid, ascending in atan2 order (-π, π].
//
// Vertices with identical angles keep their input order. Fewer than
// MinPolygonVertices candidates yield an empty polygon; no walls can be
// formed from them, and that is not treated as an error.
//
// The input slice is not modified.
func OrderPolygon(candidates []Point) []Point {
	if len(candidates) < MinPolygonVertices {
		return []Point{}
	}

	center := Centroid(candidates)

	type keyed struct {
		p     Point
		angle float64
	}
	keys := make([]keyed, len(candidates))
	for i, p := range candidates {
		keys[i] = keyed{p: p, angle: math.Atan2(p.Y-center.Y, p.X-center.X)}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].angle < keys[j].angle
	})

	ordered := make([]Point, len(keys))
	for i, k := range keys {
		ordered[i] = k.p
	}
	return ordered
}
