package detection

import (
	"math"
	"math/rand/v2"

	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

// HoughParams controls the probabilistic Hough line search.
type HoughParams struct {
	// Threshold is the accumulator vote count a line needs before it is traced.
	Threshold int

	// MinLength is the minimum x- or y-extent, in pixels, of an accepted segment.
	MinLength int

	// MaxGap is the largest run of missing edge pixels bridged within one segment.
	MaxGap int

	// AngleStep is the θ resolution in degrees. ρ resolution is 1 pixel.
	AngleStep float64

	// Seed fixes the pixel visiting order so results are reproducible.
	Seed uint64
}

// HoughSegments finds line segments in an edge map with the progressive
// probabilistic Hough transform.
//
// # Algorithm
//
// Edge pixels are visited once each in a seeded random order:
//
//  1. The pixel votes in (θ, ρ) space for every θ step.
//  2. If none of its bins reaches Threshold, move on; the vote stays.
//  3. Otherwise the line through the pixel at the winning θ is walked in
//     both directions, bridging up to MaxGap missing pixels, to find the
//     segment ends.
//  4. The walked pixels are removed from the edge map. When the segment's
//     x- or y-extent reaches MinLength it is accepted and the votes of its
//     pixels are withdrawn so they cannot support another line.
//
// The input map is not modified. An edge map with no qualifying lines yields
// an empty, non-nil slice.
func HoughSegments(edges *EdgeMap, p HoughParams) []geometry.Segment {
	width, height := edges.Width, edges.Height
	segments := make([]geometry.Segment, 0)
	if width == 0 || height == 0 {
		return segments
	}

	angleStep := p.AngleStep
	if angleStep <= 0 {
		angleStep = 1
	}
	numAngles := int(math.Round(180 / angleStep))
	if numAngles < 1 {
		numAngles = 1
	}
	cosTab := make([]float64, numAngles)
	sinTab := make([]float64, numAngles)
	for n := 0; n < numAngles; n++ {
		theta := float64(n) * angleStep * math.Pi / 180
		cosTab[n] = math.Cos(theta)
		sinTab[n] = math.Sin(theta)
	}

	maxRho := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	numRho := 2*maxRho + 1
	accumulator := make([]int, numAngles*numRho)

	rhoIndex := func(x, y, n int) int {
		r := int(math.Round(float64(x)*cosTab[n] + float64(y)*sinTab[n]))
		return n*numRho + r + maxRho
	}

	mask := edges.Clone()
	voted := NewEdgeMap(width, height)

	type pixel struct{ x, y int }
	points := make([]pixel, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask.edges[y][x] {
				points = append(points, pixel{x, y})
			}
		}
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(points), func(i, j int) {
		points[i], points[j] = points[j], points[i]
	})

	unvote := func(x, y int) {
		if !voted.edges[y][x] {
			return
		}
		for n := 0; n < numAngles; n++ {
			accumulator[rhoIndex(x, y, n)]--
		}
		voted.edges[y][x] = false
	}

	for _, pt := range points {
		if !mask.edges[pt.y][pt.x] {
			continue
		}

		bestVotes := p.Threshold - 1
		bestAngle := -1
		for n := 0; n < numAngles; n++ {
			idx := rhoIndex(pt.x, pt.y, n)
			accumulator[idx]++
			if accumulator[idx] > bestVotes {
				bestVotes = accumulator[idx]
				bestAngle = n
			}
		}
		voted.edges[pt.y][pt.x] = true

		if bestAngle < 0 {
			continue
		}

		// The bin is a line normal; walk along its perpendicular, stepping
		// one pixel on the major axis.
		dx := -sinTab[bestAngle]
		dy := cosTab[bestAngle]
		major := math.Max(math.Abs(dx), math.Abs(dy))
		dx /= major
		dy /= major

		var ends [2]pixel
		for k := 0; k < 2; k++ {
			sx, sy := dx, dy
			if k == 1 {
				sx, sy = -dx, -dy
			}
			ends[k] = pt
			gap := 0
			fx, fy := float64(pt.x), float64(pt.y)
			for {
				x := int(math.Floor(fx + 0.5))
				y := int(math.Floor(fy + 0.5))
				if x < 0 || x >= width || y < 0 || y >= height {
					break
				}
				if mask.edges[y][x] {
					gap = 0
					ends[k] = pixel{x, y}
				} else {
					gap++
					if gap > p.MaxGap {
						break
					}
				}
				fx += sx
				fy += sy
			}
		}

		good := absInt(ends[1].x-ends[0].x) >= p.MinLength ||
			absInt(ends[1].y-ends[0].y) >= p.MinLength

		for k := 0; k < 2; k++ {
			sx, sy := dx, dy
			if k == 1 {
				sx, sy = -dx, -dy
			}
			fx, fy := float64(pt.x), float64(pt.y)
			for {
				x := int(math.Floor(fx + 0.5))
				y := int(math.Floor(fy + 0.5))
				if x < 0 || x >= width || y < 0 || y >= height {
					break
				}
				if mask.edges[y][x] {
					if good {
						unvote(x, y)
					}
					mask.edges[y][x] = false
				}
				if x == ends[k].x && y == ends[k].y {
					break
				}
				fx += sx
				fy += sy
			}
		}

		if good {
			segments = append(segments, geometry.Segment{
				A: geometry.Point{X: float64(ends[0].x), Y: float64(ends[0].y)},
				B: geometry.Point{X: float64(ends[1].x), Y: float64(ends[1].y)},
			})
		}
	}

	return segments
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
