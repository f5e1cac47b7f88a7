package detection

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// EdgeMap is a binary edge image. Edge pixels are true.
//
// Coordinates are relative to the source image's Bounds().Min.
type EdgeMap struct {
	Width  int
	Height int
	edges  [][]bool
}

// NewEdgeMap allocates an empty edge map.
func NewEdgeMap(width, height int) *EdgeMap {
	edges := make([][]bool, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}
	return &EdgeMap{Width: width, Height: height, edges: edges}
}

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates are not edges.
func (m *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.edges[y][x]
}

// Set marks or clears an edge pixel. Out-of-range coordinates are ignored.
func (m *EdgeMap) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.edges[y][x] = v
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, row := range m.edges {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Clone returns an independent copy of the map.
func (m *EdgeMap) Clone() *EdgeMap {
	c := NewEdgeMap(m.Width, m.Height)
	for y := range m.edges {
		copy(c.edges[y], m.edges[y])
	}
	return c
}

// CannyParams controls smoothing and hysteresis for Canny.
type CannyParams struct {
	// BlurRadius is the nominal kernel size sigma is derived from. Values below 3 disable smoothing.
	BlurRadius int

	// Low and High are hysteresis thresholds on the 0-255 intensity scale.
	Low  float64
	High float64

	// L2Gradient selects sqrt(gx²+gy²) instead of the default |gx|+|gy|.
	L2Gradient bool
}

// Canny computes a binary edge map of a grayscale image.
//
// # Algorithm
//
//  1. Gaussian blur with a BlurRadius×BlurRadius kernel; sigma follows the
//     common rule 0.3*((k-1)/2 - 1) + 0.8 (1.1 for k=5)
//  2. Sobel 3×3 gradients on 0-255 intensities, clamped borders
//  3. Non-maximum suppression along the quantised gradient direction
//  4. Hysteresis: pixels above High seed edges; pixels above Low join when
//     8-connected to an edge, transitively
//
// Border pixels are never edges.
func Canny(gray *image.Gray, p CannyParams) *EdgeMap {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	src := smooth(gray, p.BlurRadius)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clampInt(y+ky, 0, height-1)
					px := clampInt(x+kx, 0, width-1)
					gx += src[py][px] * sobelX[ky+1][kx+1]
					gy += src[py][px] * sobelY[ky+1][kx+1]
				}
			}
			if p.L2Gradient {
				magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			} else {
				magnitude[y][x] = math.Abs(gx) + math.Abs(gy)
			}
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	suppressed := suppressNonMaxima(magnitude, direction, width, height)

	return hysteresis(suppressed, width, height, p.Low, p.High)
}

// smooth blurs the image and returns intensities as a [y][x] grid on 0-255.
// kernelSize only selects sigma; imaging.Blur sizes its own window to 3 sigma.
func smooth(gray *image.Gray, kernelSize int) [][]float64 {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := make([][]float64, height)
	if kernelSize < 3 {
		for y := 0; y < height; y++ {
			out[y] = make([]float64, width)
			for x := 0; x < width; x++ {
				out[y][x] = float64(gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y)
			}
		}
		return out
	}

	sigma := 0.3*(float64(kernelSize-1)*0.5-1) + 0.8
	blurred := imaging.Blur(gray, sigma)

	// imaging returns an NRGBA anchored at (0,0); R == G == B for gray input.
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		row := blurred.Pix[y*blurred.Stride:]
		for x := 0; x < width; x++ {
			out[y][x] = float64(row[x*4])
		}
	}
	return out
}

// suppressNonMaxima thins edges to one pixel by keeping local maxima along
// the gradient direction. Ties keep the pixel on the lower-index side, which
// stops symmetric step edges from producing double lines.
func suppressNonMaxima(magnitude, direction [][]float64, width, height int) [][]float64 {
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			if mag > n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}
	return suppressed
}

// hysteresis seeds edges at strong pixels and grows them through weak ones.
//
// The growth is the same stack-based 8-connected flood fill used for contour
// tracing, restricted to pixels above the low threshold.
func hysteresis(suppressed [][]float64, width, height int, low, high float64) *EdgeMap {
	edges := NewEdgeMap(width, height)

	type pixel struct{ x, y int }
	var stack []pixel

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] <= high || edges.edges[y][x] {
				continue
			}

			stack = append(stack[:0], pixel{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
					continue
				}
				if edges.edges[p.y][p.x] || suppressed[p.y][p.x] <= low {
					continue
				}
				edges.edges[p.y][p.x] = true

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, pixel{p.x + dx, p.y + dy})
					}
				}
			}
		}
	}

	return edges
}

// clampInt constrains an integer value to the range [lo, hi].
func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
