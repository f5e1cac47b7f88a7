package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

// newPlanImage creates a uniform grayscale canvas.
func newPlanImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// drawRect fills the rectangle [x1,x2)×[y1,y2) with v.
func drawRect(img *image.Gray, x1, y1, x2, y2 int, v uint8) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// createRoomImage draws a black room outline with walls of the given thickness.
func createRoomImage(width, height, x1, y1, x2, y2, thickness int) *image.Gray {
	img := newPlanImage(width, height, 255)
	drawRect(img, x1, y1, x2, y1+thickness, 0)
	drawRect(img, x1, y2-thickness, x2, y2, 0)
	drawRect(img, x1, y1, x1+thickness, y2, 0)
	drawRect(img, x2-thickness, y1, x2, y2, 0)
	return img
}

func edgeRow(width, height, y int, xs ...[2]int) *EdgeMap {
	m := NewEdgeMap(width, height)
	for _, r := range xs {
		for x := r[0]; x < r[1]; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.BlurRadius != 5 || p.CannyLow != 50 || p.CannyHigh != 150 {
		t.Errorf("unexpected canny defaults: %+v", p)
	}
	if p.HoughThreshold != 100 || p.MinLength != 50 || p.MaxGap != 10 || p.AngleResolution != 1 {
		t.Errorf("unexpected hough defaults: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"even blur", func(p *Params) { p.BlurRadius = 4 }},
		{"negative blur", func(p *Params) { p.BlurRadius = -1 }},
		{"low above high", func(p *Params) { p.CannyLow = 200 }},
		{"zero threshold", func(p *Params) { p.HoughThreshold = 0 }},
		{"negative gap", func(p *Params) { p.MaxGap = -1 }},
		{"zero angle", func(p *Params) { p.AngleResolution = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("expected validation error for %+v", p)
			}
		})
	}
}

func TestCanny_UniformImage(t *testing.T) {
	img := newPlanImage(60, 60, 128)
	edges := Canny(img, DefaultParams().Canny())
	if n := edges.Count(); n != 0 {
		t.Errorf("uniform image produced %d edge pixels, want 0", n)
	}
}

func TestCanny_StepEdgeIsThin(t *testing.T) {
	img := newPlanImage(60, 60, 255)
	drawRect(img, 0, 0, 30, 60, 0)

	edges := Canny(img, DefaultParams().Canny())
	if edges.Count() == 0 {
		t.Fatal("expected edges along the step")
	}

	for y := 0; y < edges.Height; y++ {
		n := 0
		for x := 0; x < edges.Width; x++ {
			if !edges.At(x, y) {
				continue
			}
			n++
			if x < 27 || x > 32 {
				t.Errorf("edge pixel at (%d,%d) is far from the step at x=30", x, y)
			}
		}
		if n > 2 {
			t.Errorf("row %d has %d edge pixels, want a thin edge", y, n)
		}
	}
}

func TestCanny_BordersNeverEdges(t *testing.T) {
	img := newPlanImage(40, 40, 0)
	drawRect(img, 0, 0, 40, 1, 255)

	edges := Canny(img, CannyParams{Low: 10, High: 20})
	for x := 0; x < 40; x++ {
		if edges.At(x, 0) || edges.At(x, 39) {
			t.Errorf("border pixel in column %d marked as edge", x)
		}
	}
}

func TestEdgeMap_AtOutOfRange(t *testing.T) {
	m := NewEdgeMap(5, 5)
	m.Set(-1, 2, true)
	m.Set(7, 2, true)
	if m.At(-1, 2) || m.At(7, 2) || m.Count() != 0 {
		t.Error("out-of-range access should be ignored")
	}
}

func TestHoughSegments_Empty(t *testing.T) {
	got := HoughSegments(NewEdgeMap(50, 50), DefaultParams().Hough())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestHoughSegments_SingleRow(t *testing.T) {
	m := edgeRow(300, 100, 50, [2]int{50, 250})
	before := m.Count()

	got := HoughSegments(m, DefaultParams().Hough())
	if len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d: %v", len(got), got)
	}

	s := got[0]
	minX := math.Min(s.A.X, s.B.X)
	maxX := math.Max(s.A.X, s.B.X)
	if minX != 50 || maxX != 249 || s.A.Y != 50 || s.B.Y != 50 {
		t.Errorf("segment %v, want (50,50)-(249,50)", s)
	}

	if m.Count() != before {
		t.Error("HoughSegments modified its input")
	}
}

func TestHoughSegments_BridgesSmallGaps(t *testing.T) {
	m := edgeRow(300, 100, 40, [2]int{20, 140}, [2]int{148, 268})

	got := HoughSegments(m, DefaultParams().Hough())
	if len(got) != 1 {
		t.Fatalf("expected gap of 8 to be bridged into 1 segment, got %d: %v", len(got), got)
	}
	if l := got[0].Length(); l < 240 {
		t.Errorf("bridged segment length %v, want ≈247", l)
	}
}

func TestHoughSegments_SplitsLargeGaps(t *testing.T) {
	m := edgeRow(300, 100, 40, [2]int{20, 140}, [2]int{155, 275})

	got := HoughSegments(m, DefaultParams().Hough())
	if len(got) != 2 {
		t.Fatalf("expected gap of 15 to split into 2 segments, got %d: %v", len(got), got)
	}
}

func TestHoughSegments_MinLength(t *testing.T) {
	m := edgeRow(200, 50, 20, [2]int{10, 90})
	p := DefaultParams().Hough()
	p.Threshold = 50
	p.MinLength = 100

	if got := HoughSegments(m, p); len(got) != 0 {
		t.Errorf("80px run should be rejected with MinLength=100, got %v", got)
	}
}

func TestHoughSegments_Deterministic(t *testing.T) {
	img := createRoomImage(300, 300, 50, 50, 250, 250, 3)
	edges := Canny(img, DefaultParams().Canny())

	first := HoughSegments(edges, DefaultParams().Hough())
	second := HoughSegments(edges, DefaultParams().Hough())
	if len(first) != len(second) {
		t.Fatalf("segment count differs between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDetectSegments_UniformImage(t *testing.T) {
	result := DetectSegments(newPlanImage(120, 120, 255), DefaultParams())
	if result.Count != 0 || len(result.Segments) != 0 {
		t.Errorf("expected no segments, got %d", result.Count)
	}
	if result.EdgePixels != 0 {
		t.Errorf("expected no edge pixels, got %d", result.EdgePixels)
	}
}

func TestDetectSegments_Room(t *testing.T) {
	img := createRoomImage(300, 300, 50, 50, 250, 250, 3)
	result := DetectSegments(img, DefaultParams())

	if result.Count < 4 {
		t.Fatalf("expected at least 4 segments, got %d: %v", result.Count, result.Segments)
	}
	if result.Count != len(result.Segments) {
		t.Errorf("Count %d != len(Segments) %d", result.Count, len(result.Segments))
	}

	near := func(v, target float64) bool { return math.Abs(v-target) <= 8 }
	sides := []struct {
		name       string
		horizontal bool
		at         float64
	}{
		{"top", true, 51},
		{"bottom", true, 248},
		{"left", false, 51},
		{"right", false, 248},
	}
	for _, side := range sides {
		found := false
		for _, s := range result.Segments {
			if side.horizontal && near(s.A.Y, side.at) && near(s.B.Y, side.at) && math.Abs(s.A.X-s.B.X) >= 150 {
				found = true
			}
			if !side.horizontal && near(s.A.X, side.at) && near(s.B.X, side.at) && math.Abs(s.A.Y-s.B.Y) >= 150 {
				found = true
			}
		}
		if !found {
			t.Errorf("no segment found along the %s wall: %v", side.name, result.Segments)
		}
	}
}

func TestDetectSegments_SubImageOffset(t *testing.T) {
	full := newPlanImage(300, 200, 255)
	drawRect(full, 20, 100, 280, 104, 0)
	sub := full.SubImage(image.Rect(10, 10, 290, 190)).(*image.Gray)

	result := DetectSegments(sub, DefaultParams())
	if result.Count == 0 {
		t.Fatal("expected the horizontal bar to be detected")
	}
	for _, s := range result.Segments {
		for _, p := range []geometry.Point{s.A, s.B} {
			if p.Y < 95 || p.Y > 108 {
				t.Errorf("endpoint %v not in source coordinates near y≈100", p)
			}
		}
	}
}

func TestHysteresis(t *testing.T) {
	const (
		size = 8
		low  = 50.0
		high = 150.0
	)

	type cell struct {
		x, y int
		v    float64
	}
	tests := []struct {
		name  string
		cells []cell
		want  []image.Point
	}{
		{
			name:  "strong pixel is an edge",
			cells: []cell{{3, 3, 200}},
			want:  []image.Point{{3, 3}},
		},
		{
			name:  "just above high is strong",
			cells: []cell{{3, 3, 151}},
			want:  []image.Point{{3, 3}},
		},
		{
			name:  "equal to high is only weak",
			cells: []cell{{3, 3, 150}},
			want:  nil,
		},
		{
			name:  "isolated weak pixel is dropped",
			cells: []cell{{3, 3, 100}},
			want:  nil,
		},
		{
			name:  "diagonal weak neighbour joins",
			cells: []cell{{3, 3, 200}, {4, 4, 80}},
			want:  []image.Point{{3, 3}, {4, 4}},
		},
		{
			name:  "weak chain joins transitively",
			cells: []cell{{1, 3, 200}, {2, 3, 80}, {3, 3, 60}, {4, 4, 51}, {5, 5, 90}},
			want:  []image.Point{{1, 3}, {2, 3}, {3, 3}, {4, 4}, {5, 5}},
		},
		{
			name:  "equal to low breaks the chain",
			cells: []cell{{2, 3, 200}, {3, 3, 50}, {4, 3, 100}},
			want:  []image.Point{{2, 3}},
		},
		{
			name:  "weak pixel two steps away stays out",
			cells: []cell{{2, 2, 200}, {4, 2, 100}},
			want:  []image.Point{{2, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppressed := make([][]float64, size)
			for y := range suppressed {
				suppressed[y] = make([]float64, size)
			}
			for _, c := range tt.cells {
				suppressed[c.y][c.x] = c.v
			}

			edges := hysteresis(suppressed, size, size, low, high)

			want := make(map[image.Point]bool, len(tt.want))
			for _, p := range tt.want {
				want[p] = true
			}
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					if got := edges.At(x, y); got != want[image.Pt(x, y)] {
						t.Errorf("edge at (%d,%d) = %v, want %v", x, y, got, !got)
					}
				}
			}
			if edges.Count() != len(tt.want) {
				t.Errorf("edge count %d, want %d", edges.Count(), len(tt.want))
			}
		})
	}
}
