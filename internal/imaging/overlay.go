package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

// AnnotateOptions selects what is drawn over a plan image.
//
// All coordinates are source pixel coordinates. Empty slices are skipped.
type AnnotateOptions struct {
	// Segments are drawn one hue each so neighbouring segments can be told apart.
	Segments []geometry.Segment

	// Vertices are drawn as filled squares.
	Vertices []geometry.Point

	// Polygon is drawn as a closed outline in PolygonColor.
	Polygon []geometry.Point

	// ShowIndices labels each polygon vertex with its position in the outline.
	ShowIndices bool

	// PolygonColor is a hex color like "#00C853". Invalid or empty values
	// fall back to green.
	PolygonColor string

	// MaxSide downsizes the rendered overlay so neither side exceeds it.
	// Zero keeps the original size.
	MaxSide int
}

// AnnotateResult contains the annotated image encoded as base64 PNG.
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Segments    int    `json:"segments"`
	Vertices    int    `json:"vertices"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

const (
	defaultPolygonColor = "#00C853"
	vertexHalfSize      = 3
	// golden angle in degrees; consecutive hues stay far apart
	hueStep = 137.508
)

// Annotate draws detection results over a copy of img.
//
// The source image is never modified. Drawing happens at full resolution
// before the optional downscale, so thin lines stay visible.
//
// # Drawing Order
//
//  1. Segments, each in its own hue
//  2. Polygon outline, closed back to the first vertex
//  3. Vertices as filled squares
//  4. Vertex indices, if requested
//
// Returns an error only if PNG encoding fails.
func Annotate(img image.Image, opts AnnotateOptions) (*AnnotateResult, error) {
	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Src)
	off := geometry.Point{X: float64(bounds.Min.X), Y: float64(bounds.Min.Y)}

	for i, s := range opts.Segments {
		c := colorful.Hsv(float64(i)*hueStep, 0.85, 0.95).Clamped()
		drawLine(canvas, sub(s.A, off), sub(s.B, off), toRGBA(c))
	}

	polyColor := parsePolygonColor(opts.PolygonColor)
	n := len(opts.Polygon)
	for i := 0; i < n && n > 1; i++ {
		drawLine(canvas, sub(opts.Polygon[i], off), sub(opts.Polygon[(i+1)%n], off), polyColor)
	}

	vertexColor := color.RGBA{R: 220, G: 20, B: 60, A: 255}
	for _, v := range opts.Vertices {
		drawSquare(canvas, sub(v, off), vertexHalfSize, vertexColor)
	}

	if opts.ShowIndices {
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 180}
		for i, v := range opts.Polygon {
			p := sub(v, off)
			drawLabel(canvas, int(p.X)+vertexHalfSize+2, int(p.Y)-vertexHalfSize-2, strconv.Itoa(i), fg, bg)
		}
	}

	var out image.Image = canvas
	if opts.MaxSide > 0 && (canvas.Bounds().Dx() > opts.MaxSide || canvas.Bounds().Dy() > opts.MaxSide) {
		out = imaging.Fit(canvas, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}

	return &AnnotateResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Segments:    len(opts.Segments),
		Vertices:    len(opts.Vertices),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func parsePolygonColor(hex string) color.RGBA {
	if hex == "" {
		hex = defaultPolygonColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(defaultPolygonColor)
	}
	return toRGBA(c)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func sub(p, off geometry.Point) geometry.Point {
	return geometry.Point{X: p.X - off.X, Y: p.Y - off.Y}
}

// drawLine rasterizes a segment with Bresenham's algorithm, clipped to img.
func drawLine(img *image.RGBA, a, b geometry.Point, c color.RGBA) {
	x0, y0 := int(a.X+0.5), int(a.Y+0.5)
	x1, y1 := int(b.X+0.5), int(b.Y+0.5)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		setClipped(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func drawSquare(img *image.RGBA, center geometry.Point, half int, c color.RGBA) {
	cx, cy := int(center.X+0.5), int(center.Y+0.5)
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			setClipped(img, x, y, c)
		}
	}
}

// drawLabel draws text with basicfont on a translucent background box.
// (x, y) is the top-left corner of the box.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()

	box := image.Rect(x-1, y-1, x+width+1, y+height).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
