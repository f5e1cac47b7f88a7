package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
)

// Params configures the edge/line detector. Every field is exposed through
// the YAML config and per-call tool overrides.
type Params struct {
	// BlurRadius is the nominal Gaussian kernel size (odd, default 5) from which
	// sigma is derived. The blur samples out to 3 sigma, so the support is wider:
	// 5 gives sigma 1.1 and a 9×9 window.
	BlurRadius int `yaml:"blur_radius" json:"blur_radius"`

	// CannyLow and CannyHigh are hysteresis thresholds on the 0-255 scale.
	CannyLow  float64 `yaml:"canny_low" json:"canny_low"`
	CannyHigh float64 `yaml:"canny_high" json:"canny_high"`

	// L2Gradient switches gradient magnitude from |gx|+|gy| to the Euclidean norm.
	L2Gradient bool `yaml:"l2_gradient" json:"l2_gradient"`

	// HoughThreshold is the accumulator vote count needed to trace a line.
	HoughThreshold int `yaml:"hough_threshold" json:"hough_threshold"`

	// MinLength is the minimum segment extent in pixels.
	MinLength int `yaml:"min_length" json:"min_length"`

	// MaxGap is the largest gap in pixels bridged inside a segment.
	MaxGap int `yaml:"max_gap" json:"max_gap"`

	// AngleResolution is the Hough θ step in degrees.
	AngleResolution float64 `yaml:"angle_resolution_deg" json:"angle_resolution_deg"`

	// Seed fixes the probabilistic Hough visiting order.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// DefaultParams returns the detector defaults tuned for scanned plans.
func DefaultParams() Params {
	return Params{
		BlurRadius:      5,
		CannyLow:        50,
		CannyHigh:       150,
		HoughThreshold:  100,
		MinLength:       50,
		MaxGap:          10,
		AngleResolution: 1,
		Seed:            1,
	}
}

// Validate checks that the parameters describe a usable detector.
func (p Params) Validate() error {
	if p.BlurRadius < 0 {
		return fmt.Errorf("blur_radius must be >= 0, got %d", p.BlurRadius)
	}
	if p.BlurRadius > 1 && p.BlurRadius%2 == 0 {
		return fmt.Errorf("blur_radius must be odd, got %d", p.BlurRadius)
	}
	if p.CannyLow < 0 || p.CannyHigh < 0 {
		return fmt.Errorf("canny thresholds must be >= 0")
	}
	if p.CannyLow > p.CannyHigh {
		return fmt.Errorf("canny_low (%v) must not exceed canny_high (%v)", p.CannyLow, p.CannyHigh)
	}
	if p.HoughThreshold < 1 {
		return fmt.Errorf("hough_threshold must be >= 1, got %d", p.HoughThreshold)
	}
	if p.MinLength < 0 {
		return fmt.Errorf("min_length must be >= 0, got %d", p.MinLength)
	}
	if p.MaxGap < 0 {
		return fmt.Errorf("max_gap must be >= 0, got %d", p.MaxGap)
	}
	if p.AngleResolution <= 0 || p.AngleResolution > 90 {
		return fmt.Errorf("angle_resolution_deg must be in (0, 90], got %v", p.AngleResolution)
	}
	return nil
}

// Canny returns the Canny subset of the parameters.
func (p Params) Canny() CannyParams {
	return CannyParams{
		BlurRadius: p.BlurRadius,
		Low:        p.CannyLow,
		High:       p.CannyHigh,
		L2Gradient: p.L2Gradient,
	}
}

// Hough returns the Hough subset of the parameters.
func (p Params) Hough() HoughParams {
	return HoughParams{
		Threshold: p.HoughThreshold,
		MinLength: p.MinLength,
		MaxGap:    p.MaxGap,
		AngleStep: p.AngleResolution,
		Seed:      p.Seed,
	}
}

// SegmentsResult contains the segments found in an image.
type SegmentsResult struct {
	// Segments are in pixel coordinates of the source image.
	Segments []geometry.Segment `json:"segments"`

	// Count is len(Segments).
	Count int `json:"count"`

	// EdgePixels is the number of pixels in the Canny edge map.
	EdgePixels int `json:"edge_pixels"`
}

// DetectSegments finds straight wall candidates in a grayscale plan.
//
// It runs Canny followed by the probabilistic Hough transform. Detection
// never fails: an image without strong elongated edges yields zero segments.
// Returned coordinates include the image's Bounds().Min offset.
func DetectSegments(gray *image.Gray, p Params) *SegmentsResult {
	edges := Canny(gray, p.Canny())
	segments := HoughSegments(edges, p.Hough())

	origin := gray.Bounds().Min
	if origin != (image.Point{}) {
		off := geometry.Point{X: float64(origin.X), Y: float64(origin.Y)}
		for i := range segments {
			segments[i].A.X += off.X
			segments[i].A.Y += off.Y
			segments[i].B.X += off.X
			segments[i].B.Y += off.Y
		}
	}

	return &SegmentsResult{
		Segments:   segments,
		Count:      len(segments),
		EdgePixels: edges.Count(),
	}
}
