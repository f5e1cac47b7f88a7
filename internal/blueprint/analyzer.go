package blueprint

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/blueprint-tools-mcp/internal/config"
	"github.com/ironsheep/blueprint-tools-mcp/internal/detection"
	"github.com/ironsheep/blueprint-tools-mcp/internal/dimension"
	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
	"github.com/ironsheep/blueprint-tools-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-tools-mcp/internal/ocr"
	"github.com/ironsheep/blueprint-tools-mcp/internal/scale"
)

// Settings holds every tunable of the pipeline.
type Settings struct {
	Detector   detection.Params
	Tolerance  float64
	Dimensions dimension.Options
	Fallback   scale.Factor

	// Region limits analysis to part of the image. The zero Region analyses
	// the whole image; otherwise coordinates in the result are region-local.
	Region imaging.Region
}

// DefaultSettings returns the pipeline defaults.
func DefaultSettings() Settings {
	return Settings{
		Detector:   detection.DefaultParams(),
		Tolerance:  geometry.DefaultTolerance,
		Dimensions: dimension.DefaultOptions(),
		Fallback:   scale.Fallback,
	}
}

// SettingsFromConfig extracts the pipeline settings from a loaded config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Detector:   cfg.Detector,
		Tolerance:  cfg.Clusterer.Tolerance,
		Dimensions: cfg.Dimensions.Options,
		Fallback:   scale.Factor(cfg.Scale.Fallback),
	}
}

// Result is the outcome consumed by wall generation.
type Result struct {
	// Points are the ordered polygon vertices in metres, z = 0.
	// Empty means no geometry was detected.
	Points []geometry.Point3 `json:"points"`

	// Dimensions are the values read from the plan, in order of appearance.
	Dimensions []float64 `json:"dimensions"`

	// Scale is metres per pixel. Always > 0.
	Scale scale.Factor `json:"scale"`
}

// Timings records how long each stage took, in milliseconds.
type Timings struct {
	LoadMS      float64 `json:"load_ms"`
	DetectMS    float64 `json:"detect_ms"`
	RecognizeMS float64 `json:"recognize_ms"`
	GeometryMS  float64 `json:"geometry_ms"`
	TotalMS     float64 `json:"total_ms"`
}

// Report is a Result plus the intermediate artefacts of the analysis.
type Report struct {
	Result

	// Width and Height are the analysed image size after cropping.
	Width  int `json:"width"`
	Height int `json:"height"`

	Segments   []geometry.Segment `json:"segments"`
	EdgePixels int                `json:"edge_pixels"`

	// Vertices are the clustered endpoints before ordering.
	Vertices []geometry.Point `json:"vertices"`

	// Polygon is the ordered outline in pixel coordinates.
	Polygon []geometry.Point `json:"polygon"`

	Recognition dimension.Recognition `json:"-"`
	OCRError    string                `json:"ocr_error,omitempty"`

	Timings Timings `json:"timings"`
}

// Analyzer runs the blueprint pipeline.
type Analyzer struct {
	settings   Settings
	recognizer ocr.Recognizer
	cache      *imaging.ImageCache
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger for the analyzer.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithRecognizer sets the text recognizer used for dimension labels.
// Without one, every analysis falls back to the default scale.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(a *Analyzer) {
		a.recognizer = r
	}
}

// WithImageCache loads images through cache instead of decoding each time.
func WithImageCache(cache *imaging.ImageCache) Option {
	return func(a *Analyzer) {
		a.cache = cache
	}
}

// New creates an Analyzer.
func New(settings Settings, opts ...Option) *Analyzer {
	a := &Analyzer{
		settings: settings,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.settings.Fallback <= 0 {
		a.settings.Fallback = scale.Fallback
	}
	return a
}

// Settings returns the analyzer's settings.
func (a *Analyzer) Settings() Settings {
	return a.settings
}

// WithSettings returns a copy of the analyzer using s. The recognizer,
// cache and logger are shared.
func (a *Analyzer) WithSettings(s Settings) *Analyzer {
	c := *a
	c.settings = s
	if c.settings.Fallback <= 0 {
		c.settings.Fallback = scale.Fallback
	}
	return &c
}

// Analyze loads the image at path and runs the pipeline.
//
// # Errors
//
//   - *imaging.LoadError if the file is missing, unreadable or not a
//     supported image
//   - an error if the configured region does not fit the image
//   - ctx.Err() if the context is done before work starts
//
// An image without detectable geometry is not an error; see Result.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	report, err := a.AnalyzeDetailed(ctx, path)
	if err != nil {
		return nil, err
	}
	return &report.Result, nil
}

// AnalyzeDetailed is Analyze with intermediate artefacts and timings.
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, path string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := a.load(path)
	if err != nil {
		a.logger.Warn("failed to load plan", "path", path, "error", err)
		return nil, err
	}
	loaded := time.Since(start)

	report, err := a.run(ctx, img)
	if err != nil {
		return nil, err
	}
	report.Timings.LoadMS = millis(loaded)
	report.Timings.TotalMS = millis(time.Since(start))

	a.logger.Info("analyzed plan",
		"path", path,
		"points", len(report.Points),
		"dimensions", len(report.Dimensions),
		"scale", float64(report.Scale),
		"total_ms", report.Timings.TotalMS)
	return report, nil
}

// AnalyzeImage runs the pipeline on an already decoded image.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image) (*Result, error) {
	report, err := a.AnalyzeImageDetailed(ctx, img)
	if err != nil {
		return nil, err
	}
	return &report.Result, nil
}

// AnalyzeImageDetailed is AnalyzeImage with intermediate artefacts.
func (a *Analyzer) AnalyzeImageDetailed(ctx context.Context, img image.Image) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	report, err := a.run(ctx, img)
	if err != nil {
		return nil, err
	}
	report.Timings.TotalMS = millis(time.Since(start))
	return report, nil
}

func (a *Analyzer) load(path string) (image.Image, error) {
	if a.cache != nil {
		return a.cache.Load(path)
	}
	return imaging.Load(path)
}

func (a *Analyzer) run(ctx context.Context, img image.Image) (*Report, error) {
	s := a.settings

	img, err := imaging.CropRegion(img, s.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to crop region: %w", err)
	}
	gray := imaging.Grayscale(img)

	report := &Report{
		Width:  gray.Bounds().Dx(),
		Height: gray.Bounds().Dy(),
	}

	t := time.Now()
	segs := detection.DetectSegments(gray, s.Detector)
	report.Segments = segs.Segments
	report.EdgePixels = segs.EdgePixels
	report.Timings.DetectMS = millis(time.Since(t))
	a.logger.Debug("detected segments", "segments", segs.Count, "edge_pixels", segs.EdgePixels)

	t = time.Now()
	rec := dimension.Extract(ctx, a.recognizer, gray, s.Dimensions)
	report.Recognition = rec
	if u, ok := rec.(dimension.Unavailable); ok && u.Reason != nil {
		report.OCRError = u.Reason.Error()
		a.logger.Debug("text recognition unavailable", "reason", u.Reason)
	}
	report.Timings.RecognizeMS = millis(time.Since(t))
	a.logger.Debug("extracted dimensions", "dimensions", len(rec.Samples()))

	t = time.Now()
	report.Vertices = geometry.Cluster(geometry.Endpoints(segs.Segments), s.Tolerance)
	report.Polygon = geometry.OrderPolygon(report.Vertices)
	factor := scale.Estimator{Fallback: s.Fallback}.Estimate(report.Polygon, rec.Samples())
	report.Timings.GeometryMS = millis(time.Since(t))
	a.logger.Debug("built polygon",
		"candidates", len(report.Vertices),
		"vertices", len(report.Polygon),
		"scale", float64(factor))

	report.Result = Result{
		Points:     factor.Apply(report.Polygon),
		Dimensions: rec.Samples(),
		Scale:      factor,
	}
	return report, nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
