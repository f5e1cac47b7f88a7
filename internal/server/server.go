package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/blueprint-tools-mcp/internal/blueprint"
	"github.com/ironsheep/blueprint-tools-mcp/internal/config"
	"github.com/ironsheep/blueprint-tools-mcp/internal/imaging"
	"github.com/ironsheep/blueprint-tools-mcp/internal/ocr"
)

// Server exposes the blueprint pipeline as MCP tools.
type Server struct {
	cfg        *config.Config
	cache      *imaging.ImageCache
	analyzer   *blueprint.Analyzer
	recognizer ocr.Recognizer
	logger     *slog.Logger
	mcp        *mcp.Server

	recognizerSet bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for the server and its analyzer.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRecognizer replaces the Tesseract recognizer built from the config.
// A nil recognizer disables dimension extraction.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *Server) {
		s.recognizer = r
		s.recognizerSet = true
	}
}

// New creates a server from cfg. A nil cfg uses config.Default().
//
// When OCR is enabled but Tesseract cannot be initialized (or the binary was
// built without the ocr tag) the server still starts; analyses then report
// no dimensions and use the fallback scale.
func New(cfg *config.Config, version string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:    cfg,
		cache:  imaging.NewImageCache(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.recognizerSet && cfg.Dimensions.Enabled {
		t, err := ocr.NewTesseract(cfg.OCROptions())
		if err != nil {
			s.logger.Warn("text recognition disabled", "error", err)
		} else {
			s.recognizer = t
		}
	}

	s.analyzer = blueprint.New(blueprint.SettingsFromConfig(cfg),
		blueprint.WithLogger(s.logger),
		blueprint.WithRecognizer(s.recognizer),
		blueprint.WithImageCache(s.cache),
	)

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: version,
	}, nil)
	s.registerTools()

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves MCP requests on t until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("blueprint MCP server starting",
		"tools", len(toolDefinitions()),
		"ocr", s.recognizer != nil)
	if err := s.mcp.Run(ctx, t); err != nil {
		return fmt.Errorf("failed to serve MCP: %w", err)
	}
	return nil
}
