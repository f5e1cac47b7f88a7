package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/blueprint-tools-mcp/internal/config"
	"github.com/ironsheep/blueprint-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := ""
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--version" || arg == "-v" || arg == "version":
			fmt.Printf("blueprint-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case arg == "--help" || arg == "-h" || arg == "help":
			printHelp()
			return
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q (see --help)\n", arg)
			os.Exit(2)
		}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout is for MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	logger.Debug("blueprint MCP server",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"config", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, Version, server.WithLogger(logger))
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("blueprint-mcp - MCP server for floor plan analysis")
	fmt.Println()
	fmt.Println("Usage: blueprint-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  Load settings from a YAML file")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug          Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Printf("  %s=eng         Tesseract language\n", config.EnvOCRLanguage)
	fmt.Printf("  %s=30s          Text recognition timeout\n", config.EnvOCRTimeout)
	fmt.Println()
	fmt.Println("Dimension labels are read only in builds made with -tags ocr.")
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
}
