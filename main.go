package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raine/product-attributes/internal/catalog"
	"github.com/raine/product-attributes/internal/config"
	"github.com/raine/product-attributes/internal/pipeline"
	"github.com/raine/product-attributes/internal/vision"
)

// Exit codes.
const (
	exitOK            = 0
	exitFailure       = 1
	exitNotConfigured = 2
)

const usageText = `
	Usage: %s [flags] <image> [categories.json]

	Infers a product name, description, category and attributes from a
	single product photo and prints the result as JSON.

	<image> is an http(s) URL, a gs:// URI or a local file path.
	[categories.json] is an array of {"id", "name", "slug", "keywords"}
	objects; a built-in fashion category list is used when omitted.

	Flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	configPath := flag.String("config", "", "Path to a YAML config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall analysis timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), strings.TrimSpace(dedent.Dedent(usageText))+"\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		return exitFailure
	}

	config.LoadEnvFile()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return exitFailure
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up logging")
		return exitFailure
	}
	defer closeLog()

	img, err := vision.ImageFromArg(flag.Arg(0))
	if err != nil {
		log.Error().Err(err).Str("image", flag.Arg(0)).Msg("failed to load image")
		return exitFailure
	}

	categories, err := catalog.LoadService(flag.Arg(1))
	if err != nil {
		log.Error().Err(err).Msg("failed to load categories")
		return exitFailure
	}
	log.Debug().Int("count", len(categories.Categories())).Msg("categories loaded")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	handleGracefulExit(cancel)

	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize pipeline")
		return exitFailure
	}
	defer cleanup()

	result, err := p.Analyze(ctx, img, categories.Categories())
	if err != nil {
		if errors.Is(err, pipeline.ErrVisionNotConfigured) {
			log.Error().Err(err).Msg("set GOOGLE_VISION_API_KEY or vision.api_key to enable image analysis")
			return exitNotConfigured
		}
		log.Error().Err(err).Msg("analysis failed")
		return exitFailure
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("failed to write result")
		return exitFailure
	}
	return exitOK
}

// setupLogging applies the configured level and, when a log file is set,
// writes to both stderr and the file.
func setupLogging(cfg config.LogConfig) (func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.File == "" {
		return func() {}, nil
	}

	logFile, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
	log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	log.Debug().Str("logFile", cfg.File).Msg("logging to file")

	return func() { logFile.Close() }, nil
}
