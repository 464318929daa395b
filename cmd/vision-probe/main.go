package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/config"
	"github.com/raine/product-attributes/internal/palette"
	"github.com/raine/product-attributes/internal/vision"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path-or-url>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GOOGLE_VISION_API_KEY - Required\n")
		os.Exit(1)
	}

	config.LoadEnvFile()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	img, err := vision.ImageFromArg(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	client, err := vision.NewClient(vision.ClientOpts{
		APIKey:     cfg.Vision.APIKey,
		BaseURL:    cfg.Vision.BaseURL,
		MaxResults: cfg.Vision.MaxResults,
		Downloader: vision.NewDownloader(cfg.Download.Timeout, cfg.Download.MaxSize),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating vision client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	signals, err := client.Extract(ctx, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing image: %v\n", err)
		os.Exit(1)
	}

	printSignals(signals)
}

func printSignals(s *vision.Signals) {
	fmt.Println("=== LABELS ===")
	printTerms(s.Labels)
	fmt.Println("\n=== OBJECTS ===")
	printTerms(s.Objects)

	fmt.Println("\n=== TEXT ===")
	if strings.TrimSpace(s.Text) == "" {
		fmt.Println("(none)")
	} else {
		fmt.Println(s.Text)
	}

	fmt.Println("\n=== COLORS ===")
	for _, sample := range s.ColorSamples {
		hex := vision.SampleHex(sample)
		fmt.Printf("%-8s %-14s %.3f\n", hex, palette.HexToColorName(hex), sample.Score)
	}
	fmt.Printf("dominant: %s\n", strings.Join(palette.UniqueNames(s.DominantColors), ", "))

	fmt.Println("\n=== MAIN ITEM ===")
	if item := classify.IdentifyMainItem(s); item != nil {
		fmt.Printf("%s (%s, %.3f)\n", item.Term, item.Group, item.Score)
	} else {
		fmt.Println("(none)")
	}
}

func printTerms(terms []vision.Term) {
	if len(terms) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, t := range terms {
		noise := ""
		if classify.IsNoise(t.Term) {
			noise = "  [noise]"
		}
		fmt.Printf("%-30s %.3f%s\n", t.Term, t.Score, noise)
	}
}
