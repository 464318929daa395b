// Package pipeline orchestrates product attribute inference for one photo:
// vision signal extraction, the rule-based classifiers, the optional
// generative stage and the per-field merge into an AnalysisResult.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/raine/product-attributes/internal/catalog"
	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/compose"
	"github.com/raine/product-attributes/internal/llm"
	"github.com/raine/product-attributes/internal/palette"
	"github.com/raine/product-attributes/internal/vision"
)

// GenerativeConfidence is assigned to generated fields that passed
// validation.
const GenerativeConfidence = 0.9

// ErrVisionNotConfigured is returned when the mandatory vision stage has no
// usable credentials. It wraps vision.ErrNotConfigured.
var ErrVisionNotConfigured = fmt.Errorf("product image analysis is not configured: %w", vision.ErrNotConfigured)

// SignalExtractor produces vision signals for an image.
type SignalExtractor interface {
	Extract(ctx context.Context, img vision.Image) (*vision.Signals, error)
}

// Generator produces a generative name and description candidate.
type Generator interface {
	Generate(ctx context.Context, img vision.Image, hints llm.Hints) (*llm.Result, error)
}

// ImageFetcher downloads an image by URL.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (vision.Image, error)
}

// Options configures a Pipeline. A nil Generator disables the generative
// stage. A nil Fetcher uses a default vision.Downloader.
type Options struct {
	Extractor SignalExtractor
	Generator Generator
	Fetcher   ImageFetcher
}

// Pipeline is safe for concurrent use when its dependencies are.
type Pipeline struct {
	extractor SignalExtractor
	generator Generator
	fetcher   ImageFetcher
}

// New creates a pipeline.
func New(opts Options) *Pipeline {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = vision.NewDownloader(0, 0)
	}
	return &Pipeline{
		extractor: opts.Extractor,
		generator: opts.Generator,
		fetcher:   fetcher,
	}
}

// Analyze infers product attributes for img against the store categories.
// Categories are normalized first, so slug-only or mixed-case entries match
// the same way as entries loaded through catalog.Service. Only a vision stage
// failure is returned as an error; a configuration
// failure matches ErrVisionNotConfigured. Every other stage degrades to
// rule-based output.
func (p *Pipeline) Analyze(ctx context.Context, img vision.Image, categories []catalog.Category) (*AnalysisResult, error) {
	logger := log.With().Str("requestID", uuid.NewString()).Logger()
	start := time.Now()

	if p.extractor == nil {
		return nil, ErrVisionNotConfigured
	}
	if !img.Valid() {
		return nil, fmt.Errorf("image has no URL, storage URI or content")
	}

	signals, err := p.extractor.Extract(ctx, img)
	if err != nil {
		if errors.Is(err, vision.ErrNotConfigured) {
			logger.Error().Err(err).Msg("vision stage not configured")
			return nil, fmt.Errorf("%w: %v", ErrVisionNotConfigured, err)
		}
		logger.Error().Err(err).Str("image", img.String()).Msg("vision stage failed")
		return nil, fmt.Errorf("vision stage failed: %w", err)
	}
	if signals == nil {
		signals = &vision.Signals{}
	}
	if signals.Empty() {
		logger.Warn().Str("image", img.String()).Msg("vision returned no signals")
	}

	a := classifySignals(signals, catalog.Normalize(categories))

	candidate := p.generate(ctx, logger, img, a)

	result := merge(a, candidate)

	logger.Info().
		Str("name", result.Name).
		Str("nameSource", a.nameSource).
		Str("descriptionSource", a.descriptionSource).
		Interface("category", result.SuggestedCategory).
		Float64("confidence", result.Confidence.Overall).
		Dur("duration", time.Since(start)).
		Msg("analyzed product image")

	return result, nil
}

// analysis holds the rule-based findings for one request.
type analysis struct {
	signals    *vision.Signals
	colorNames []string
	mainItem   *classify.MainItem
	category   classify.Classification[catalog.Category]
	style      classify.Classification[string]
	material   classify.Classification[string]
	gender     classify.Classification[string]
	brand      classify.Classification[string]

	name        Field[string]
	description Field[string]

	nameSource        string
	descriptionSource string
}

func classifySignals(s *vision.Signals, categories []catalog.Category) *analysis {
	a := &analysis{
		signals:    s,
		colorNames: palette.UniqueNames(s.DominantColors),
	}

	// The classifiers are pure functions over the signals and each writes
	// only its own field.
	var g errgroup.Group
	g.Go(func() error { a.mainItem = classify.IdentifyMainItem(s); return nil })
	g.Go(func() error { a.category = classify.MatchCategory(s, categories); return nil })
	g.Go(func() error { a.style = classify.ClassifyStyle(s); return nil })
	g.Go(func() error { a.material = classify.ClassifyMaterial(s); return nil })
	g.Go(func() error { a.gender = classify.ClassifyGender(s); return nil })
	g.Go(func() error { a.brand = classify.ExtractBrand(s); return nil })
	_ = g.Wait()

	in := compose.Input{
		Signals:  s,
		MainItem: a.mainItem,
		Style:    a.style.Or(""),
		Material: a.material.Or(""),
		Colors:   a.colorNames,
	}
	name, nameConfidence := compose.Name(in)
	description, descriptionConfidence := compose.Description(in)
	a.name = Field[string]{Value: name, Confidence: nameConfidence, Source: SourceRules}
	a.description = Field[string]{Value: description, Confidence: descriptionConfidence, Source: SourceRules}
	return a
}

// generate runs the optional generative stage. Any failure is logged and
// yields an empty candidate.
func (p *Pipeline) generate(ctx context.Context, logger zerolog.Logger, img vision.Image, a *analysis) llm.Candidate {
	if p.generator == nil {
		return llm.Candidate{}
	}

	genImage, err := p.generativeImage(ctx, img)
	if err != nil {
		logger.Warn().Err(err).Str("stage", "generative").Msg("failed to load image for generative stage, using rule-based output")
		return llm.Candidate{}
	}

	hints := buildHints(a.signals, a.mainItem, a.colorNames, a.material.Or(""), a.brand.Or(""))
	res, err := p.generator.Generate(ctx, genImage, hints)
	if err != nil {
		logger.Warn().Err(err).Str("stage", "generative").Msg("generative stage failed, using rule-based output")
		return llm.Candidate{}
	}
	if res == nil {
		return llm.Candidate{}
	}
	if res.Candidate.Empty() {
		logger.Warn().Str("stage", "generative").Msg("generative output rejected, using rule-based output")
	}
	return res.Candidate
}

// generativeImage returns img with inline content, downloading it when only
// a URL is known.
func (p *Pipeline) generativeImage(ctx context.Context, img vision.Image) (vision.Image, error) {
	if len(img.Content) > 0 || img.StorageURI != "" {
		return img, nil
	}
	return p.fetcher.Fetch(ctx, img.URL)
}

// merge applies the field precedence: generated name and description over
// rule-based ones, name-derived brand and color over OCR and vision ones.
func merge(a *analysis, c llm.Candidate) *AnalysisResult {
	name := FirstOrDefault(a.name, fromPtr(c.Name, GenerativeConfidence, SourceGenerative))
	description := FirstOrDefault(a.description, fromPtr(c.Description, GenerativeConfidence, SourceGenerative))
	a.nameSource, a.descriptionSource = name.Source, description.Source

	// Name-derived values only count when the name was synthesized.
	var nameBrand, nameColor Stage[string]
	if c.Name != nil {
		nameBrand = fromLookup(func() (string, bool) { return classify.BrandFromName(*c.Name) }, GenerativeConfidence, SourceName)
		nameColor = fromLookup(func() (string, bool) { return classify.ColorFromName(*c.Name) }, GenerativeConfidence, SourceName)
	} else {
		nameBrand, nameColor = none[string], none[string]
	}

	brand, brandOK := FirstOf(nameBrand, fromClassification(a.brand, SourceOCR))
	color, colorOK := FirstOf(nameColor, fromLookup(func() (string, bool) {
		if len(a.colorNames) == 0 {
			return "", false
		}
		return a.colorNames[0], true
	}, 1, SourceVision))

	result := &AnalysisResult{
		Name:         name.Value,
		Description:  description.Value,
		Alternatives: []CategoryRef{},
		Features: compose.Features(compose.Input{
			Signals:  a.signals,
			MainItem: a.mainItem,
		}),
		Colors:   append([]string{}, a.signals.DominantColors...),
		Style:    a.style.Value,
		Material: a.material.Value,
		Brand:    optional(brand, brandOK),
		Color:    optional(color, colorOK),
		Gender:   a.gender.Value,
	}

	categoryConfidence := 0.0
	if a.category.Found() {
		categoryConfidence = a.category.Confidence
		result.SuggestedCategory = &SuggestedCategory{
			ID:         a.category.Value.ID,
			Name:       a.category.Value.Name,
			Confidence: a.category.Confidence,
		}
	}
	for _, alt := range a.category.Alternatives {
		result.Alternatives = append(result.Alternatives, CategoryRef{ID: alt.ID, Name: alt.Name})
	}

	result.Confidence = NewConfidence(name.Confidence, categoryConfidence, description.Confidence)
	return result
}

func none[T any]() (Field[T], bool) {
	return Field[T]{}, false
}
