package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/raine/product-attributes/internal/vision"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator uses Google's Gemini API to generate the product name and
// description in one structured call.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini-based generator. An empty apiKey
// returns ErrNotConfigured.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

// candidateSchema constrains the response to {"name", "description"}.
var candidateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": {
			Type:        genai.TypeString,
			Description: "Product name, at most 150 characters.",
		},
		"description": {
			Type:        genai.TypeString,
			Description: "Product description, 2-3 sentences.",
		},
	},
	Required:         []string{"name", "description"},
	PropertyOrdering: []string{"name", "description"},
}

// Generate implements Generator. A malformed payload is not an error; it
// yields a candidate with nil fields.
func (g *GeminiGenerator) Generate(ctx context.Context, img vision.Image, hints Hints) (*Result, error) {
	imagePart, err := imagePart(img)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(buildPrompt(hints)),
		imagePart,
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   candidateSchema,
	}

	start := time.Now()
	result, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	candidate := ParseCandidate(result.Text())

	// Calculate usage and cost
	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("model", g.model).
		Dur("latency", time.Since(start)).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Bool("hasName", candidate.Name != nil).
		Bool("hasDescription", candidate.Description != nil).
		Msg("generative llm call")

	return &Result{Candidate: candidate, Usage: usage}, nil
}

func imagePart(img vision.Image) (*genai.Part, error) {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	switch {
	case len(img.Content) > 0:
		return &genai.Part{InlineData: &genai.Blob{Data: img.Content, MIMEType: mimeType}}, nil
	case img.StorageURI != "":
		return &genai.Part{FileData: &genai.FileData{FileURI: img.StorageURI, MIMEType: mimeType}}, nil
	default:
		return nil, fmt.Errorf("image %s has no inline content or storage URI", img)
	}
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}
