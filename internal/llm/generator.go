// Package llm is the optional generative stage of the attribute pipeline. A
// single multimodal call returns a product name and description together,
// which are validated before the orchestrator may use them.
package llm

import (
	"context"
	"errors"

	"github.com/raine/product-attributes/internal/vision"
)

// ErrNotConfigured is returned when no API key is available for the provider.
var ErrNotConfigured = errors.New("generative provider not configured")

// Candidate is the validated output of the generative stage. A nil field was
// missing, malformed or out of bounds.
type Candidate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Empty reports whether no field survived validation.
func (c Candidate) Empty() bool {
	return c.Name == nil && c.Description == nil
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Result contains the candidate and usage information.
type Result struct {
	Candidate Candidate
	Usage     Usage
}

// Hints is the compact context from the rule-based stages sent along with the
// image.
type Hints struct {
	MainItem string
	Labels   []string // high-confidence fashion labels, at most 5
	Objects  []string // at most 5
	Colors   []string // palette names, at most 3
	Material string
	Brand    string
}

// Generator produces a name and description candidate for an image. The image
// must carry inline content or a storage URI.
type Generator interface {
	Generate(ctx context.Context, img vision.Image, hints Hints) (*Result, error)
}
