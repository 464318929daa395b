package pipeline

// SuggestedCategory is the matched store category.
type SuggestedCategory struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// CategoryRef identifies an alternative category.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Confidence holds per-field confidences and their mean.
type Confidence struct {
	Overall     float64 `json:"overall"`
	Name        float64 `json:"name"`
	Category    float64 `json:"category"`
	Description float64 `json:"description"`
}

// NewConfidence returns the field confidences with Overall set to their
// arithmetic mean.
func NewConfidence(name, category, description float64) Confidence {
	return Confidence{
		Overall:     (name + category + description) / 3,
		Name:        name,
		Category:    category,
		Description: description,
	}
}

// AnalysisResult is the structured metadata inferred for one product photo.
// Slices are never nil so they encode as empty JSON arrays.
type AnalysisResult struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	SuggestedCategory *SuggestedCategory `json:"suggestedCategory"`
	Alternatives      []CategoryRef      `json:"alternatives"`
	Features          []string           `json:"features"`
	Colors            []string           `json:"colors"`
	Style             *string            `json:"style"`
	Material          *string            `json:"material"`
	Brand             *string            `json:"brand"`
	Color             *string            `json:"color"`
	Gender            *string            `json:"gender"`
	Confidence        Confidence         `json:"confidence"`
}
