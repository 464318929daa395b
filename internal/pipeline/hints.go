package pipeline

import (
	"strings"

	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/llm"
	"github.com/raine/product-attributes/internal/vision"
)

const (
	maxHintLabels  = 5
	maxHintObjects = 5
	maxHintColors  = 3
	hintLabelScore = 0.7
)

// buildHints condenses the rule-based findings into the context sent with
// the generative request.
func buildHints(s *vision.Signals, item *classify.MainItem, colorNames []string, material, brand string) llm.Hints {
	h := llm.Hints{Material: material, Brand: brand}
	if item != nil {
		h.MainItem = item.Term
	}
	for _, l := range classify.FilterNoise(s.LabelsAbove(hintLabelScore)) {
		if len(h.Labels) == maxHintLabels {
			break
		}
		if classify.IsFashionTerm(l.Term) {
			h.Labels = append(h.Labels, l.Term)
		}
	}
	seen := map[string]bool{}
	for _, o := range classify.FilterNoise(s.Objects) {
		if len(h.Objects) == maxHintObjects {
			break
		}
		if k := strings.ToLower(o.Term); !seen[k] {
			seen[k] = true
			h.Objects = append(h.Objects, k)
		}
	}
	if len(colorNames) > maxHintColors {
		colorNames = colorNames[:maxHintColors]
	}
	h.Colors = colorNames
	return h
}
