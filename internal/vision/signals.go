// Package vision extracts normalized image signals (labels, localized objects,
// OCR text and dominant colors) from an external image-understanding provider.
//
// The provider is Google Cloud Vision's images:annotate REST endpoint. Each of
// the four feature types is requested concurrently and the responses are
// folded into a single immutable Signals value that downstream classifiers
// consume without further I/O.
package vision

import "strings"

// MaxDominantColors caps Signals.DominantColors.
const MaxDominantColors = 5

// Term is a single detected label or object with its provider score in [0,1].
type Term struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// ColorSample is one dominant color region reported by the provider.
type ColorSample struct {
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	Score float64 `json:"score"`
}

// Signals is the normalized output of a vision request. It is produced once
// per image and must not be mutated by consumers.
type Signals struct {
	Labels         []Term        `json:"labels"`
	Objects        []Term        `json:"objects"`
	Text           string        `json:"text"`
	DominantColors []string      `json:"dominantColors"` // hex, ordered by dominance
	ColorSamples   []ColorSample `json:"colorSamples"`
}

// Empty reports whether the provider returned no usable signal at all.
func (s *Signals) Empty() bool {
	return s == nil || (len(s.Labels) == 0 && len(s.Objects) == 0 &&
		strings.TrimSpace(s.Text) == "" && len(s.DominantColors) == 0)
}

// LabelsAbove returns the labels whose score is at least min, in provider order.
func (s *Signals) LabelsAbove(min float64) []Term {
	if s == nil {
		return nil
	}
	var out []Term
	for _, l := range s.Labels {
		if l.Score >= min {
			out = append(out, l)
		}
	}
	return out
}
