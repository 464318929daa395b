package vision

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// normalizeResponses folds per-feature responses into a single Signals value.
// Nil responses and empty annotations are treated as "no signal".
func normalizeResponses(responses []*imageResponse) *Signals {
	s := &Signals{}
	var colors []colorInfo

	for _, r := range responses {
		if r == nil {
			continue
		}
		for _, a := range r.LabelAnnotations {
			s.Labels = append(s.Labels, Term{Term: a.Description, Score: a.Score})
		}
		for _, o := range r.LocalizedObjectAnnotations {
			s.Objects = append(s.Objects, Term{Term: o.Name, Score: o.Score})
		}
		if s.Text == "" {
			s.Text = extractText(r)
		}
		if r.ImagePropertiesAnnotation != nil {
			colors = append(colors, r.ImagePropertiesAnnotation.DominantColors.Colors...)
		}
	}

	s.Labels = normalizeTerms(s.Labels)
	s.Objects = normalizeTerms(s.Objects)
	s.ColorSamples, s.DominantColors = normalizeColors(colors)
	return s
}

// normalizeTerms lower-cases and trims terms, clamps scores to [0,1] and drops
// empty and duplicate terms. The first occurrence of a duplicate is kept.
func normalizeTerms(in []Term) []Term {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]Term, 0, len(in))
	for _, t := range in {
		term := strings.ToLower(strings.Join(strings.Fields(t.Term), " "))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, Term{Term: term, Score: clamp01(t.Score)})
	}
	return out
}

// extractText prefers the full-text annotation; the first text annotation
// holds the same content for older responses.
func extractText(r *imageResponse) string {
	if r.FullTextAnnotation != nil && strings.TrimSpace(r.FullTextAnnotation.Text) != "" {
		return strings.TrimSpace(r.FullTextAnnotation.Text)
	}
	if len(r.TextAnnotations) > 0 {
		return strings.TrimSpace(r.TextAnnotations[0].Description)
	}
	return ""
}

// normalizeColors orders color regions by score and returns both the raw
// samples and up to MaxDominantColors distinct hex codes.
func normalizeColors(colors []colorInfo) ([]ColorSample, []string) {
	if len(colors) == 0 {
		return nil, nil
	}
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].Score > colors[j].Score
	})

	samples := make([]ColorSample, 0, len(colors))
	var hexes []string
	seen := make(map[string]bool)
	for _, c := range colors {
		sample := ColorSample{
			R:     channel(c.Color.Red),
			G:     channel(c.Color.Green),
			B:     channel(c.Color.Blue),
			Score: clamp01(c.Score),
		}
		samples = append(samples, sample)

		hex := SampleHex(sample)
		if len(hexes) < MaxDominantColors && !seen[hex] {
			seen[hex] = true
			hexes = append(hexes, hex)
		}
	}
	return samples, hexes
}

// SampleHex formats a color sample as a lower-case #rrggbb string.
func SampleHex(s ColorSample) string {
	c := colorful.Color{R: float64(s.R) / 255, G: float64(s.G) / 255, B: float64(s.B) / 255}
	return c.Hex()
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
