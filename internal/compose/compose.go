// Package compose builds the deterministic product name, description and
// feature list from classified vision signals. It is the fallback whenever
// the generative stage is unavailable or its output was rejected.
package compose

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/vision"
)

// Rule-based confidences.
const (
	NameFromItemConfidence        = 0.75
	NameFromLabelConfidence       = 0.6
	PlaceholderNameConfidence     = 0.4
	DescriptionWithItemConfidence = 0.7
	DescriptionGenericConfidence  = 0.6
	HighConfidenceLabel           = 0.7
	PlaceholderName               = "Product"
	MaxFeatures                   = 6
	maxDescriptionColors          = 3
	maxDescriptionObjects         = 3
	maxShowcasedLabels            = 3
	maxQuotedText                 = 60
	closingSentence               = "A versatile piece that is easy to style and built to last."
	genericMaterialClause         = "quality materials"
	genericItemPhrase             = "product"
)

// Input is everything the generators read. Colors are palette names in
// dominance order.
type Input struct {
	Signals  *vision.Signals
	MainItem *classify.MainItem
	Style    string
	Material string
	Colors   []string
}

var titleCaser = cases.Title(language.English)

// Title title-cases s the way product names are written.
func Title(s string) string {
	return titleCaser.String(s)
}

// Name returns "[Color] [Material] [Item]" title-cased, omitting absent
// parts. The item is the main item, else the first high-confidence label
// that is not noise, else the generic placeholder.
func Name(in Input) (string, float64) {
	item, confidence := nameItem(in)

	var parts []string
	if len(in.Colors) > 0 {
		parts = append(parts, in.Colors[0])
	}
	if in.Material != "" && !mentions(item, in.Material) && !strings.EqualFold(in.Material, firstOrEmpty(in.Colors)) {
		parts = append(parts, in.Material)
	}
	if item == "" {
		item = PlaceholderName
	}
	parts = append(parts, item)
	return Title(strings.Join(parts, " ")), confidence
}

func nameItem(in Input) (string, float64) {
	if in.MainItem != nil {
		return in.MainItem.Term, NameFromItemConfidence
	}
	if l, ok := firstSignificantLabel(in.Signals); ok {
		return l, NameFromLabelConfidence
	}
	return "", PlaceholderNameConfidence
}

func firstSignificantLabel(s *vision.Signals) (string, bool) {
	labels := classify.FilterNoise(s.LabelsAbove(HighConfidenceLabel))
	if len(labels) == 0 {
		return "", false
	}
	return key(labels[0].Term), true
}

// key is the comparison form of a detected term.
func key(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

// Description assembles a short marketing description: item and style,
// material, colors, detected objects, showcased labels, quoted OCR text and a
// closing sentence.
func Description(in Input) (string, float64) {
	confidence := DescriptionGenericConfidence
	item := genericItemPhrase
	if in.MainItem != nil {
		item = in.MainItem.Term
		confidence = DescriptionWithItemConfidence
	} else if l, ok := firstSignificantLabel(in.Signals); ok {
		item = l
	}

	material := genericMaterialClause
	if in.Material != "" {
		material = strings.ToLower(in.Material)
	}

	var sentences []string
	if in.Style != "" {
		sentences = append(sentences, fmt.Sprintf("This %s %s is crafted from %s.", strings.ToLower(in.Style), item, material))
	} else {
		sentences = append(sentences, fmt.Sprintf("This %s is crafted from %s.", item, material))
	}

	if colors := lowerAll(firstN(in.Colors, maxDescriptionColors)); len(colors) > 0 {
		sentences = append(sentences, fmt.Sprintf("It comes in %s.", joinWords(colors)))
	}

	if objects := detectedObjects(in); len(objects) > 0 {
		sentences = append(sentences, fmt.Sprintf("Details include %s.", joinWords(objects)))
	}

	if labels := showcasedLabels(in, item); len(labels) > 0 {
		sentences = append(sentences, fmt.Sprintf("The design showcases %s.", joinWords(labels)))
	}

	if text := quotedText(in.Signals); text != "" {
		sentences = append(sentences, fmt.Sprintf("It features %q lettering.", text))
	}

	sentences = append(sentences, closingSentence)
	return strings.Join(sentences, " "), confidence
}

func detectedObjects(in Input) []string {
	if in.Signals == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	if in.MainItem != nil {
		seen[key(in.MainItem.Term)] = true
	}
	for _, o := range classify.FilterNoise(in.Signals.Objects) {
		if len(out) == maxDescriptionObjects {
			break
		}
		if k := key(o.Term); !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func showcasedLabels(in Input, item string) []string {
	var out []string
	seen := map[string]bool{item: true}
	for _, l := range classify.FilterNoise(in.Signals.LabelsAbove(HighConfidenceLabel)) {
		if len(out) == maxShowcasedLabels {
			break
		}
		k := key(l.Term)
		if seen[k] || classify.IsStyleTerm(k) || classify.IsMaterialTerm(k) {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func quotedText(s *vision.Signals) string {
	if s == nil {
		return ""
	}
	text := strings.Join(strings.Fields(s.Text), " ")
	if r := []rune(text); len(r) > maxQuotedText {
		text = strings.TrimSpace(string(r[:maxQuotedText])) + "..."
	}
	return text
}

// Features lists high-confidence labels and objects that are not noise and
// not the main item, title-cased, deduplicated and capped at MaxFeatures.
func Features(in Input) []string {
	if in.Signals == nil {
		return []string{}
	}
	out := []string{}
	seen := map[string]bool{}
	if in.MainItem != nil {
		seen[key(in.MainItem.Term)] = true
	}
	candidates := append(in.Signals.LabelsAbove(HighConfidenceLabel), objectsAbove(in.Signals, HighConfidenceLabel)...)
	for _, t := range classify.FilterNoise(candidates) {
		if len(out) == MaxFeatures {
			break
		}
		k := key(t.Term)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Title(k))
	}
	return out
}

func objectsAbove(s *vision.Signals, min float64) []vision.Term {
	var out []vision.Term
	for _, o := range s.Objects {
		if o.Score >= min {
			out = append(out, o)
		}
	}
	return out
}

func mentions(item, word string) bool {
	return item != "" && strings.Contains(strings.ToLower(item), strings.ToLower(word))
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func lowerAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(v)
	}
	return out
}

// joinWords joins items as "a", "a and b" or "a, b and c".
func joinWords(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
