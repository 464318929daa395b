package llm

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

const generatePrompt = `
	You are writing catalog copy for a fashion e-commerce store. Look at the
	product photo and write a product name and a product description.

	Rules:
	- name: at most 150 characters. Start with the brand if one is visible, then
	  the key design detail and the item type, e.g. "Toga Virilis Strap-Detail Clogs".
	- description: 2-3 sentences, at least 50 characters, describing the item,
	  its material, color and notable details. No prices, no sizes, no claims
	  that cannot be seen in the photo.
	- Write in English.

	Image analysis found:
	%s

	Treat the analysis as hints; the photo is authoritative.

	Respond ONLY with a JSON object: {"name": "...", "description": "..."}`

func formatPrompt(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

// buildPrompt renders the generation prompt for hints.
func buildPrompt(h Hints) string {
	return formatPrompt(generatePrompt, h.String())
}

// String renders the hints as a bullet list. Empty hints render as "nothing".
func (h Hints) String() string {
	var lines []string
	add := func(label string, values ...string) {
		var kept []string
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, strings.Join(kept, ", ")))
		}
	}
	add("Main item", h.MainItem)
	add("Labels", h.Labels...)
	add("Objects", h.Objects...)
	add("Colors", h.Colors...)
	add("Material", h.Material)
	add("Brand (from printed text)", h.Brand)
	if len(lines) == 0 {
		return "- nothing"
	}
	return strings.Join(lines, "\n")
}
