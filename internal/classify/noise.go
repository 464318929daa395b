package classify

import "github.com/raine/product-attributes/internal/vision"

// noiseKeywords describe things in a product photo that are not the product.
var noiseKeywords = []string{
	"logo",
	"text",
	"font",
	"brand",
	"trademark",
	"emblem",
	"symbol",
	"label",
	"sticker",
	"signage",
	"graphics",
	"graphic design",
	"clip art",
	"illustration",
	"cartoon",
	"animated cartoon",
	"animation",
	"fictional character",
	"drawing",
	"art",
	"background",
	"backdrop",
	"wallpaper",
	"screenshot",
	"rectangle",
	"circle",
	"packaging",
	"packaging and labeling",
	"package",
	"box",
	"carton",
	"advertising",
	"poster",
	"banner",
	"photography",
	"stock photography",
	"still life",
}

// IsNoise reports whether a detected term names visual noise rather than a
// product (logos, text, backgrounds, packaging).
func IsNoise(t string) bool {
	_, ok := containsAny(t, noiseKeywords)
	return ok
}

// FilterNoise returns the terms that are not noise, keeping order.
func FilterNoise(terms []vision.Term) []vision.Term {
	var out []vision.Term
	for _, t := range terms {
		if !IsNoise(t.Term) {
			out = append(out, t)
		}
	}
	return out
}
