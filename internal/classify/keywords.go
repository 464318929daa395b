package classify

import "github.com/raine/product-attributes/internal/vision"

// KeywordGroup maps a set of keywords onto one canonical value.
type KeywordGroup struct {
	Value    string
	Keywords []string
}

// scanGroups walks groups in order and returns the first group with a keyword
// found in any term. The matching term's score becomes the confidence.
func scanGroups(groups []KeywordGroup, terms []term) Classification[string] {
	for _, g := range groups {
		for _, kw := range g.Keywords {
			for _, t := range terms {
				if containsPhrase(t.text, kw) {
					return Matched(g.Value, t.score)
				}
			}
		}
	}
	return NoMatch[string]()
}

// styleGroups are ordered from specific to generic.
var styleGroups = []KeywordGroup{
	{"Formal", []string{"formal wear", "formal", "tuxedo", "evening gown", "gown", "black tie", "suit"}},
	{"Business", []string{"business", "office", "workwear", "blazer", "dress shirt", "oxford"}},
	{"Athletic", []string{"sportswear", "activewear", "athletic", "running shoe", "running", "jersey", "tracksuit", "gym", "training"}},
	{"Outdoor", []string{"outdoor", "hiking", "trekking", "camping", "rain jacket", "windbreaker", "parka"}},
	{"Swim", []string{"swimwear", "swimsuit", "bikini", "beachwear"}},
	{"Vintage", []string{"vintage", "retro", "antique"}},
	{"Bohemian", []string{"bohemian", "boho", "paisley", "fringe", "embroidery"}},
	{"Streetwear", []string{"streetwear", "street fashion", "hoodie", "graphic tee", "skateboarding", "hip hop"}},
	{"Party", []string{"party", "cocktail dress", "sequin", "glitter", "clubwear"}},
	{"Elegant", []string{"elegant", "luxury", "haute couture", "silk", "satin", "pearl"}},
	{"Preppy", []string{"preppy", "polo", "loafer", "cardigan", "plaid", "tartan"}},
	{"Minimalist", []string{"minimalist", "minimal", "basic", "plain"}},
	{"Casual", []string{"casual", "t shirt", "jeans", "denim", "sneaker", "shorts", "sweatshirt", "flip flop"}},
}

// materialGroups are ordered so that qualified materials ("faux leather",
// "organic cotton") are found before the generic family they contain.
var materialGroups = []KeywordGroup{
	{"Faux Leather", []string{"faux leather", "vegan leather", "synthetic leather", "pu leather", "pleather", "leatherette", "artificial leather"}},
	{"Patent Leather", []string{"patent leather"}},
	{"Suede", []string{"suede"}},
	{"Nubuck", []string{"nubuck"}},
	{"Leather", []string{"leather", "cowhide", "calfskin", "lambskin"}},
	{"Faux Fur", []string{"faux fur", "fake fur"}},
	{"Fur", []string{"fur", "shearling", "mink"}},
	{"Cashmere", []string{"cashmere"}},
	{"Merino Wool", []string{"merino"}},
	{"Alpaca", []string{"alpaca"}},
	{"Mohair", []string{"mohair"}},
	{"Wool", []string{"wool", "woolen", "woollen", "knit wool"}},
	{"Silk", []string{"silk", "chiffon"}},
	{"Satin", []string{"satin"}},
	{"Organic Cotton", []string{"organic cotton"}},
	{"Denim", []string{"denim", "jeans", "chambray"}},
	{"Cotton", []string{"cotton", "jersey knit", "poplin", "terry cloth"}},
	{"Linen", []string{"linen", "flax"}},
	{"Hemp", []string{"hemp"}},
	{"Polyester", []string{"polyester", "recycled polyester"}},
	{"Nylon", []string{"nylon", "ripstop"}},
	{"Spandex", []string{"spandex", "elastane", "lycra"}},
	{"Rayon", []string{"rayon", "viscose", "modal", "lyocell", "tencel"}},
	{"Acrylic", []string{"acrylic"}},
	{"Fleece", []string{"fleece"}},
	{"Velvet", []string{"velvet", "velour"}},
	{"Corduroy", []string{"corduroy"}},
	{"Tweed", []string{"tweed"}},
	{"Canvas", []string{"canvas"}},
	{"Mesh", []string{"mesh"}},
	{"Rubber", []string{"rubber", "latex"}},
	{"Sterling Silver", []string{"sterling silver", "925 silver"}},
	{"Stainless Steel", []string{"stainless steel"}},
	{"Titanium", []string{"titanium"}},
	{"Gold", []string{"gold plated", "solid gold", "14k gold", "18k gold", "gold"}},
	{"Silver", []string{"silver"}},
	{"Platinum", []string{"platinum"}},
	{"Brass", []string{"brass"}},
	{"Copper", []string{"copper"}},
}

// genderGroups are scanned in men, women, unisex order.
var genderGroups = []KeywordGroup{
	{"Men", []string{"men", "man", "male", "menswear", "gentleman", "boy"}},
	{"Women", []string{"women", "woman", "female", "womenswear", "lady", "ladies", "girl"}},
	{"Unisex", []string{"unisex", "gender neutral"}},
}

// ClassifyStyle returns the style suggested by labels and objects.
func ClassifyStyle(s *vision.Signals) Classification[string] {
	return scanGroups(styleGroups, collectTerms(s, false))
}

// ClassifyMaterial returns the material suggested by labels, objects and OCR
// text, or no match.
func ClassifyMaterial(s *vision.Signals) Classification[string] {
	return scanGroups(materialGroups, collectTerms(s, true))
}

// ClassifyGender returns the target gender suggested by labels, objects and
// OCR text, or no match.
func ClassifyGender(s *vision.Signals) Classification[string] {
	return scanGroups(genderGroups, collectTerms(s, true))
}

// IsStyleTerm reports whether t carries a style keyword.
func IsStyleTerm(t string) bool {
	return inGroups(styleGroups, t)
}

// IsMaterialTerm reports whether t carries a material keyword.
func IsMaterialTerm(t string) bool {
	return inGroups(materialGroups, t)
}

func inGroups(groups []KeywordGroup, t string) bool {
	for _, g := range groups {
		if _, ok := containsAny(t, g.Keywords); ok {
			return true
		}
	}
	return false
}
