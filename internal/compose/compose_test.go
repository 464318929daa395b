package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/vision"
)

func sneakerInput() Input {
	return Input{
		Signals: &vision.Signals{
			Labels:         []vision.Term{{Term: "sneaker", Score: 0.92}, {Term: "logo", Score: 0.95}},
			Objects:        []vision.Term{{Term: "Shoe", Score: 0.88}},
			DominantColors: []string{"#1a1a1a"},
		},
		MainItem: &classify.MainItem{Term: "shoe", Group: classify.GroupShoes, Score: 1.056, Object: true},
		Style:    "Casual",
		Colors:   []string{"Black"},
	}
}

func TestName(t *testing.T) {
	name, confidence := Name(sneakerInput())
	assert.Equal(t, "Black Shoe", name)
	assert.Equal(t, NameFromItemConfidence, confidence)

	name, confidence = Name(Input{
		Signals: &vision.Signals{Labels: []vision.Term{{Term: "logo", Score: 0.99}, {Term: "vase", Score: 0.85}}},
		Colors:  []string{"White"},
	})
	assert.Equal(t, "White Vase", name)
	assert.Equal(t, NameFromLabelConfidence, confidence)

	name, confidence = Name(Input{})
	assert.Equal(t, "Product", name)
	assert.Equal(t, PlaceholderNameConfidence, confidence)

	name, _ = Name(Input{Colors: []string{"Navy"}})
	assert.Equal(t, "Navy Product", name)
}

func TestName_SkipsRedundantMaterial(t *testing.T) {
	name, _ := Name(Input{
		MainItem: &classify.MainItem{Term: "leather jacket"},
		Material: "Leather",
		Colors:   []string{"Brown"},
	})
	assert.Equal(t, "Brown Leather Jacket", name)

	name, _ = Name(Input{
		MainItem: &classify.MainItem{Term: "ring"},
		Material: "Gold",
		Colors:   []string{"Gold"},
	})
	assert.Equal(t, "Gold Ring", name)

	name, _ = Name(Input{
		MainItem: &classify.MainItem{Term: "t-shirt"},
		Material: "Organic Cotton",
		Colors:   []string{"White", "Navy"},
	})
	assert.Equal(t, "White Organic Cotton T-Shirt", name)
}

func TestDescription(t *testing.T) {
	description, confidence := Description(sneakerInput())
	assert.Equal(t,
		"This casual shoe is crafted from quality materials. It comes in black. "+closingSentence,
		description)
	assert.Equal(t, DescriptionWithItemConfidence, confidence)
}

func TestDescription_AllClauses(t *testing.T) {
	in := Input{
		Signals: &vision.Signals{
			Labels: []vision.Term{
				{Term: "handbag", Score: 0.95},
				{Term: "leather", Score: 0.9},
				{Term: "strap", Score: 0.85},
				{Term: "cartoon", Score: 0.8},
				{Term: "metal", Score: 0.75},
				{Term: "zipper", Score: 0.72},
				{Term: "rectangle", Score: 0.71},
				{Term: "pocket", Score: 0.7},
				{Term: "shadow", Score: 0.3},
			},
			Objects: []vision.Term{{Term: "Handbag", Score: 0.9}, {Term: "Logo", Score: 0.8}, {Term: "Wallet", Score: 0.7}},
			Text:    "ACME\nATELIER",
		},
		MainItem: &classify.MainItem{Term: "handbag", Group: classify.GroupAccessories, Score: 1.08},
		Style:    "Elegant",
		Material: "Leather",
		Colors:   []string{"Burgundy", "Gold", "Black", "White"},
	}

	description, _ := Description(in)
	assert.Equal(t, strings.Join([]string{
		"This elegant handbag is crafted from leather.",
		"It comes in burgundy, gold and black.",
		"Details include wallet.",
		"The design showcases strap, metal and zipper.",
		`It features "ACME ATELIER" lettering.`,
		closingSentence,
	}, " "), description)
}

func TestDescription_Generic(t *testing.T) {
	description, confidence := Description(Input{})
	assert.Equal(t, "This product is crafted from quality materials. "+closingSentence, description)
	assert.Equal(t, DescriptionGenericConfidence, confidence)
}

func TestQuotedText_Truncates(t *testing.T) {
	text := quotedText(&vision.Signals{Text: strings.Repeat("abcdefghij ", 10)})
	assert.Len(t, []rune(text), maxQuotedText+3)
	assert.True(t, strings.HasSuffix(text, "..."))
	assert.Empty(t, quotedText(nil))
}

func TestFeatures(t *testing.T) {
	assert.Equal(t, []string{"Sneaker"}, Features(sneakerInput()))
	assert.Equal(t, []string{}, Features(Input{}))

	var labels []vision.Term
	for _, l := range []string{"collar", "sleeve", "button", "pocket", "zipper", "hood", "cuff", "hem"} {
		labels = append(labels, vision.Term{Term: l, Score: 0.9})
	}
	features := Features(Input{Signals: &vision.Signals{Labels: labels}})
	assert.Equal(t, []string{"Collar", "Sleeve", "Button", "Pocket", "Zipper", "Hood"}, features)
}

func TestJoinWords(t *testing.T) {
	assert.Equal(t, "", joinWords(nil))
	assert.Equal(t, "a", joinWords([]string{"a"}))
	assert.Equal(t, "a and b", joinWords([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinWords([]string{"a", "b", "c"}))
}
