package classify

import (
	"strings"
	"unicode"

	"github.com/raine/product-attributes/internal/palette"
	"github.com/raine/product-attributes/internal/vision"
)

// Brand confidences by evidence.
const (
	KnownBrandConfidence    = 0.85
	RepeatedPairConfidence  = 0.7
	FirstCapitalConfidence  = 0.5
	maxNameBrandTokens      = 2
	minBrandTokenLength     = 2
	repeatedPairOccurrences = 2
)

// knownBrands are matched against OCR text before the capitalization
// heuristic runs. Labels are not scanned: "mango", "puma" and "vans" are far
// more often fruit, animals and vehicles there.
var knownBrands = []KeywordGroup{
	{"Louis Vuitton", []string{"louis vuitton"}},
	{"Yves Saint Laurent", []string{"yves saint laurent", "saint laurent"}},
	{"Calvin Klein", []string{"calvin klein"}},
	{"Tommy Hilfiger", []string{"tommy hilfiger"}},
	{"Ralph Lauren", []string{"ralph lauren", "polo ralph lauren"}},
	{"Michael Kors", []string{"michael kors"}},
	{"Dr. Martens", []string{"dr martens", "doc martens"}},
	{"New Balance", []string{"new balance"}},
	{"Under Armour", []string{"under armour"}},
	{"The North Face", []string{"the north face", "north face"}},
	{"Ray-Ban", []string{"ray ban"}},
	{"Levi's", []string{"levi s", "levis", "levi strauss"}},
	{"Dolce & Gabbana", []string{"dolce gabbana"}},
	{"Nike", []string{"nike"}},
	{"Adidas", []string{"adidas"}},
	{"Puma", []string{"puma"}},
	{"Reebok", []string{"reebok"}},
	{"Converse", []string{"converse"}},
	{"Vans", []string{"vans"}},
	{"Asics", []string{"asics"}},
	{"Fila", []string{"fila"}},
	{"Gucci", []string{"gucci"}},
	{"Prada", []string{"prada"}},
	{"Chanel", []string{"chanel"}},
	{"Dior", []string{"dior"}},
	{"Hermès", []string{"hermès", "hermes"}},
	{"Versace", []string{"versace"}},
	{"Balenciaga", []string{"balenciaga"}},
	{"Burberry", []string{"burberry"}},
	{"Fendi", []string{"fendi"}},
	{"Givenchy", []string{"givenchy"}},
	{"Valentino", []string{"valentino"}},
	{"Zara", []string{"zara"}},
	{"H&M", []string{"h m"}},
	{"Uniqlo", []string{"uniqlo"}},
	{"Mango", []string{"mango"}},
	{"Gap", []string{"gap"}},
	{"Lacoste", []string{"lacoste"}},
	{"Timberland", []string{"timberland"}},
	{"Birkenstock", []string{"birkenstock"}},
	{"Crocs", []string{"crocs"}},
	{"Rolex", []string{"rolex"}},
	{"Casio", []string{"casio"}},
	{"Swatch", []string{"swatch"}},
	{"Oakley", []string{"oakley"}},
	{"Patagonia", []string{"patagonia"}},
	{"Columbia", []string{"columbia sportswear"}},
}

// brandDenyWords are capitalized words commonly printed on products that are
// not brands: countries, cities and care or size label vocabulary.
var brandDenyWords = toSet([]string{
	// countries
	"usa", "us", "uk", "china", "italy", "france", "spain", "portugal", "germany",
	"japan", "korea", "vietnam", "indonesia", "india", "bangladesh", "cambodia",
	"turkey", "thailand", "mexico", "brazil", "canada", "england", "italia", "prc",
	"pakistan", "taiwan", "malaysia", "philippines", "sri", "lanka",
	// cities
	"paris", "london", "milan", "milano", "new", "york", "tokyo", "berlin", "los",
	"angeles", "rome", "roma", "madrid", "barcelona", "amsterdam", "seoul", "shanghai",
	// common words
	"made", "in", "the", "and", "of", "for", "with", "by", "a", "an", "to",
	"size", "sizes", "small", "medium", "large", "xs", "s", "m", "l", "xl", "xxl",
	"cotton", "polyester", "wool", "nylon", "spandex", "elastane", "leather", "silk",
	"wash", "washing", "machine", "hand", "cold", "warm", "dry", "clean", "do", "not",
	"bleach", "iron", "tumble", "care", "only", "instructions",
	"style", "color", "colour", "model", "art", "ref", "no", "price", "sale", "sku",
	"original", "genuine", "authentic", "quality", "premium", "collection", "edition",
	"limited", "design", "designed", "official", "product", "fabric", "material",
	"classic", "vintage", "luxury", "fashion", "brand", "logo", "since", "est",
	"men", "women", "unisex", "kids", "ladies",
})

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// knownBrandIn returns the first known brand found in text.
func knownBrandIn(text string) (string, bool) {
	text = normalizePhrase(text)
	if text == "" {
		return "", false
	}
	c := scanGroups(knownBrands, []term{{text: text, score: 1}})
	if !c.Found() {
		return "", false
	}
	return *c.Value, true
}

// ExtractBrand derives a brand from the OCR text. A known brand anywhere in
// the text wins. Otherwise the text is reduced to its capitalized words minus
// brandDenyWords; an adjacent pair occurring more than once is a strong
// signal, and failing that the first remaining word is used.
func ExtractBrand(s *vision.Signals) Classification[string] {
	if s == nil {
		return NoMatch[string]()
	}
	if brand, ok := knownBrandIn(s.Text); ok {
		return Matched(brand, KnownBrandConfidence)
	}
	return BrandFromText(s.Text)
}

// BrandFromText runs the OCR capitalization heuristic on text.
func BrandFromText(text string) Classification[string] {
	runs := capitalizedRuns(text)

	// Adjacent pairs in encounter order with their counts.
	type pair struct{ a, b string }
	var order []pair
	counts := make(map[pair]int)
	for _, run := range runs {
		for i := 0; i+1 < len(run); i++ {
			p := pair{run[i], run[i+1]}
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
	}
	for _, p := range order {
		if counts[p] >= repeatedPairOccurrences {
			return Matched(p.a+" "+p.b, RepeatedPairConfidence)
		}
	}

	for _, run := range runs {
		if len(run) > 0 {
			return Matched(run[0], FirstCapitalConfidence)
		}
	}
	return NoMatch[string]()
}

// capitalizedRuns splits text into runs of adjacent capitalized words that are
// not on the deny list. A denied or lower-case word breaks a run.
func capitalizedRuns(text string) [][]string {
	var runs [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		for _, w := range strings.Fields(line) {
			w = strings.TrimFunc(w, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '&'
			})
			if !isBrandToken(w) {
				flush()
				continue
			}
			cur = append(cur, w)
		}
		flush()
	}
	return runs
}

func isBrandToken(w string) bool {
	if len([]rune(w)) < minBrandTokenLength {
		return false
	}
	first := []rune(w)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	return !brandDenyWords[strings.ToLower(w)]
}

// BrandFromName takes up to two leading capitalized words of a generated
// product name as the brand. Words that name a color, material, style or item
// end the brand, as does any hyphenated word. A known brand anywhere in the
// name wins.
func BrandFromName(name string) (string, bool) {
	if brand, ok := knownBrandIn(name); ok {
		return brand, true
	}

	var tokens []string
	for _, w := range strings.Fields(name) {
		if len(tokens) == maxNameBrandTokens || !isNameBrandToken(w) {
			break
		}
		tokens = append(tokens, w)
	}
	if len(tokens) == 0 {
		return "", false
	}
	return strings.Join(tokens, " "), true
}

func isNameBrandToken(w string) bool {
	if strings.Contains(w, "-") || !isBrandToken(w) {
		return false
	}
	return !palette.IsColorWord(w) && !IsMaterialTerm(w) && !IsStyleTerm(w) && !IsFashionTerm(w)
}

// ColorFromName returns the canonical palette name of the first color word
// in a generated product name.
func ColorFromName(name string) (string, bool) {
	return palette.ColorWordIn(name)
}
