// Package palette names colors by nearest match against a curated palette of
// retail color names.
package palette

import (
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Unknown is returned for unparsable color input.
const Unknown = "Unknown"

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// Entry is a named reference color.
type Entry struct {
	Name string
	RGB  RGB
}

// entries is ordered; on equal distance the earlier entry wins.
var entries = []Entry{
	// Neutrals
	{"Black", RGB{0, 0, 0}},
	{"White", RGB{255, 255, 255}},
	{"Ivory", RGB{255, 255, 240}},
	{"Cream", RGB{255, 253, 208}},
	{"Beige", RGB{245, 245, 220}},
	{"Tan", RGB{210, 180, 140}},
	{"Khaki", RGB{195, 176, 145}},
	{"Taupe", RGB{72, 60, 50}},
	{"Gray", RGB{128, 128, 128}},
	{"Light Gray", RGB{211, 211, 211}},
	{"Dark Gray", RGB{64, 64, 64}},
	{"Charcoal", RGB{54, 69, 79}},
	{"Brown", RGB{139, 69, 19}},
	{"Chocolate", RGB{123, 63, 0}},
	{"Camel", RGB{193, 154, 107}},

	// Reds
	{"Red", RGB{255, 0, 0}},
	{"Dark Red", RGB{139, 0, 0}},
	{"Burgundy", RGB{128, 0, 32}},
	{"Maroon", RGB{128, 0, 0}},
	{"Crimson", RGB{220, 20, 60}},
	{"Coral", RGB{255, 127, 80}},
	{"Salmon", RGB{250, 128, 114}},
	{"Rust", RGB{183, 65, 14}},

	// Pinks
	{"Pink", RGB{255, 192, 203}},
	{"Hot Pink", RGB{255, 105, 180}},
	{"Blush", RGB{222, 93, 131}},
	{"Magenta", RGB{255, 0, 255}},
	{"Rose", RGB{255, 0, 127}},

	// Oranges and yellows
	{"Orange", RGB{255, 165, 0}},
	{"Peach", RGB{255, 218, 185}},
	{"Mustard", RGB{255, 219, 88}},
	{"Yellow", RGB{255, 255, 0}},

	// Greens
	{"Green", RGB{0, 128, 0}},
	{"Lime", RGB{50, 205, 50}},
	{"Olive", RGB{128, 128, 0}},
	{"Forest Green", RGB{34, 139, 34}},
	{"Mint", RGB{152, 255, 152}},
	{"Sage", RGB{188, 184, 138}},
	{"Emerald", RGB{80, 200, 120}},
	{"Teal", RGB{0, 128, 128}},
	{"Dark Green", RGB{0, 100, 0}},

	// Blues
	{"Navy", RGB{0, 0, 128}},
	{"Blue", RGB{0, 0, 255}},
	{"Royal Blue", RGB{65, 105, 225}},
	{"Sky Blue", RGB{135, 206, 235}},
	{"Light Blue", RGB{173, 216, 230}},
	{"Denim", RGB{21, 96, 189}},
	{"Turquoise", RGB{64, 224, 208}},
	{"Cyan", RGB{0, 255, 255}},
	{"Cobalt", RGB{0, 71, 171}},
	{"Midnight Blue", RGB{25, 25, 112}},

	// Purples
	{"Purple", RGB{128, 0, 128}},
	{"Lavender", RGB{230, 230, 250}},
	{"Violet", RGB{238, 130, 238}},
	{"Plum", RGB{142, 69, 133}},
	{"Lilac", RGB{200, 162, 200}},
	{"Indigo", RGB{75, 0, 130}},
	{"Mauve", RGB{224, 176, 255}},

	// Metals
	{"Gold", RGB{255, 215, 0}},
	{"Silver", RGB{192, 192, 192}},
	{"Bronze", RGB{205, 127, 50}},
	{"Copper", RGB{184, 115, 51}},
	{"Rose Gold", RGB{183, 110, 121}},
	{"Platinum", RGB{229, 228, 226}},
	{"Brass", RGB{181, 166, 66}},
}

// Nearest returns the palette entry with the smallest squared Euclidean
// distance to c in RGB space.
func Nearest(c RGB) Entry {
	best := entries[0]
	bestDist := distance(c, best.RGB)
	for _, e := range entries[1:] {
		if d := distance(c, e.RGB); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

func distance(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// ParseHex parses a 3- or 6-digit hex color with or without a leading '#'.
func ParseHex(hex string) (RGB, bool) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return RGB{}, false
	}
	for _, r := range hex[1:] {
		if !isHexDigit(r) {
			return RGB{}, false
		}
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, false
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// HexToColorName returns the nearest palette name for a hex color, or Unknown
// when the input cannot be parsed.
func HexToColorName(hex string) string {
	c, ok := ParseHex(hex)
	if !ok {
		return Unknown
	}
	return Nearest(c).Name
}

// HexesToColorNames maps hex colors to palette names, dropping unparsable
// input. The result may be shorter than the input and may contain repeats
// when distinct shades map to the same name.
func HexesToColorNames(hexes []string) []string {
	var names []string
	for _, h := range hexes {
		if name := HexToColorName(h); name != Unknown {
			names = append(names, name)
		}
	}
	return names
}

// UniqueNames is HexesToColorNames with duplicates removed, keeping order.
func UniqueNames(hexes []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range HexesToColorNames(hexes) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// aliases maps common spellings onto palette names.
var aliases = map[string]string{
	"grey":       "Gray",
	"light grey": "Light Gray",
	"dark grey":  "Dark Gray",
	"navy blue":  "Navy",
	"off white":  "Ivory",
	"fuchsia":    "Magenta",
	"wine":       "Burgundy",
	"nude":       "Beige",
}

// colorWords holds every palette name and alias, longest first so multi-word
// names such as "Rose Gold" win over "Gold".
var colorWords = func() []string {
	var words []string
	for _, e := range entries {
		words = append(words, strings.ToLower(e.Name))
	}
	for alias := range aliases {
		words = append(words, alias)
	}
	sort.SliceStable(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return words
}()

var nameByWord = func() map[string]string {
	m := make(map[string]string, len(entries)+len(aliases))
	for _, e := range entries {
		m[strings.ToLower(e.Name)] = e.Name
	}
	for alias, name := range aliases {
		m[alias] = name
	}
	return m
}()

// ColorWordIn scans free text (typically a product name) for a known color
// word and returns its canonical palette name. Matches are whole-word and
// case-insensitive.
func ColorWordIn(text string) (string, bool) {
	padded := " " + wordsOnly(text) + " "
	for _, w := range colorWords {
		if strings.Contains(padded, " "+wordsOnly(w)+" ") {
			return nameByWord[w], true
		}
	}
	return "", false
}

// IsColorWord reports whether word is a known color name or alias.
func IsColorWord(word string) bool {
	_, ok := nameByWord[strings.ToLower(strings.TrimSpace(word))]
	return ok
}

func wordsOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127 {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
