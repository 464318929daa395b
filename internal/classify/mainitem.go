package classify

import "github.com/raine/product-attributes/internal/vision"

// ObjectBoost weights localized objects over whole-image labels.
const ObjectBoost = 1.2

// Fashion groups recognized by the main-item identifier.
const (
	GroupClothing    = "clothing"
	GroupShoes       = "shoes"
	GroupAccessories = "accessories"
	GroupFragrance   = "fragrance"
)

type fashionGroup struct {
	name     string
	keywords []string
}

var fashionGroups = []fashionGroup{
	{GroupClothing, []string{
		"clothing", "apparel", "garment", "outerwear", "sportswear", "activewear",
		"t shirt", "shirt", "tee", "top", "tank top", "crop top", "blouse", "polo",
		"dress", "gown", "skirt", "pants", "trousers", "jeans", "shorts", "leggings",
		"jacket", "coat", "parka", "blazer", "suit", "vest", "waistcoat",
		"hoodie", "sweatshirt", "sweater", "jumper", "cardigan", "pullover", "knitwear",
		"jumpsuit", "romper", "overalls", "tracksuit", "uniform",
		"swimsuit", "swimwear", "bikini", "lingerie", "bra", "underwear", "pajamas", "robe", "sock",
	}},
	{GroupShoes, []string{
		"shoe", "footwear", "sneaker", "trainer", "boot", "sandal", "heel", "high heels",
		"loafer", "slipper", "clog", "mule", "moccasin", "espadrille", "flip flop",
	}},
	{GroupAccessories, []string{
		"fashion accessory", "bag", "handbag", "backpack", "purse", "wallet", "tote", "clutch",
		"satchel", "luggage", "suitcase", "belt", "scarf", "scarves", "hat", "cap", "beanie",
		"glove", "sunglasses", "glasses", "eyewear", "watch", "wristwatch", "jewelry",
		"jewellery", "necklace", "bracelet", "ring", "earring", "pendant", "brooch", "tie",
		"bow tie", "umbrella", "headband",
	}},
	{GroupFragrance, []string{
		"perfume", "fragrance", "cologne", "eau de parfum", "eau de toilette", "scent",
	}},
}

// MainItem is the product the image most likely depicts.
type MainItem struct {
	Term   string  `json:"term"`
	Group  string  `json:"group"`
	Score  float64 `json:"score"` // ranking score, objects boosted
	Object bool    `json:"object"`
}

// Confidence is the ranking score clamped to [0,1].
func (m *MainItem) Confidence() float64 {
	if m == nil {
		return 0
	}
	if m.Score > 1 {
		return 1
	}
	return m.Score
}

// FashionGroup returns the fashion group a term belongs to.
func FashionGroup(t string) (string, bool) {
	for _, g := range fashionGroups {
		if _, ok := containsAny(t, g.keywords); ok {
			return g.name, true
		}
	}
	return "", false
}

// IsFashionTerm reports whether t names a fashion product.
func IsFashionTerm(t string) bool {
	_, ok := FashionGroup(t)
	return ok
}

// IdentifyMainItem picks the highest scored fashion term among labels and
// objects, ignoring noise. Object scores are multiplied by ObjectBoost. On
// equal scores the earlier term wins, labels before objects. It returns nil
// when no term belongs to a fashion group.
func IdentifyMainItem(s *vision.Signals) *MainItem {
	var best *MainItem
	for _, t := range collectTerms(s, false) {
		if IsNoise(t.text) {
			continue
		}
		group, ok := FashionGroup(t.text)
		if !ok {
			continue
		}
		score := t.score
		if t.object {
			score *= ObjectBoost
		}
		if best == nil || score > best.Score {
			best = &MainItem{Term: t.raw, Group: group, Score: score, Object: t.object}
		}
	}
	return best
}
