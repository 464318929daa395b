package classify

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/raine/product-attributes/internal/catalog"
	"github.com/raine/product-attributes/internal/vision"
)

const (
	// CategoryThreshold is the minimum score for a confident category.
	CategoryThreshold = 0.3
	// MaxCategoryAlternatives caps the alternatives returned with a match.
	MaxCategoryAlternatives = 3

	exactKeywordScore   = 1.0
	partialKeywordScore = 0.7
	nameScore           = 0.5
)

var (
	shoeKeywords = []string{
		"shoe", "footwear", "sneaker", "running shoe", "athletic shoe", "trainer", "boot",
		"sandal", "heel", "high heels", "loafer", "slipper", "clog", "mule", "moccasin",
		"espadrille", "flip flop",
	}
	clothingKeywords = []string{
		"clothing", "apparel", "garment", "t shirt", "shirt", "tee", "top", "blouse", "polo",
		"dress", "skirt", "pants", "trousers", "jeans", "shorts", "leggings", "jacket", "coat",
		"blazer", "suit", "vest", "hoodie", "sweatshirt", "sweater", "jumper", "cardigan",
		"jumpsuit", "outerwear", "knitwear", "sleeve", "collar",
	}
	bagKeywords = []string{
		"bag", "handbag", "backpack", "purse", "wallet", "tote", "clutch", "satchel",
		"luggage", "suitcase", "shoulder bag", "messenger bag",
	}
	jewelryKeywords = []string{
		"jewelry", "jewellery", "necklace", "bracelet", "ring", "earring", "pendant",
		"brooch", "chain", "gemstone", "diamond", "pearl", "body jewelry",
	}
	watchKeywords = []string{
		"watch", "wristwatch", "analog watch", "smartwatch", "watch strap", "chronograph",
	}
	eyewearKeywords = []string{
		"eyewear", "sunglasses", "glasses", "goggles", "spectacles", "lens",
	}
	hatKeywords = []string{
		"hat", "cap", "beanie", "fedora", "sun hat", "baseball cap", "headgear", "headwear",
	}
	fragranceKeywords = []string{
		"perfume", "fragrance", "cologne", "eau de parfum", "eau de toilette", "scent", "bottle",
	}
	accessoryKeywords = []string{
		"fashion accessory", "accessory", "belt", "scarf", "scarves", "glove", "tie", "bow tie",
		"umbrella", "headband", "hair accessory", "keychain",
	}
	sportswearKeywords = []string{
		"sportswear", "activewear", "athletic", "jersey", "tracksuit", "sports uniform",
		"leggings", "running", "gym",
	}
	swimwearKeywords = []string{
		"swimwear", "swimsuit", "bikini", "one piece swimsuit", "swim brief", "board short",
	}
	underwearKeywords = []string{
		"underwear", "lingerie", "bra", "briefs", "boxer", "undergarment", "sock", "hosiery",
	}
)

// slugKeywords is the fallback keyword table for categories that carry no
// keywords of their own.
var slugKeywords = map[string][]string{
	"shoes":       shoeKeywords,
	"footwear":    shoeKeywords,
	"sneakers":    shoeKeywords,
	"boots":       shoeKeywords,
	"clothes":     clothingKeywords,
	"clothing":    clothingKeywords,
	"apparel":     clothingKeywords,
	"bags":        bagKeywords,
	"handbags":    bagKeywords,
	"jewelry":     jewelryKeywords,
	"jewellery":   jewelryKeywords,
	"watches":     watchKeywords,
	"eyewear":     eyewearKeywords,
	"sunglasses":  eyewearKeywords,
	"hats":        hatKeywords,
	"headwear":    hatKeywords,
	"fragrance":   fragranceKeywords,
	"perfume":     fragranceKeywords,
	"accessories": accessoryKeywords,
	"sportswear":  sportswearKeywords,
	"activewear":  sportswearKeywords,
	"swimwear":    swimwearKeywords,
	"underwear":   underwearKeywords,
	"lingerie":    underwearKeywords,
}

// CategoryScore is a category with its normalized match score in [0,1].
type CategoryScore struct {
	Category catalog.Category `json:"category"`
	Score    float64          `json:"score"`
}

// KeywordsFor returns the keywords used to score c: its own keywords when
// set, otherwise the slug table entry. ok is false when neither exists.
func KeywordsFor(c catalog.Category) (keywords []string, ok bool) {
	if len(c.Keywords) > 0 {
		return c.Keywords, true
	}
	keywords, ok = slugKeywords[c.Slug]
	return keywords, ok
}

// ScoreCategories scores every category against the labels and objects in s
// and returns those with a positive score, best first. Equal scores keep
// input order.
//
// For each detected term and keyword that contain one another on word
// boundaries, an exact match adds 1.0 and a partial match 0.7. A term related
// to the category's display name adds 0.5. Every hit counts once, and the
// score is the accumulated sum over the hit count, capped at 1.
func ScoreCategories(s *vision.Signals, categories []catalog.Category) []CategoryScore {
	terms := termSet(s)
	if len(terms) == 0 {
		return nil
	}

	var unmapped []string
	var scored []CategoryScore
	for _, c := range categories {
		keywords, ok := KeywordsFor(c)
		if !ok {
			unmapped = append(unmapped, c.Slug)
		}
		name := normalizePhrase(c.Name)

		var sum float64
		var matches int
		for _, t := range terms {
			for _, kw := range keywords {
				kw = normalizePhrase(kw)
				if kw == "" {
					continue
				}
				if t == kw {
					sum += exactKeywordScore
					matches++
				} else if related(t, kw) {
					sum += partialKeywordScore
					matches++
				}
			}
			if name != "" && related(t, name) {
				sum += nameScore
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		scored = append(scored, CategoryScore{Category: c, Score: math.Min(sum/float64(matches), 1)})
	}

	if len(unmapped) > 0 {
		log.Warn().Strs("slugs", unmapped).Msg("categories have no keywords, scoring by name only")
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// MatchCategory picks the best category for s. Below CategoryThreshold there
// is no confident match and up to MaxCategoryAlternatives of the best scored
// categories are returned as alternatives. Otherwise the winner is returned
// with up to MaxCategoryAlternatives runners-up. The confidence is the
// winner's score.
func MatchCategory(s *vision.Signals, categories []catalog.Category) Classification[catalog.Category] {
	scored := ScoreCategories(s, categories)
	if len(scored) == 0 {
		return NoMatch[catalog.Category]()
	}

	top := scored[0]
	if top.Score < CategoryThreshold {
		return NoMatch(categoriesOf(scored, MaxCategoryAlternatives)...)
	}
	return Matched(top.Category, top.Score, categoriesOf(scored[1:], MaxCategoryAlternatives)...)
}

func categoriesOf(scored []CategoryScore, limit int) []catalog.Category {
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]catalog.Category, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Category)
	}
	return out
}
