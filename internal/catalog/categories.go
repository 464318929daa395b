// Package catalog provides the store category list consumed by the category
// matcher.
//
// The surrounding store owns its categories; this package only carries the
// shape the pipeline needs ({id, name, slug}) plus optional per-category
// keywords. When a category carries no keywords the matcher falls back to its
// built-in slug table.
//
// An embedded default list covers a typical fashion storefront so the CLI works
// without a categories file.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Category is a store category candidate.
type Category struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Keywords []string `json:"keywords,omitempty"`
}

// Service holds a normalized category list for the lifetime of a process.
// It is read-only after construction and safe for concurrent use.
type Service struct {
	categories []Category
}

// NewService creates a service over the given categories. A nil list uses the
// embedded defaults.
func NewService(categories []Category) *Service {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Service{categories: Normalize(categories)}
}

// LoadService reads a categories file into a Service. An empty path uses the
// embedded defaults.
func LoadService(path string) (*Service, error) {
	if path == "" {
		return NewService(nil), nil
	}
	categories, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewService(categories), nil
}

// Categories returns a copy of the category list in input order.
func (s *Service) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// LoadFile reads a JSON array of categories.
func LoadFile(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON array of categories and validates it.
func Parse(data []byte) ([]Category, error) {
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Slug) == "" {
			return nil, fmt.Errorf("category %d has neither name nor slug", i)
		}
	}
	return Normalize(categories), nil
}

// Normalize fills a missing slug from the name, a missing name from the slug,
// and lower-cases slugs and keywords. Entries with neither name nor slug are
// dropped. The input is not modified.
func Normalize(categories []Category) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		c.Name = strings.TrimSpace(c.Name)
		c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
		if c.Name == "" && c.Slug == "" {
			continue
		}
		if c.Slug == "" {
			c.Slug = Slugify(c.Name)
		}
		if c.Name == "" {
			c.Name = c.Slug
		}
		var keywords []string
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		c.Keywords = keywords
		out = append(out, c)
	}
	return out
}

// Slugify lower-cases name and joins its words with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}

// DefaultCategories returns the embedded storefront categories.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// defaultCategories rely on the matcher's slug table for keywords.
var defaultCategories = []Category{
	{ID: 1, Name: "Clothing", Slug: "clothing"},
	{ID: 2, Name: "Shoes", Slug: "shoes"},
	{ID: 3, Name: "Bags", Slug: "bags"},
	{ID: 4, Name: "Accessories", Slug: "accessories"},
	{ID: 5, Name: "Jewelry", Slug: "jewelry"},
	{ID: 6, Name: "Watches", Slug: "watches"},
	{ID: 7, Name: "Eyewear", Slug: "eyewear"},
	{ID: 8, Name: "Hats", Slug: "hats"},
	{ID: 9, Name: "Fragrance", Slug: "fragrance"},
	{ID: 10, Name: "Sportswear", Slug: "sportswear"},
	{ID: 11, Name: "Swimwear", Slug: "swimwear"},
	{ID: 12, Name: "Underwear", Slug: "underwear"},
}
