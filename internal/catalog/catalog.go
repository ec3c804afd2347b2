// Package catalog holds the read-only product collection the storefront
// serves. Products are loaded once at startup from a JSON fixture; there
// is no update path.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// Filter narrows and orders a listing. Zero value matches everything in
// catalog order.
type Filter struct {
	// Query matches case-insensitively against product names.
	Query string
	// Categories keeps products in any of the given categories.
	Categories []string
	MinPrice   *float64
	MaxPrice   *float64
	// MinRatings keeps products whose rating meets at least one of the
	// given thresholds.
	MinRatings []float64
	Sort       string
}

type Catalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products: products,
		byID:     make(map[string]domain.Product, len(products)),
	}
	for _, p := range products {
		c.byID[p.ID] = p
	}
	return c
}

// Load reads the product fixture at path. Every record must pass
// Validate; a bad fixture is a startup error, not a runtime one.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var products []domain.Product
	if err := json.NewDecoder(f).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range products {
		if err := products[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog record %d (%q): %w", i, products[i].ID, err)
		}
	}
	return New(products), nil
}

func (c *Catalog) ByID(id string) (domain.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) Len() int { return len(c.products) }

// List returns the products matching f, ordered by f.Sort. The result is
// a fresh slice; callers may not mutate catalog state through it.
func (c *Catalog) List(f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	q := strings.ToLower(f.Query)
	for _, p := range c.products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if len(f.MinRatings) > 0 && !meetsAny(p.Rating, f.MinRatings) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortNewest:
		// Ids are assigned in insertion order, so newest sorts highest id first.
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func meetsAny(rating float64, thresholds []float64) bool {
	for _, t := range thresholds {
		if rating >= t {
			return true
		}
	}
	return false
}
