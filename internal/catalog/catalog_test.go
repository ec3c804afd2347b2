package catalog

import (
	"os"
	"path/filepath"
	"testing"

	domain "github.com/aq2208/storefront-api/internal/entity"
)

func fptr(f float64) *float64 { return &f }

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Wireless Headphones", Category: "Electronics", Price: 79.99, Rating: 4.5, InStock: true},
		{ID: "2", Name: "Cotton T-Shirt", Category: "Clothing", Price: 24.99, Rating: 4.2, InStock: true},
		{ID: "3", Name: "Leather Bag", Category: "Accessories", Price: 129.99, Rating: 4.8, InStock: true},
		{ID: "4", Name: "Desk Lamp", Category: "Electronics", Price: 49.99, Rating: 3.9, InStock: false},
	}
}

func TestByID(t *testing.T) {
	c := New(testProducts())
	p, ok := c.ByID("3")
	if !ok || p.Name != "Leather Bag" {
		t.Fatalf("ByID(3) = %+v, %v", p, ok)
	}
	if _, ok := c.ByID("nope"); ok {
		t.Fatal("unknown id should not resolve")
	}
}

func TestListFilters(t *testing.T) {
	c := New(testProducts())

	t.Run("name search is case-insensitive substring", func(t *testing.T) {
		got := c.List(Filter{Query: "leather"})
		if len(got) != 1 || got[0].ID != "3" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("category set", func(t *testing.T) {
		got := c.List(Filter{Categories: []string{"Electronics"}})
		if len(got) != 2 {
			t.Fatalf("expected 2 electronics, got %d", len(got))
		}
	})

	t.Run("price range", func(t *testing.T) {
		got := c.List(Filter{MinPrice: fptr(40), MaxPrice: fptr(100)})
		if len(got) != 2 {
			t.Fatalf("expected 2 products in range, got %d", len(got))
		}
	})

	t.Run("rating keeps products meeting any threshold", func(t *testing.T) {
		got := c.List(Filter{MinRatings: []float64{4.5}})
		if len(got) != 2 {
			t.Fatalf("expected 2 products rated >= 4.5, got %d", len(got))
		}
	})

	t.Run("zero filter returns everything in catalog order", func(t *testing.T) {
		got := c.List(Filter{})
		if len(got) != 4 || got[0].ID != "1" || got[3].ID != "4" {
			t.Fatalf("unexpected listing: %+v", got)
		}
	})
}

func TestListSort(t *testing.T) {
	c := New(testProducts())

	t.Run("price-low", func(t *testing.T) {
		got := c.List(Filter{Sort: SortPriceLow})
		if got[0].ID != "2" || got[len(got)-1].ID != "3" {
			t.Fatalf("bad price-low order: %v %v", got[0].ID, got[len(got)-1].ID)
		}
	})

	t.Run("price-high", func(t *testing.T) {
		got := c.List(Filter{Sort: SortPriceHigh})
		if got[0].ID != "3" {
			t.Fatalf("bad price-high order, first = %v", got[0].ID)
		}
	})

	t.Run("rating", func(t *testing.T) {
		got := c.List(Filter{Sort: SortRating})
		if got[0].ID != "3" || got[len(got)-1].ID != "4" {
			t.Fatalf("bad rating order")
		}
	})

	t.Run("newest is highest id first", func(t *testing.T) {
		got := c.List(Filter{Sort: SortNewest})
		if got[0].ID != "4" {
			t.Fatalf("bad newest order, first = %v", got[0].ID)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("valid fixture", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")
		fixture := `[{"id":"1","name":"Thing","price":9.99,"category":"Misc","rating":4,"reviews":1,"description":"","inStock":true}]`
		if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
			t.Fatal(err)
		}
		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if c.Len() != 1 {
			t.Fatalf("Len = %d, want 1", c.Len())
		}
	})

	t.Run("invalid record fails startup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")
		fixture := `[{"id":"","name":"Nameless","price":1}]`
		if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("missing file fails startup", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Fatal("expected error")
		}
	})
}
