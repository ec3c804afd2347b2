package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aq2208/storefront-api/internal/catalog"
	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type nopPersistence struct{}

func (nopPersistence) Load(ctx context.Context) ([]domain.CartLine, error) { return nil, nil }
func (nopPersistence) Save(ctx context.Context, _ []domain.CartLine) error { return nil }

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.New([]domain.Product{
		{ID: "1", Name: "Headphones", Category: "Electronics", Price: 79.99, Rating: 4.5, InStock: true, Colors: []string{"Black", "White"}},
		{ID: "2", Name: "T-Shirt", Category: "Clothing", Price: 24.99, Rating: 4.2, InStock: true, Sizes: []string{"S", "M"}},
		{ID: "3", Name: "Plant Pot", Category: "Home & Garden", Price: 34.99, Rating: 4.0, InStock: false},
	})
	store := usecase.NewCartStore(nopPersistence{}, nil, usecase.CartConfig{
		ShippingThreshold: 100,
		ShippingCost:      9.99,
		TaxRate:           0.08,
	}, nil)
	t.Cleanup(store.Close)

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewRouter(NewCartHandler(store, cat), NewCatalogHandler(cat), log)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartView {
	t.Helper()
	var v cartView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode cart view: %v (%s)", err, w.Body.String())
	}
	return v
}

func TestAddItemEndpoint(t *testing.T) {
	r := testRouter(t)

	t.Run("adds and merges", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "1", "color": "Black"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		w = do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "1", "color": "Black"})
		v := decodeCart(t, w)
		if len(v.Items) != 1 || v.Items[0].Quantity != 2 {
			t.Fatalf("expected one merged line with quantity 2, got %+v", v.Items)
		}
		if v.TotalItems != 2 {
			t.Fatalf("totalItems = %d, want 2", v.TotalItems)
		}
		if !v.IsOpen {
			t.Fatal("cart should be open after add")
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "nope"})
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	t.Run("out of stock is refused before the store is touched", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "3"})
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
		v := decodeCart(t, do(t, r, http.MethodGet, "/v1/cart", nil))
		for _, l := range v.Items {
			if l.ID == "3" {
				t.Fatal("out-of-stock product reached the cart")
			}
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"color": "Black"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestUpdateAndRemoveEndpoints(t *testing.T) {
	r := testRouter(t)
	do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "2", "size": "M"})

	t.Run("patch sets absolute quantity", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/v1/cart/items", gin.H{"productId": "2", "quantity": 3, "size": "M"})
		v := decodeCart(t, w)
		if len(v.Items) != 1 || v.Items[0].Quantity != 3 {
			t.Fatalf("unexpected items: %+v", v.Items)
		}
	})

	t.Run("quantity zero removes", func(t *testing.T) {
		w := do(t, r, http.MethodPatch, "/v1/cart/items", gin.H{"productId": "2", "quantity": 0, "size": "M"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		v := decodeCart(t, w)
		if len(v.Items) != 0 {
			t.Fatalf("expected empty cart, got %+v", v.Items)
		}
	})

	t.Run("delete needs the exact variant key", func(t *testing.T) {
		do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "2", "size": "M"})
		v := decodeCart(t, do(t, r, http.MethodDelete, "/v1/cart/items?productId=2", nil))
		if len(v.Items) != 1 {
			t.Fatalf("wrong-variant delete must be a no-op, got %+v", v.Items)
		}
		v = decodeCart(t, do(t, r, http.MethodDelete, "/v1/cart/items?productId=2&size=M", nil))
		if len(v.Items) != 0 {
			t.Fatalf("expected empty cart, got %+v", v.Items)
		}
	})

	t.Run("delete without product id", func(t *testing.T) {
		w := do(t, r, http.MethodDelete, "/v1/cart/items", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestCartSummaryEndpoints(t *testing.T) {
	r := testRouter(t)
	do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "2"})
	do(t, r, http.MethodPost, "/v1/cart/items", gin.H{"productId": "2"})

	t.Run("totals reflect snapshot prices", func(t *testing.T) {
		v := decodeCart(t, do(t, r, http.MethodGet, "/v1/cart", nil))
		if v.Totals.Subtotal < 49.97 || v.Totals.Subtotal > 49.99 {
			t.Fatalf("subtotal = %v, want ~49.98", v.Totals.Subtotal)
		}
		if v.Totals.Shipping != 9.99 {
			t.Fatalf("shipping = %v, want 9.99", v.Totals.Shipping)
		}
	})

	t.Run("count distinguishes variants", func(t *testing.T) {
		var resp struct {
			Count int `json:"count"`
		}
		w := do(t, r, http.MethodGet, "/v1/cart/count?productId=2", nil)
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Count != 2 {
			t.Fatalf("count = %d, want 2", resp.Count)
		}
		w = do(t, r, http.MethodGet, "/v1/cart/count?productId=2&size=M", nil)
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Count != 0 {
			t.Fatalf("variant count = %d, want 0", resp.Count)
		}
	})

	t.Run("clear empties the cart", func(t *testing.T) {
		v := decodeCart(t, do(t, r, http.MethodPost, "/v1/cart/clear", nil))
		if len(v.Items) != 0 || v.TotalItems != 0 {
			t.Fatalf("expected empty cart, got %+v", v)
		}
	})
}

func TestVisibilityEndpoints(t *testing.T) {
	r := testRouter(t)

	v := decodeCart(t, do(t, r, http.MethodPut, "/v1/cart/open", gin.H{"open": true}))
	if !v.IsOpen {
		t.Fatal("expected open")
	}
	v = decodeCart(t, do(t, r, http.MethodPost, "/v1/cart/toggle", nil))
	if v.IsOpen {
		t.Fatal("expected closed after toggle")
	}

	w := do(t, r, http.MethodPut, "/v1/cart/open", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	r := testRouter(t)

	t.Run("list with filters and sort", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/v1/products?category=Electronics&category=Clothing&sort=price-low", nil)
		var resp struct {
			Products []domain.Product `json:"products"`
			Count    int              `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Count != 2 || resp.Products[0].ID != "2" {
			t.Fatalf("unexpected listing: %+v", resp)
		}
	})

	t.Run("bad price param", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/v1/products?min_price=abc", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/v1/products/1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		w = do(t, r, http.MethodGet, "/v1/products/nope", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}
