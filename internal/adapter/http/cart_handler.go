package http

import (
	"net/http"

	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/catalog"
	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// CartHandler translates HTTP calls into cart store operations. The store
// itself never fails, so mutation endpoints only reject malformed input
// and the out-of-stock gate, which lives here by contract: the store
// trusts its callers to have checked stock already.
type CartHandler struct {
	store *usecase.CartStore
	cat   *catalog.Catalog
}

func NewCartHandler(store *usecase.CartStore, cat *catalog.Catalog) *CartHandler {
	return &CartHandler{store: store, cat: cat}
}

type addItemReq struct {
	ProductID string  `json:"productId" binding:"required"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
}

type updateQuantityReq struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  *int    `json:"quantity" binding:"required"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
}

type setOpenReq struct {
	Open *bool `json:"open" binding:"required"`
}

type cartView struct {
	Items      []domain.CartLine  `json:"items"`
	IsOpen     bool               `json:"isOpen"`
	TotalItems int                `json:"totalItems"`
	Totals     usecase.CartTotals `json:"totals"`
}

func (h *CartHandler) view() cartView {
	snap := h.store.Snapshot()
	items := snap.Items
	if items == nil {
		items = []domain.CartLine{}
	}
	return cartView{
		Items:      items,
		IsOpen:     snap.IsOpen,
		TotalItems: h.store.TotalItems(),
		Totals:     h.store.Totals(),
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	p, ok := h.cat.ByID(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}
	if !p.InStock {
		c.JSON(http.StatusConflict, gin.H{"error": "out_of_stock"})
		return
	}
	h.store.AddItem(p, domain.Selection{Color: req.Color, Size: req.Size})
	middleware.CartMutations.WithLabelValues("add").Inc()
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.store.UpdateQuantity(req.ProductID, *req.Quantity, domain.Selection{Color: req.Color, Size: req.Size})
	middleware.CartMutations.WithLabelValues("update_quantity").Inc()
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := c.GetQuery("productId")
	if !ok || productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.store.RemoveItem(productID, selectionFromQuery(c))
	middleware.CartMutations.WithLabelValues("remove").Inc()
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	h.store.Clear()
	middleware.CartMutations.WithLabelValues("clear").Inc()
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) GetItemCount(c *gin.Context) {
	productID, ok := c.GetQuery("productId")
	if !ok || productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	n := h.store.ItemCount(productID, selectionFromQuery(c))
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *CartHandler) SetOpen(c *gin.Context) {
	var req setOpenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	h.store.SetOpen(*req.Open)
	c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) Toggle(c *gin.Context) {
	h.store.Toggle()
	c.JSON(http.StatusOK, h.view())
}

// selectionFromQuery distinguishes an absent variant param from an empty
// one: ?color= selects the empty-string color, no param selects nothing.
func selectionFromQuery(c *gin.Context) domain.Selection {
	var sel domain.Selection
	if v, ok := c.GetQuery("color"); ok {
		sel.Color = &v
	}
	if v, ok := c.GetQuery("size"); ok {
		sel.Size = &v
	}
	return sel
}
