package http

import (
	"net/http"
	"strconv"

	"github.com/aq2208/storefront-api/internal/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// ListProducts supports ?q=, repeated ?category=, ?min_price=, ?max_price=,
// repeated ?rating= and ?sort=featured|price-low|price-high|rating|newest.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	f := catalog.Filter{
		Query:      c.Query("q"),
		Categories: c.QueryArray("category"),
		Sort:       c.DefaultQuery("sort", catalog.SortFeatured),
	}
	if v, ok := c.GetQuery("min_price"); ok {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		f.MinPrice = &p
	}
	if v, ok := c.GetQuery("max_price"); ok {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		f.MaxPrice = &p
	}
	for _, v := range c.QueryArray("rating") {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		f.MinRatings = append(f.MinRatings, r)
	}

	products := h.cat.List(f)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, ok := h.cat.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
