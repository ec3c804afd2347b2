package http

import (
	"log/slog"

	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(ch *CartHandler, ph *CatalogHandler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware(), middleware.Logging(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/products", ph.ListProducts)
		v1.GET("/products/:id", ph.GetProduct)

		v1.GET("/cart", ch.GetCart)
		v1.GET("/cart/count", ch.GetItemCount)
		v1.POST("/cart/items", ch.AddItem)
		v1.PATCH("/cart/items", ch.UpdateQuantity)
		v1.DELETE("/cart/items", ch.RemoveItem)
		v1.POST("/cart/clear", ch.ClearCart)
		v1.PUT("/cart/open", ch.SetOpen)
		v1.POST("/cart/toggle", ch.Toggle)
	}

	return r
}
