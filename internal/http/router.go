// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"transferquote/internal/http/handlers"
	"transferquote/internal/http/middleware"
	"transferquote/internal/modules/pricing"
	"transferquote/internal/modules/quote"
	"transferquote/internal/observability"
)

type RouterDeps struct {
	Quotes    *quote.Service
	Snapshots pricing.SnapshotProvider
	Metrics   *observability.Metrics
	Logger    zerolog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	// Logging wraps Recovery so a recovered panic is still logged and measured as a 500.
	r.Use(middleware.Logging(deps.Logger, deps.Metrics), middleware.Recovery(deps.Logger))

	quoteHandler := handlers.NewQuoteHandler(deps.Quotes)
	r.POST("/api/quotes", quoteHandler.Create)
	r.GET("/api/quotes/:id", quoteHandler.Get)
	r.POST("/api/quotes/:id/consume", quoteHandler.Consume)

	catalogHandler := handlers.NewCatalogHandler(deps.Snapshots)
	r.GET("/api/regions/containing", catalogHandler.RegionsContaining)
	r.GET("/api/fixed-prices", catalogHandler.FixedPrices)

	r.GET("/health", func(c *gin.Context) {
		if deps.Snapshots == nil || deps.Snapshots.Current() == nil {
			c.String(http.StatusServiceUnavailable, "catalog not loaded")
			return
		}
		c.String(http.StatusOK, "OK")
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	return r
}
