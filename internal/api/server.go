package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerOptions tunes the router.
type ServerOptions struct {
	CORSOrigin string
}

// NewServer builds the router with middleware and all routes.
func NewServer(h *Handler, opts ServerOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog())
	r.Use(Metrics())
	r.Use(CORS(opts.CORSOrigin))

	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.POST("/data/:code", h.Submit)
	r.GET("/data/:code", h.GetByCode)
	r.GET("/data", h.List)
	r.GET("/hotspots", h.Hotspots)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Timeouts for the http.Server wrapping the router.
const (
	ReadTimeout  = 30 * time.Second
	WriteTimeout = 30 * time.Second
	IdleTimeout  = 120 * time.Second
)
