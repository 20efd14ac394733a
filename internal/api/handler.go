package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/internal/service"
	"github.com/nitesh/newsmap/pkg/models"
)

type Handler struct {
	svc       *service.Service
	publicURL string
}

// NewHandler serves svc. publicURL, when set, is the base of the shareable
// link returned with each stored record.
func NewHandler(svc *service.Service, publicURL string) *Handler {
	return &Handler{svc: svc, publicURL: publicURL}
}

// recordLink is the public URL at which code's metadata can be fetched.
func (h *Handler) recordLink(code string) string {
	return h.publicURL + "/data/" + url.PathEscape(code)
}

// Submit: POST /data/:code
// Body: {"newsUrl": "...", "location": "...", "category": "..."}
// The stored record is echoed back with its shareable link in Content-Location.
func (h *Handler) Submit(c *gin.Context) {
	code := c.Param("code")
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	ctx := c.Request.Context()

	rec, err := h.svc.Submit(ctx, code, sub)
	switch {
	case err == nil:
		if h.publicURL != "" {
			c.Header("Content-Location", h.recordLink(code))
		}
		c.JSON(http.StatusOK, rec)
	case errors.Is(err, service.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.Ctx(ctx).Error().Err(err).Str("code", code).Msg("Submission failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed: " + err.Error()})
	}
}

// GetByCode: GET /data/:code
// Responds with the metadata object, or 404 with no body.
func (h *Handler) GetByCode(c *gin.Context) {
	ctx := c.Request.Context()
	md, err := h.svc.GetByCode(ctx, c.Param("code"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, md)
	case errors.Is(err, service.ErrNotFound):
		c.Status(http.StatusNotFound)
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("Lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// List: GET /data?category=sports
// Omitted, empty, or "all" lists every record; any other value must match the
// stored category exactly. 404 with no body when empty.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	recs, err := h.svc.List(ctx, models.Category(c.Query("category")))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, recs)
	case errors.Is(err, service.ErrNoData):
		c.Status(http.StatusNotFound)
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("Listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Hotspots: GET /hotspots?category=sports
func (h *Handler) Hotspots(c *gin.Context) {
	ctx := c.Request.Context()
	hs, err := h.svc.Hotspots(ctx, models.Category(c.Query("category")))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, hs)
	case errors.Is(err, service.ErrNoData):
		c.Status(http.StatusNotFound)
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("Hotspot aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Health: GET /health
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	components := gin.H{}
	for name, err := range h.svc.Health(c.Request.Context()) {
		if err != nil {
			status = http.StatusServiceUnavailable
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "components": components})
}
