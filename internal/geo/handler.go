package geo

import (
	"github.com/gin-gonic/gin"

	"monfily_backend/platform/httpkit"
)

// LocaleResponse is the public payload for the locale endpoint.
type LocaleResponse struct {
	Language    string  `json:"language"`
	CountryCode *string `json:"countryCode"`
}

// Handler serves the geo/locale endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates the geo handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the geo routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/locale", h.GetLocale)
}

// GetLocale resolves the caller's country and language from their IP, using
// the Accept-Language header as the fallback signal.
func (h *Handler) GetLocale(c *gin.Context) {
	loc := h.svc.ResolveLocation(c.Request.Context(), c.ClientIP(), c.GetHeader("Accept-Language"))
	httpkit.OK(c, LocaleResponse{
		Language:    loc.Language,
		CountryCode: loc.CountryCode,
	})
}
