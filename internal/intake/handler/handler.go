// Package handler exposes the public contact intake endpoint.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/service"
	"monfily_backend/internal/intake/transport"
	"monfily_backend/internal/throttle"
	"monfily_backend/platform/httpkit"
	"monfily_backend/platform/logger"
	"monfily_backend/platform/validator"
)

const cookiePrefix = "sent_"

// Handler handles the contact form submission endpoint.
type Handler struct {
	svc        *service.Service
	val        *validator.Validator
	translator *i18n.Translator
	limiter    throttle.RateLimiter
	log        *logger.Logger
}

// New creates the intake handler. limiter is the durable server-side mirror
// of the client's advisory throttle; nil disables it.
func New(svc *service.Service, val *validator.Validator, translator *i18n.Translator, limiter throttle.RateLimiter, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, translator: translator, limiter: limiter, log: log}
}

// RegisterRoutes mounts the intake route on the engine. The route lives at
// /api/contact (outside /api/v1) to stay compatible with the deployed form.
func (h *Handler) RegisterRoutes(engine *gin.Engine, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, h.Submit)
	engine.POST("/api/contact", handlers...)
}

// Submit processes a lead submission: cookie throttle, validation, bilingual
// notification dispatch, cooldown cookie.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.LeadSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if req.Language == "" {
		req.Language = h.translator.Negotiate(c.GetHeader("Accept-Language"))
	} else {
		req.Language = i18n.FromLocale(req.Language)
	}
	lang := req.Language

	// Secondary throttle: a cooldown cookie from a previous successful send
	// short-circuits before the validator runs.
	cookieName := cookiePrefix + throttle.SanitizeEmailKey(req.Email)
	if _, err := c.Cookie(cookieName); err == nil {
		httpkit.Error(c, http.StatusTooManyRequests, h.translator.T(lang, "throttle.email_cooldown"), nil)
		return
	}

	// Durable throttle keyed on the caller's address, mirroring the
	// client-side history guard.
	if h.limiter != nil {
		decision, err := h.limiter.CanSubmit(c.Request.Context(), c.ClientIP(), req.Email, time.Now())
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		if !decision.Allowed {
			if h.log != nil {
				h.log.ThrottleEvent(c.ClientIP(), string(decision.Reason))
			}
			httpkit.Error(c, http.StatusTooManyRequests, h.translator.T(lang, "throttle."+string(decision.Reason)), nil)
			return
		}
	}

	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Validation failed", validator.FieldErrors(err))
		return
	}

	if err := h.svc.Notify(c.Request.Context(), req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if h.limiter != nil {
		_ = h.limiter.RecordSuccess(c.Request.Context(), c.ClientIP(), req.Email, time.Now())
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookieName,
		strconv.FormatInt(time.Now().UnixMilli(), 10),
		int(throttle.EmailCooldown/time.Second),
		"/", "", false, true)

	httpkit.Message(c, h.translator.T(lang, "intake.success"))
}
