// Package intake provides the lead-intake bounded context module.
package intake

import (
	"monfily_backend/internal/email"
	"monfily_backend/internal/events"
	apphttp "monfily_backend/internal/http"
	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/handler"
	"monfily_backend/internal/intake/service"
	"monfily_backend/internal/throttle"
	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
	"monfily_backend/platform/validator"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module. limiter is the
// durable submission throttle; nil disables the server-side mirror.
func NewModule(sender email.Sender, cfg config.EmailConfig, translator *i18n.Translator, val *validator.Validator, limiter throttle.RateLimiter, bus events.Bus, log *logger.Logger) *Module {
	svc := service.New(sender, cfg.GetEmailReceiver(), translator, bus, log)
	return &Module{
		handler: handler.New(svc, val, translator, limiter, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts intake routes. The contact route is engine-level and
// carries the stricter per-IP rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Engine, ctx.IntakeRateLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
