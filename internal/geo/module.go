// Package geo provides the visitor-locale bounded context module.
package geo

import (
	apphttp "monfily_backend/internal/http"
	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
)

// Module is the geo bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the geo module.
func NewModule(cfg config.GeoConfig, log *logger.Logger) *Module {
	svc := NewService(cfg, log)
	return &Module{
		handler: NewHandler(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "geo"
}

// Service returns the locale resolver for other modules.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts geo routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/geo"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
