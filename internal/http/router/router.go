// Package router builds the Gin engine and wires middleware and modules.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apphttp "monfily_backend/internal/http"
	"monfily_backend/platform/httpkit"
)

// New builds the engine from the app's dependencies and registers every
// module's routes.
func New(app *apphttp.App) *gin.Engine {
	if app.Config == nil {
		panic("router: nil config")
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(httpkit.Recovery(app.Logger))
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, httpkit.ErrorResponse{
			Message: "Method not allowed",
		})
	})

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ctx := &apphttp.RouterContext{
		Engine:            engine,
		V1:                engine.Group("/api/v1"),
		IntakeRateLimiter: httpkit.NewIntakeRateLimiter(app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		if app.Logger != nil {
			app.Logger.Info("module routes registered", "module", module.Name())
		}
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language"}
	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
		cfg.AllowCredentials = true
	}
	return cfg
}
