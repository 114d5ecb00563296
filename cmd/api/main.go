package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"monfily_backend/internal/email"
	"monfily_backend/internal/events"
	"monfily_backend/internal/geo"
	apphttp "monfily_backend/internal/http"
	"monfily_backend/internal/http/router"
	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake"
	"monfily_backend/internal/throttle"
	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
	"monfily_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	translator, err := i18n.New()
	if err != nil {
		log.Error("failed to load translation catalogs", "error", err)
		panic("failed to load translation catalogs: " + err.Error())
	}

	sender, err := email.NewSender(cfg, log)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	limiter, closeThrottle, err := initThrottle(cfg, log)
	if err != nil {
		log.Error("failed to initialize submission throttle", "error", err)
		panic("failed to initialize submission throttle: " + err.Error())
	}
	if closeThrottle != nil {
		defer closeThrottle()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	eventBus.Subscribe(events.LeadReceived{}.EventName(), events.HandlerFunc(func(_ context.Context, event events.Event) error {
		if e, ok := event.(events.LeadReceived); ok {
			log.Info("lead received", "email", e.Email, "country", e.Country, "budget", e.Budget)
		}
		return nil
	}))

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	geoModule := geo.NewModule(cfg, log)
	intakeModule := intake.NewModule(sender, cfg, translator, val, limiter, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			geoModule,
			intakeModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initThrottle picks the durable throttle backend: Redis when REDIS_URL is
// set, otherwise an embedded buntdb history file.
func initThrottle(cfg config.ThrottleConfig, log *logger.Logger) (throttle.RateLimiter, func(), error) {
	if url := cfg.GetRedisURL(); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(opts)
		log.Info("submission throttle backed by redis", "addr", opts.Addr)
		return throttle.NewRedisLimiter(client), func() { _ = client.Close() }, nil
	}

	store, err := throttle.NewBuntStore(cfg.GetHistoryPath())
	if err != nil {
		return nil, nil, err
	}
	log.Info("submission throttle backed by local history", "path", cfg.GetHistoryPath())
	return throttle.NewLocalLimiter(store), func() { _ = store.Close() }, nil
}
