package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/handlers"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/internal/server/middleware"
	"github.com/iudanet/trendysync/internal/server/storage"
)

// Options настройки HTTP слоя dev backend
type Options struct {
	Faults         *middleware.FaultInjector // nil: маршрут /debug/faults не регистрируется
	Version        string
	RateLimit      int // запросов на пользователя в RateWindow, 0 без ограничения
	AuthRateLimit  int // запросов на IP к signup/login/refresh в RateWindow
	RateWindow     time.Duration
	RequestTimeout time.Duration
}

// DefaultOptions лимиты по умолчанию
func DefaultOptions() Options {
	return Options{
		Version:        "dev",
		RateLimit:      600,
		AuthRateLimit:  20,
		RateWindow:     time.Minute,
		RequestTimeout: 30 * time.Second,
	}
}

// Router HTTP handler dev backend
type Router struct {
	http.Handler
	limiters []*middleware.RateLimiter
}

// Close останавливает фоновые goroutine rate limiter'ов
func (rt *Router) Close() {
	for _, l := range rt.limiters {
		l.Stop()
	}
}

// NewRouter собирает маршруты trendy API поверх хранилища
func NewRouter(logger *slog.Logger, store storage.Storage, jwtService *jwt.Service, opts Options) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rt := &Router{}

	authHandler := handlers.NewAuthHandler(logger, store, store, jwtService)
	entityHandler := handlers.NewEntityHandler(logger, store)
	changesHandler := handlers.NewChangesHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, store, opts.Version)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", healthHandler.Health)

	if opts.Faults != nil {
		r.Get("/debug/faults", opts.Faults.Handler)
		r.Put("/debug/faults", opts.Faults.Handler)
	}

	authMW := middleware.AuthMiddleware(logger, jwtService)
	idempotencyMW := middleware.Idempotency(logger, store)

	r.Route("/api/v1", func(r chi.Router) {
		if opts.Faults != nil {
			r.Use(opts.Faults.Middleware)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.AuthRateLimit > 0 {
					limiter := middleware.NewRateLimiter(opts.AuthRateLimit, opts.RateWindow, logger)
					rt.limiters = append(rt.limiters, limiter)
					r.Use(limiter.Middleware)
				}
				r.Post("/signup", authHandler.Signup)
				r.Post("/login", authHandler.Login)
				r.Post("/refresh", authHandler.Refresh)
			})
			r.With(authMW).Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			if opts.RateLimit > 0 {
				limiter := middleware.NewRateLimiter(opts.RateLimit, opts.RateWindow, logger)
				rt.limiters = append(rt.limiters, limiter)
				r.Use(limiter.Middleware)
			}
			r.Use(idempotencyMW)

			mountEntity(r, "/event-types", models.EntityTypeEventType, entityHandler)
			mountEntity(r, "/geofences", models.EntityTypeGeofence, entityHandler)
			mountEntity(r, "/events", models.EntityTypeEvent, entityHandler)
			r.Post("/events/batch", entityHandler.BatchCreateEvents)

			r.Get("/event-types/{id}/properties", entityHandler.ListProperties)
			r.Post("/event-types/{id}/properties", entityHandler.CreateProperty)
			r.Get("/property-definitions/{id}", entityHandler.Get(models.EntityTypePropertyDefinition))
			r.Put("/property-definitions/{id}", entityHandler.Update(models.EntityTypePropertyDefinition))
			r.Delete("/property-definitions/{id}", entityHandler.Delete(models.EntityTypePropertyDefinition))

			r.Get("/changes", changesHandler.Changes)
			r.Get("/changes/latest-cursor", changesHandler.LatestCursor)
		})
	})

	rt.Handler = r
	return rt
}

func mountEntity(r chi.Router, path string, kind models.EntityType, h *handlers.EntityHandler) {
	r.Get(path, h.List(kind))
	r.Post(path, h.Create(kind))
	r.Get(path+"/{id}", h.Get(kind))
	r.Put(path+"/{id}", h.Update(kind))
	r.Delete(path+"/{id}", h.Delete(kind))
}
