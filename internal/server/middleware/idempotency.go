package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/trendysync/internal/server/handlers"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/pkg/api"
)

const (
	// IdempotencyKeyHeader заголовок с ключом идемпотентности
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader выставляется на ответах, взятых из кэша
	ReplayedHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 255
)

// Idempotency кэширует успешные ответы на POST/PUT/PATCH по ключу
// (пользователь, метод + шаблон маршрута, Idempotency-Key) и
// повторяет их без вызова handler. Должен стоять после AuthMiddleware
// внутри группы маршрутов, чтобы шаблон маршрута был известен.
func Idempotency(logger *slog.Logger, store storage.IdempotencyStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				handlers.WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "Idempotency-Key is too long")
				return
			}

			userID, ok := handlers.GetUserID(ctx)
			if !ok {
				handlers.WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized,
					"authentication required for idempotent requests")
				return
			}

			route := routeOf(r)

			cached, err := store.GetIdempotentResponse(ctx, userID, route, key)
			switch {
			case err == nil:
				logger.InfoContext(ctx, "replaying idempotent response",
					"key", key,
					"route", route,
					"status_code", cached.StatusCode)

				w.Header().Set(ReplayedHeader, "true")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(cached.StatusCode)
				_, _ = w.Write(cached.Body)
				return
			case !errors.Is(err, storage.ErrIdempotencyKeyNotFound):
				// Не блокируем запрос из-за ошибки кэша
				logger.ErrorContext(ctx, "failed to check idempotency key", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			var body bytes.Buffer
			wrapped := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			wrapped.Tee(&body)

			next.ServeHTTP(wrapped, r)

			status := wrapped.Status()
			if status < 200 || status >= 300 {
				return
			}

			err = store.SaveIdempotentResponse(ctx, &storage.IdempotentResponse{
				CreatedAt:  time.Now(),
				Key:        key,
				Route:      route,
				UserID:     userID,
				Body:       body.Bytes(),
				StatusCode: status,
			})
			if err != nil {
				logger.WarnContext(ctx, "failed to store idempotency key", "error", err, "key", key)
			}
		})
	}
}

// routeOf метод и шаблон маршрута chi, например "POST /api/v1/events"
func routeOf(r *http.Request) string {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			pattern = p
		}
	}
	return r.Method + " " + pattern
}
