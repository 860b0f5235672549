package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/trendysync/internal/server/handlers"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/pkg/api"
)

// TokenValidator проверяет access token
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Missing Authorization header")
				handlers.WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				handlers.WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid token format")
				return
			}

			claims, err := validator.ValidateAccessToken(parts[1])
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid access token", "error", err)
				handlers.WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid or expired token")
				return
			}

			ctx := handlers.WithUser(r.Context(), claims.UserID, claims.Email)

			logger.DebugContext(ctx, "User authenticated", "user_id", claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
