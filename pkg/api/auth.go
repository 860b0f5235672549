package api

import "github.com/iudanet/trendysync/internal/models"

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest запрос на регистрацию нового пользователя
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse ответ на успешный вход
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`  // JWT access token
	RefreshToken string      `json:"refresh_token"` // refresh token
	User         models.User `json:"user"`
	ExpiresIn    int64       `json:"expires_in,omitempty"` // время жизни access token в секундах
}
