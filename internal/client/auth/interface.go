package auth

import (
	"context"
	"time"

	pkgapi "github.com/iudanet/trendysync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service manages the API session of the local user: it signs in,
// keeps the access token fresh and signs out.
type Service interface {
	// Register создает учётную запись и сохраняет выданные токены
	Register(ctx context.Context, email, password string) (*Status, error)

	// Login выполняет аутентификацию и сохраняет выданные токены
	Login(ctx context.Context, email, password string) (*Status, error)

	// Logout отзывает токены на сервере (best effort) и удаляет их локально
	Logout(ctx context.Context) error

	// Status описывает сохранённую сессию без обращения к серверу
	Status(ctx context.Context) (*Status, error)

	// AccessToken возвращает действующий access token, при необходимости
	// обновляя его через refresh token
	AccessToken(ctx context.Context) (string, error)
}

//go:generate moq -out api_mock.go . API

// API auth endpoints of the backend
type API interface {
	Signup(ctx context.Context, req pkgapi.SignupRequest) (*pkgapi.AuthResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Status сохранённая сессия
type Status struct {
	ExpiresAt     time.Time
	UserID        string
	Email         string
	Authenticated bool
}
