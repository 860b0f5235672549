package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iudanet/trendysync/pkg/api"
)

// Signup регистрирует пользователя и сразу возвращает токены
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/api/v1/auth/signup",
		op:        "signup",
		body:      req,
		result:    &resp,
		anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя по email и паролю
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/api/v1/auth/login",
		op:        "login",
		body:      req,
		result:    &resp,
		anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов.
// Переданный refresh token после этого недействителен.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/api/v1/auth/refresh",
		op:        "refresh",
		body:      api.RefreshRequest{RefreshToken: refreshToken},
		result:    &resp,
		anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает все refresh tokens пользователя на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/logout",
		op:     "logout",
		token:  accessToken,
	})
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}
