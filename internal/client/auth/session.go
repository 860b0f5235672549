package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/validation"
	pkgapi "github.com/iudanet/trendysync/pkg/api"
)

// DefaultRefreshMargin access token обновляется, если до истечения осталось меньше
const DefaultRefreshMargin = 30 * time.Second

// ErrSessionExpired refresh token отклонён сервером, нужен повторный login
var ErrSessionExpired = fmt.Errorf("%w: session expired, please log in again", api.ErrNoToken)

// Compile-time checks
var (
	_ Service         = (*Session)(nil)
	_ api.TokenSource = (*Session)(nil)
)

// Session хранит токены в AuthStorage и обновляет access token по истечении
type Session struct {
	api    API
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
	margin time.Duration
	mu     sync.Mutex
}

// NewSession создает сессию поверх auth API и хранилища токенов
func NewSession(authAPI API, store storage.AuthStorage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		api:    authAPI,
		store:  store,
		logger: logger,
		now:    time.Now,
		margin: DefaultRefreshMargin,
	}
}

// Register регистрирует нового пользователя
func (s *Session) Register(ctx context.Context, email, password string) (*Status, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.api.Signup(ctx, pkgapi.SignupRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, resp)
}

// Login выполняет аутентификацию пользователя
func (s *Session) Login(ctx context.Context, email, password string) (*Status, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	resp, err := s.api.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, resp)
}

// Logout выполняет выход из системы.
// Локальные токены удаляются, даже если сервер недоступен.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if err := s.api.Logout(ctx, data.AccessToken); err != nil {
		s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}

	s.logger.InfoContext(ctx, "logged out", slog.String("user_id", data.UserID))
	return nil
}

// Status возвращает сохранённую сессию
func (s *Session) Status(ctx context.Context) (*Status, error) {
	data, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return &Status{}, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return statusOf(data), nil
}

// AccessToken implements api.TokenSource
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return "", api.ErrNoToken
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	if s.now().Add(s.margin).Before(data.ExpiresAt) {
		return data.AccessToken, nil
	}

	s.logger.DebugContext(ctx, "access token expired, refreshing", slog.Time("expires_at", data.ExpiresAt))

	resp, err := s.api.Refresh(ctx, data.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			if delErr := s.store.DeleteAuth(ctx); delErr != nil && !errors.Is(delErr, storage.ErrAuthNotFound) {
				s.logger.WarnContext(ctx, "failed to drop expired session", slog.Any("error", delErr))
			}
			return "", ErrSessionExpired
		}
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	if _, err := s.save(ctx, resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// save сохраняет выданную пару токенов. Вызывается под s.mu.
func (s *Session) save(ctx context.Context, resp *pkgapi.AuthResponse) (*Status, error) {
	expiresAt, ok := tokenExpiry(resp.AccessToken)
	if !ok {
		expiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	data := &storage.AuthData{
		ExpiresAt:    expiresAt,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if err := s.store.SaveAuth(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return statusOf(data), nil
}

// tokenExpiry читает exp из access token без проверки подписи
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func statusOf(data *storage.AuthData) *Status {
	return &Status{
		ExpiresAt:     data.ExpiresAt,
		UserID:        data.UserID,
		Email:         data.Email,
		Authenticated: true,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
