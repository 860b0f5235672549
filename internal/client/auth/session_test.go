package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
	pkgapi "github.com/iudanet/trendysync/pkg/api"
)

// memoryAuthStorage implements storage.AuthStorage for testing
type memoryAuthStorage struct {
	data    *storage.AuthData
	saveErr error
}

func (m *memoryAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *auth
	m.data = &cp
	return nil
}

func (m *memoryAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *m.data
	return &cp, nil
}

func (m *memoryAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// signedToken access token с заданным exp; подпись клиенту не важна
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return s
}

func authResponse(access, refresh string) *pkgapi.AuthResponse {
	return &pkgapi.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    900,
		User:         models.User{ID: "user-1", Email: "user@example.com"},
	}
}

func newTestSession(apiMock *APIMock, store *memoryAuthStorage) *Session {
	s := NewSession(apiMock, store, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestSession_Login(t *testing.T) {
	exp := testNow.Add(15 * time.Minute)
	apiMock := &APIMock{
		LoginFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
			return authResponse(signedToken(t, exp), "refresh-1"), nil
		},
	}
	store := &memoryAuthStorage{}
	s := newTestSession(apiMock, store)

	status, err := s.Login(context.Background(), " User@Example.com ", "secret1")
	require.NoError(t, err)

	require.Len(t, apiMock.LoginCalls(), 1)
	assert.Equal(t, "user@example.com", apiMock.LoginCalls()[0].Req.Email)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "user-1", status.UserID)
	assert.True(t, status.ExpiresAt.Equal(exp))
	require.NotNil(t, store.data)
	assert.Equal(t, "refresh-1", store.data.RefreshToken)
}

func TestSession_Login_Errors(t *testing.T) {
	apiMock := &APIMock{
		LoginFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
			return nil, &api.HTTPError{StatusCode: http.StatusUnauthorized, Message: "invalid credentials"}
		},
	}
	store := &memoryAuthStorage{}
	s := newTestSession(apiMock, store)

	_, err := s.Login(context.Background(), "", "secret1")
	require.Error(t, err)
	assert.Empty(t, apiMock.LoginCalls())

	_, err = s.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Nil(t, store.data)
}

func TestSession_Register(t *testing.T) {
	apiMock := &APIMock{
		SignupFunc: func(ctx context.Context, req pkgapi.SignupRequest) (*pkgapi.AuthResponse, error) {
			// Токен без exp: время истечения берётся из expires_in
			return authResponse("opaque-token", "refresh-1"), nil
		},
	}
	store := &memoryAuthStorage{}
	s := newTestSession(apiMock, store)

	status, err := s.Register(context.Background(), "new@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, status.ExpiresAt.Equal(testNow.Add(900*time.Second)))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "bad email", email: "nope", password: "secret1"},
		{name: "short password", email: "new@example.com", password: "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.email, tt.password)
			assert.Error(t, err)
		})
	}
	assert.Len(t, apiMock.SignupCalls(), 1)
}

func TestSession_AccessToken_Valid(t *testing.T) {
	apiMock := &APIMock{}
	store := &memoryAuthStorage{data: &storage.AuthData{
		AccessToken:  "current",
		RefreshToken: "refresh-1",
		ExpiresAt:    testNow.Add(10 * time.Minute),
	}}
	s := newTestSession(apiMock, store)

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", token)
	assert.Empty(t, apiMock.RefreshCalls())
}

func TestSession_AccessToken_RefreshesNearExpiry(t *testing.T) {
	fresh := signedToken(t, testNow.Add(15*time.Minute))
	apiMock := &APIMock{
		RefreshFunc: func(ctx context.Context, refreshToken string) (*pkgapi.AuthResponse, error) {
			return authResponse(fresh, "refresh-2"), nil
		},
	}
	store := &memoryAuthStorage{data: &storage.AuthData{
		AccessToken:  "stale",
		RefreshToken: "refresh-1",
		ExpiresAt:    testNow.Add(10 * time.Second),
	}}
	s := newTestSession(apiMock, store)

	token, err := s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, token)

	require.Len(t, apiMock.RefreshCalls(), 1)
	assert.Equal(t, "refresh-1", apiMock.RefreshCalls()[0].RefreshToken)
	assert.Equal(t, "refresh-2", store.data.RefreshToken)

	// Второй вызов использует сохранённый токен
	_, err = s.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Len(t, apiMock.RefreshCalls(), 1)
}

func TestSession_AccessToken_Errors(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		s := newTestSession(&APIMock{}, &memoryAuthStorage{})
		_, err := s.AccessToken(context.Background())
		assert.ErrorIs(t, err, api.ErrNoToken)
	})

	t.Run("refresh rejected drops session", func(t *testing.T) {
		apiMock := &APIMock{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*pkgapi.AuthResponse, error) {
				return nil, &api.HTTPError{StatusCode: http.StatusUnauthorized}
			},
		}
		store := &memoryAuthStorage{data: &storage.AuthData{RefreshToken: "old", ExpiresAt: testNow.Add(-time.Minute)}}
		s := newTestSession(apiMock, store)

		_, err := s.AccessToken(context.Background())
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.ErrorIs(t, err, api.ErrNoToken)
		assert.Nil(t, store.data)
	})

	t.Run("network failure keeps session", func(t *testing.T) {
		apiMock := &APIMock{
			RefreshFunc: func(ctx context.Context, refreshToken string) (*pkgapi.AuthResponse, error) {
				return nil, &api.NetworkError{Op: "refresh", Err: errors.New("connection refused")}
			},
		}
		store := &memoryAuthStorage{data: &storage.AuthData{RefreshToken: "old", ExpiresAt: testNow.Add(-time.Minute)}}
		s := newTestSession(apiMock, store)

		_, err := s.AccessToken(context.Background())
		var netErr *api.NetworkError
		assert.ErrorAs(t, err, &netErr)
		assert.NotNil(t, store.data)
	})
}

func TestSession_Logout(t *testing.T) {
	apiMock := &APIMock{
		LogoutFunc: func(ctx context.Context, accessToken string) error {
			return &api.NetworkError{Op: "logout", Err: errors.New("offline")}
		},
	}
	store := &memoryAuthStorage{data: &storage.AuthData{AccessToken: "current", UserID: "user-1"}}
	s := newTestSession(apiMock, store)

	// Сервер недоступен, но локальная сессия всё равно удаляется
	require.NoError(t, s.Logout(context.Background()))
	require.Len(t, apiMock.LogoutCalls(), 1)
	assert.Equal(t, "current", apiMock.LogoutCalls()[0].AccessToken)
	assert.Nil(t, store.data)

	// Повторный logout без сессии не ошибка
	require.NoError(t, s.Logout(context.Background()))
	assert.Len(t, apiMock.LogoutCalls(), 1)

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
}

func TestTokenExpiry(t *testing.T) {
	exp := testNow.Add(time.Hour)

	got, ok := tokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = tokenExpiry("not-a-jwt")
	assert.False(t, ok)
}
