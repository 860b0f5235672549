package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*storage.User // email -> User
	createError error
	getError    error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*storage.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *storage.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// mockTokenStorage in-memory TokenStorage keyed by raw token
type mockTokenStorage struct {
	tokens       map[string]*storage.RefreshToken
	saveError    error
	consumeError error
	deleteError  error
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*storage.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *storage.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenStorage) ConsumeRefreshToken(ctx context.Context, token string) (*storage.RefreshToken, error) {
	if m.consumeError != nil {
		return nil, m.consumeError
	}
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	return rt, nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	n := 0
	for token, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, token)
			n++
		}
	}
	return n, nil
}

func (m *mockTokenStorage) PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for token, rt := range m.tokens {
		if rt.ExpiresAt.Before(now) {
			delete(m.tokens, token)
			n++
		}
	}
	return n, nil
}

type authFixture struct {
	handler *AuthHandler
	users   *mockUserStorage
	tokens  *mockTokenStorage
	jwt     *jwt.Service
}

func setupAuthHandler(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newMockUserStorage(),
		tokens: newMockTokenStorage(),
		jwt:    jwt.NewService("test-secret-key-0123", 15*time.Minute, 24*time.Hour),
	}
	f.handler = NewAuthHandler(nil, f.users, f.tokens, f.jwt)
	f.handler.bcryptCost = bcrypt.MinCost
	return f
}

func (f *authFixture) addUser(t *testing.T, email, password string) *storage.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &storage.User{
		PasswordHash: hash,
		User:         models.User{ID: "user-" + email, Email: email},
	}
	f.users.users[email] = user
	return user
}

func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) api.ProblemDetails {
	t.Helper()
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	var p api.ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	f := setupAuthHandler(t)

	w := httptest.NewRecorder()
	f.handler.Signup(w, postJSON(t, "/api/v1/auth/signup", api.SignupRequest{
		Email:    "  Alice@Example.com ",
		Password: "secret1",
	}))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)

	claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	stored := f.users.users["alice@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("secret1")))
	assert.Contains(t, f.tokens.tokens, resp.RefreshToken)
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		setup      func(f *authFixture)
		body       any
		name       string
		wantType   string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
			wantType:   api.ProblemTypeBadRequest,
		},
		{
			name:       "invalid email",
			body:       api.SignupRequest{Email: "nope", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantType:   api.ProblemTypeValidation,
		},
		{
			name:       "short password",
			body:       api.SignupRequest{Email: "a@example.com", Password: "123"},
			wantStatus: http.StatusBadRequest,
			wantType:   api.ProblemTypeValidation,
		},
		{
			name:       "duplicate email",
			setup:      func(f *authFixture) { f.addUser(t, "a@example.com", "secret1") },
			body:       api.SignupRequest{Email: "a@example.com", Password: "secret1"},
			wantStatus: http.StatusConflict,
			wantType:   api.ProblemTypeConflict,
		},
		{
			name:       "storage error",
			setup:      func(f *authFixture) { f.users.createError = errors.New("disk full") },
			body:       api.SignupRequest{Email: "a@example.com", Password: "secret1"},
			wantStatus: http.StatusInternalServerError,
			wantType:   api.ProblemTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthHandler(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			w := httptest.NewRecorder()
			f.handler.Signup(w, postJSON(t, "/api/v1/auth/signup", tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantStatus, p.Status)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		req        api.LoginRequest
		wantStatus int
	}{
		{name: "success", req: api.LoginRequest{Email: "bob@example.com", Password: "hunter22"}, wantStatus: http.StatusOK},
		{name: "case insensitive email", req: api.LoginRequest{Email: "BOB@example.com", Password: "hunter22"}, wantStatus: http.StatusOK},
		{name: "wrong password", req: api.LoginRequest{Email: "bob@example.com", Password: "hunter23"}, wantStatus: http.StatusUnauthorized},
		{name: "unknown user", req: api.LoginRequest{Email: "eve@example.com", Password: "hunter22"}, wantStatus: http.StatusUnauthorized},
		{name: "empty fields", req: api.LoginRequest{}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthHandler(t)
			user := f.addUser(t, "bob@example.com", "hunter22")

			w := httptest.NewRecorder()
			f.handler.Login(w, postJSON(t, "/api/v1/auth/login", tt.req))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Empty(t, f.tokens.tokens)
				return
			}

			var resp api.AuthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, user.ID, resp.User.ID)
			assert.Len(t, f.tokens.tokens, 1)
		})
	}
}

func TestAuthHandler_Login_SaveTokenError(t *testing.T) {
	f := setupAuthHandler(t)
	f.addUser(t, "bob@example.com", "hunter22")
	f.tokens.saveError = errors.New("db locked")

	w := httptest.NewRecorder()
	f.handler.Login(w, postJSON(t, "/api/v1/auth/login", api.LoginRequest{Email: "bob@example.com", Password: "hunter22"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db locked")
}

func TestAuthHandler_Refresh_RotatesToken(t *testing.T) {
	f := setupAuthHandler(t)
	user := f.addUser(t, "bob@example.com", "hunter22")
	f.tokens.tokens["old"] = &storage.RefreshToken{
		Token:     "old",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	w := httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/api/v1/auth/refresh", api.RefreshRequest{RefreshToken: "old"}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEqual(t, "old", resp.RefreshToken)
	assert.NotContains(t, f.tokens.tokens, "old")
	assert.Contains(t, f.tokens.tokens, resp.RefreshToken)

	// Старый токен больше не принимается
	w = httptest.NewRecorder()
	f.handler.Refresh(w, postJSON(t, "/api/v1/auth/refresh", api.RefreshRequest{RefreshToken: "old"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_Errors(t *testing.T) {
	tests := []struct {
		setup      func(f *authFixture)
		name       string
		token      string
		wantStatus int
	}{
		{name: "empty token", token: "", wantStatus: http.StatusBadRequest},
		{name: "unknown token", token: "missing", wantStatus: http.StatusUnauthorized},
		{
			name:  "storage failure",
			token: "any",
			setup: func(f *authFixture) {
				f.tokens.consumeError = errors.New("db locked")
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:  "expired token",
			token: "expired",
			setup: func(f *authFixture) {
				f.tokens.tokens["expired"] = &storage.RefreshToken{
					Token:     "expired",
					UserID:    "user-x",
					ExpiresAt: time.Now().Add(-time.Minute),
				}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:  "user deleted",
			token: "orphan",
			setup: func(f *authFixture) {
				f.tokens.tokens["orphan"] = &storage.RefreshToken{
					Token:     "orphan",
					UserID:    "gone",
					ExpiresAt: time.Now().Add(time.Hour),
				}
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthHandler(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			w := httptest.NewRecorder()
			f.handler.Refresh(w, postJSON(t, "/api/v1/auth/refresh", api.RefreshRequest{RefreshToken: tt.token}))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	f := setupAuthHandler(t)
	user := f.addUser(t, "bob@example.com", "hunter22")
	f.tokens.tokens["a"] = &storage.RefreshToken{Token: "a", UserID: user.ID}
	f.tokens.tokens["b"] = &storage.RefreshToken{Token: "b", UserID: "someone-else"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(WithUser(req.Context(), user.ID, user.Email))

	w := httptest.NewRecorder()
	f.handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, f.tokens.tokens, "a")
	assert.Contains(t, f.tokens.tokens, "b")
}

func TestAuthHandler_Logout_Errors(t *testing.T) {
	f := setupAuthHandler(t)

	w := httptest.NewRecorder()
	f.handler.Logout(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.tokens.deleteError = errors.New("boom")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(WithUser(req.Context(), "user-1", "a@example.com"))
	w = httptest.NewRecorder()
	f.handler.Logout(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
