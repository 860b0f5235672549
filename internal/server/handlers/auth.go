package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/internal/validation"
	"github.com/iudanet/trendysync/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	jwt          *jwt.Service
	now          func() time.Time
	bcryptCost   int
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtService *jwt.Service) *AuthHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwt:          jwtService,
		now:          time.Now,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Signup обрабатывает POST /api/v1/auth/signup
// Регистрация нового пользователя, сразу выдаёт токены
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		internalError(w, r, h.logger, "failed to hash password", err)
		return
	}

	now := h.now()
	user := &storage.User{
		PasswordHash: hash,
		User: models.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("email", email))
			WriteProblem(w, r, http.StatusConflict, api.ProblemTypeConflict, "email already registered")
			return
		}
		internalError(w, r, h.logger, "failed to create user", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	h.issueTokens(w, r, &user.User, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, "email and password are required")
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found")
			WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid credentials")
			return
		}
		internalError(w, r, h.logger, "failed to get user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: wrong password", slog.String("user_id", user.ID))
		WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid credentials")
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	h.issueTokens(w, r, &user.User, http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Старый refresh token удаляется, выдаётся новая пара
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "refresh_token is required")
		return
	}

	// Токен одноразовый: удаляется до проверки срока
	stored, err := h.tokenStorage.ConsumeRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found or already used")
			WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid refresh token")
			return
		}
		internalError(w, r, h.logger, "failed to consume refresh token", err)
		return
	}

	if h.now().After(stored.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", stored.UserID))
		WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "refresh token expired")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "invalid refresh token")
			return
		}
		internalError(w, r, h.logger, "failed to get user", err)
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	h.issueTokens(w, r, &user.User, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Удаляет все refresh tokens пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "authentication required")
		return
	}

	deleted, err := h.tokenStorage.DeleteUserTokens(ctx, userID)
	if err != nil {
		internalError(w, r, h.logger, "failed to delete user tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deleted))

	w.WriteHeader(http.StatusNoContent)
}

// issueTokens генерирует access и refresh токены и отправляет AuthResponse
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User, statusCode int) {
	ctx := r.Context()

	accessToken, expiresIn, err := h.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		internalError(w, r, h.logger, "failed to generate access token", err)
		return
	}

	refreshToken, expiresAt, err := h.jwt.GenerateRefreshToken()
	if err != nil {
		internalError(w, r, h.logger, "failed to generate refresh token", err)
		return
	}

	token := &storage.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: h.now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		internalError(w, r, h.logger, "failed to save refresh token", err)
		return
	}

	SendJSON(w, h.logger, api.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         *user,
	}, statusCode)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
