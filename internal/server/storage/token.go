package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RefreshToken выданный refresh token. В базе хранится только хэш Token.
type RefreshToken struct {
	ExpiresAt time.Time
	CreatedAt time.Time
	Token     string
	UserID    string
}

// TokenStorage refresh tokens: одноразовые, отзываются на logout
type TokenStorage interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// ConsumeRefreshToken атомарно удаляет токен и возвращает его запись.
	// Второй вызов с тем же токеном получает ErrTokenNotFound.
	ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error)

	// DeleteUserTokens отзывает все токены пользователя, возвращает их число
	DeleteUserTokens(ctx context.Context, userID string) (int, error)

	// PurgeExpiredTokens удаляет токены, истёкшие к моменту now
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

// HashToken ключ хранения refresh token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
