package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/trendysync/internal/server/storage"
)

// SaveRefreshToken stores the hash of a freshly issued refresh token
func (s *Storage) SaveRefreshToken(ctx context.Context, token *storage.RefreshToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		storage.HashToken(token.Token), token.UserID, millis(token.ExpiresAt), millis(token.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken deletes the token and returns what was stored for it.
// Token in the result is the presented value, the table only has its hash.
func (s *Storage) ConsumeRefreshToken(ctx context.Context, token string) (*storage.RefreshToken, error) {
	rt := &storage.RefreshToken{Token: token}
	var expiresAt, createdAt int64

	err := s.db.QueryRowContext(ctx, `
		DELETE FROM refresh_tokens WHERE token_hash = ?
		RETURNING user_id, expires_at, created_at`,
		storage.HashToken(token),
	).Scan(&rt.UserID, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	rt.ExpiresAt = fromMillis(expiresAt)
	rt.CreatedAt = fromMillis(createdAt)
	return rt, nil
}

// DeleteUserTokens revokes every refresh token of the user
func (s *Storage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	return s.deleteTokens(ctx, "DELETE FROM refresh_tokens WHERE user_id = ?", userID)
}

// PurgeExpiredTokens drops tokens that expired before now
func (s *Storage) PurgeExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	return s.deleteTokens(ctx, "DELETE FROM refresh_tokens WHERE expires_at < ?", millis(now))
}

func (s *Storage) deleteTokens(ctx context.Context, query string, arg any) (int, error) {
	result, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
