package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/trendysync/internal/server/storage"
)

// GetIdempotentResponse returns the cached response for the key
func (s *Storage) GetIdempotentResponse(ctx context.Context, userID, route, key string) (*storage.IdempotentResponse, error) {
	query := `
		SELECT user_id, route, key, status_code, body, created_at
		FROM idempotency_keys
		WHERE user_id = ? AND route = ? AND key = ?
	`

	resp := &storage.IdempotentResponse{}
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, userID, route, key).Scan(
		&resp.UserID,
		&resp.Route,
		&resp.Key,
		&resp.StatusCode,
		&resp.Body,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrIdempotencyKeyNotFound
		}
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	resp.CreatedAt = fromMillis(createdAt)
	return resp, nil
}

// SaveIdempotentResponse stores the response; the first stored response wins
func (s *Storage) SaveIdempotentResponse(ctx context.Context, resp *storage.IdempotentResponse) error {
	query := `
		INSERT INTO idempotency_keys (user_id, route, key, status_code, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, route, key) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		resp.UserID,
		resp.Route,
		resp.Key,
		resp.StatusCode,
		resp.Body,
		millis(resp.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}
