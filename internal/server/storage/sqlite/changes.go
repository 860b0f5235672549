package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iudanet/trendysync/internal/models"
)

// appendChange пишет запись changelog в той же транзакции, что и изменение
func appendChange(ctx context.Context, tx *sql.Tx, userID string, kind models.EntityType, id string, op models.Operation, data json.RawMessage, now int64) error {
	var deletedAt sql.NullInt64
	var payload []byte
	if op == models.OperationDelete {
		deletedAt = sql.NullInt64{Int64: now, Valid: true}
	} else {
		payload = data
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO change_log (user_id, entity_type, entity_id, operation, data, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, userID, kind, id, op, payload, now, deletedAt)
	if err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}
	return nil
}

// GetChanges returns up to limit entries with id > since
func (s *Storage) GetChanges(ctx context.Context, userID string, since int64, limit int) ([]models.ChangeEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, operation, data, created_at, deleted_at
		FROM change_log
		WHERE user_id = ? AND id > ?
		ORDER BY id
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	changes := make([]models.ChangeEntry, 0)
	for rows.Next() {
		var (
			c         models.ChangeEntry
			data      []byte
			createdAt int64
			deletedAt sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.EntityType, &c.EntityID, &c.Operation, &data, &createdAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}

		c.CreatedAt = fromMillis(createdAt)
		if len(data) > 0 {
			c.Data = data
		}
		if deletedAt.Valid {
			t := fromMillis(deletedAt.Int64)
			c.DeletedAt = &t
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating changes: %w", err)
	}

	return changes, nil
}

// GetLatestCursor returns the highest changelog id of the user
func (s *Storage) GetLatestCursor(ctx context.Context, userID string) (int64, error) {
	var cursor int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id), 0) FROM change_log WHERE user_id = ?",
		userID).Scan(&cursor)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest cursor: %w", err)
	}
	return cursor, nil
}
