package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
)

// CreateEntity inserts the record or replaces the user's own record with the same id
func (s *Storage) CreateEntity(ctx context.Context, rec *storage.EntityRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := millis(s.now())
		query := `
			INSERT INTO entities (kind, id, user_id, parent_id, natural_key, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(kind, id) DO UPDATE SET
				parent_id = excluded.parent_id,
				natural_key = excluded.natural_key,
				data = excluded.data,
				updated_at = excluded.updated_at
			WHERE entities.user_id = excluded.user_id
		`

		result, err := tx.ExecContext(ctx, query,
			rec.Kind,
			rec.ID,
			rec.UserID,
			nullString(rec.ParentID),
			nullString(rec.NaturalKey),
			[]byte(rec.Data),
			now,
			now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrConflict
			}
			return fmt.Errorf("failed to insert %s: %w", rec.Kind, err)
		}

		// Запись с таким id принадлежит другому пользователю
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return storage.ErrConflict
		}

		return appendChange(ctx, tx, rec.UserID, rec.Kind, rec.ID, models.OperationCreate, rec.Data, now)
	})
}

// UpdateEntity replaces an existing record
func (s *Storage) UpdateEntity(ctx context.Context, rec *storage.EntityRecord) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := millis(s.now())
		query := `
			UPDATE entities
			SET parent_id = ?, natural_key = ?, data = ?, updated_at = ?
			WHERE kind = ? AND id = ? AND user_id = ?
		`

		result, err := tx.ExecContext(ctx, query,
			nullString(rec.ParentID),
			nullString(rec.NaturalKey),
			[]byte(rec.Data),
			now,
			rec.Kind,
			rec.ID,
			rec.UserID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrConflict
			}
			return fmt.Errorf("failed to update %s: %w", rec.Kind, err)
		}

		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return storage.ErrEntityNotFound
		}

		return appendChange(ctx, tx, rec.UserID, rec.Kind, rec.ID, models.OperationUpdate, rec.Data, now)
	})
}

// DeleteEntity removes the record and logs a delete change
func (s *Storage) DeleteEntity(ctx context.Context, userID string, kind models.EntityType, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM entities WHERE kind = ? AND id = ? AND user_id = ?",
			kind, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", kind, err)
		}

		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return storage.ErrEntityNotFound
		}

		return appendChange(ctx, tx, userID, kind, id, models.OperationDelete, nil, millis(s.now()))
	})
}

// GetEntity returns the stored document
func (s *Storage) GetEntity(ctx context.Context, userID string, kind models.EntityType, id string) (json.RawMessage, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM entities WHERE kind = ? AND id = ? AND user_id = ?",
		kind, id, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return data, nil
}

// ListEntities returns documents ordered by creation
func (s *Storage) ListEntities(ctx context.Context, userID string, kind models.EntityType, filter storage.ListFilter) ([]json.RawMessage, error) {
	query := "SELECT data FROM entities WHERE user_id = ? AND kind = ?"
	args := []any{userID, kind}

	if filter.ParentID != "" {
		query += " AND parent_id = ?"
		args = append(args, filter.ParentID)
	}
	query += " ORDER BY created_at, id"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		docs = append(docs, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", kind, err)
	}

	return docs, nil
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
