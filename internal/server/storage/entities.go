package storage

import (
	"context"
	"encoding/json"

	"github.com/iudanet/trendysync/internal/models"
)

// EntityRecord одна сущность пользователя в виде JSON документа
type EntityRecord struct {
	Data       json.RawMessage
	Kind       models.EntityType
	ID         string
	UserID     string
	ParentID   string // event_type_id для событий и определений свойств
	NaturalKey string // пусто, если уникальность не требуется
}

// ListFilter ограничивает выборку ListEntities
type ListFilter struct {
	ParentID string
	Limit    int // 0 без ограничения
	Offset   int
}

// EntityStorage stores synced entities. Every write appends a matching
// entry to the user's changelog in the same transaction.
type EntityStorage interface {
	// CreateEntity inserts the record, or replaces it when the same user
	// already stored that id. Returns ErrConflict when the natural key is
	// taken by another entity or the id belongs to another user.
	CreateEntity(ctx context.Context, rec *EntityRecord) error

	// UpdateEntity replaces an existing record
	// Returns ErrEntityNotFound or ErrConflict
	UpdateEntity(ctx context.Context, rec *EntityRecord) error

	// DeleteEntity removes the record
	// Returns ErrEntityNotFound if it doesn't exist
	DeleteEntity(ctx context.Context, userID string, kind models.EntityType, id string) error

	// GetEntity returns the stored document
	// Returns ErrEntityNotFound if it doesn't exist
	GetEntity(ctx context.Context, userID string, kind models.EntityType, id string) (json.RawMessage, error)

	// ListEntities returns documents ordered by creation
	ListEntities(ctx context.Context, userID string, kind models.EntityType, filter ListFilter) ([]json.RawMessage, error)
}

// ChangeStorage reads the per-user changelog
type ChangeStorage interface {
	// GetChanges returns up to limit entries with id > since, ascending
	GetChanges(ctx context.Context, userID string, since int64, limit int) ([]models.ChangeEntry, error)

	// GetLatestCursor returns the highest changelog id of the user, 0 if none
	GetLatestCursor(ctx context.Context, userID string) (int64, error)
}
