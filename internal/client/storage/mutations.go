package storage

import (
	"context"

	"github.com/iudanet/trendysync/internal/models"
)

// MutationStore persists the queue of pending local mutations
type MutationStore interface {
	// InsertPendingMutation stores m and assigns m.ID.
	// Returns false without error if a mutation with the same
	// (entityType, entityId, operation) triple already exists.
	InsertPendingMutation(ctx context.Context, m *models.PendingMutation) (bool, error)

	// FetchPendingMutations returns all queued mutations ordered by creation time
	FetchPendingMutations(ctx context.Context) ([]*models.PendingMutation, error)

	// DeletePendingMutation removes a resolved mutation. Missing ids are ignored.
	DeletePendingMutation(ctx context.Context, id int64) error

	// IncrementMutationAttempts records one failed send
	IncrementMutationAttempts(ctx context.Context, id int64, lastErr string) error

	// PendingDeleteEntityIDs returns entity ids that have a queued delete
	PendingDeleteEntityIDs(ctx context.Context) ([]string, error)

	// HasPendingDelete reports whether a delete is queued for the entity id
	HasPendingDelete(ctx context.Context, entityID string) (bool, error)

	// HasPendingWrite reports whether a create or update is queued for the entity
	HasPendingWrite(ctx context.Context, kind models.EntityType, entityID string) (bool, error)

	// CountPendingMutations returns the queue length
	CountPendingMutations(ctx context.Context) (int, error)
}

// LocalStore is one open handle to the local database.
type LocalStore interface {
	EntityStore
	MutationStore
	Close() error
}
