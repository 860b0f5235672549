package storage

import (
	"context"

	"github.com/iudanet/trendysync/internal/models"
)

// EntityStore defines the local data store for synced entities.
// Upserts replace the whole record; status tells whether the row matches the server.
type EntityStore interface {
	UpsertEventType(ctx context.Context, et *models.EventType, status models.SyncStatus) error
	FindEventType(ctx context.Context, id string) (*models.EventType, error)
	FetchAllEventTypes(ctx context.Context) ([]*models.EventType, error)

	UpsertEvent(ctx context.Context, ev *models.Event, status models.SyncStatus) error
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	FetchAllEvents(ctx context.Context) ([]*models.Event, error)

	UpsertGeofence(ctx context.Context, g *models.Geofence, status models.SyncStatus) error
	FindGeofence(ctx context.Context, id string) (*models.Geofence, error)
	FetchAllGeofences(ctx context.Context) ([]*models.Geofence, error)

	UpsertPropertyDefinition(ctx context.Context, pd *models.PropertyDefinition, status models.SyncStatus) error
	FindPropertyDefinition(ctx context.Context, id string) (*models.PropertyDefinition, error)
	FetchAllPropertyDefinitions(ctx context.Context) ([]*models.PropertyDefinition, error)

	// DeleteEntity removes one entity. Deleting a missing entity is not an error.
	DeleteEntity(ctx context.Context, kind models.EntityType, id string) error

	// DeleteAllEntities removes every entity of the kind.
	DeleteAllEntities(ctx context.Context, kind models.EntityType) error

	// MarkSynced flips the sync status of an existing entity to synced.
	// Missing entities are ignored.
	MarkSynced(ctx context.Context, kind models.EntityType, id string) error

	// FindDuplicates returns ids of other local entities of the same kind that
	// share the natural key of entity id (event: type+timestamp+external ids,
	// event type: name, geofence: name, property definition: type+key).
	FindDuplicates(ctx context.Context, kind models.EntityType, id string) ([]string, error)

	// DanglingEventRefs returns ids of events whose event_type_id does not
	// resolve to a stored EventType.
	DanglingEventRefs(ctx context.Context) ([]string, error)
}
