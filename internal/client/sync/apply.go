package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

// errMalformedChange запись changefeed, которую нельзя применить; пропускается
var errMalformedChange = errors.New("malformed change")

// applyChange applies one changefeed entry. It returns false when the entry
// was skipped. Only store failures are returned as errors.
func (e *Engine) applyChange(ctx context.Context, store storage.LocalStore, c models.ChangeEntry) (bool, error) {
	log := e.logger.With(
		"change_id", c.ID,
		"entity_type", c.EntityType,
		"entity_id", c.EntityID,
		"operation", c.Operation)

	if !c.EntityType.Valid() || c.EntityID == "" {
		log.Warn("skipping change with unknown entity")
		return false, nil
	}

	switch c.Operation {
	case models.OperationDelete:
		if err := store.DeleteEntity(ctx, c.EntityType, c.EntityID); err != nil {
			return false, fmt.Errorf("failed to apply delete of %s %s: %w", c.EntityType, c.EntityID, err)
		}
		return true, nil

	case models.OperationCreate, models.OperationUpdate:
		vetoed, err := e.isPendingDelete(ctx, store, c.EntityID)
		if err != nil {
			return false, err
		}
		if vetoed {
			log.Warn("skipping change for entity pending local delete")
			return false, nil
		}

		ent, err := decodeEntity(c.EntityType, c.Data)
		if err != nil {
			log.Warn("skipping malformed change", "error", err)
			return false, nil
		}

		keepLocal, err := e.localIsNewer(ctx, store, ent)
		if err != nil {
			return false, err
		}
		if keepLocal {
			log.Debug("skipping change older than pending local write")
			return false, nil
		}

		if err := upsertEntity(ctx, store, ent, models.SyncStatusSynced); err != nil {
			return false, fmt.Errorf("failed to apply %s of %s %s: %w", c.Operation, c.EntityType, c.EntityID, err)
		}
		return true, nil

	default:
		log.Warn("skipping change with unknown operation")
		return false, nil
	}
}

// localIsNewer реализует LWW: локальная запись побеждает, только если по ней
// есть неотправленная запись в очереди и её updated_at строго новее
func (e *Engine) localIsNewer(ctx context.Context, store storage.LocalStore, incoming models.Entity) (bool, error) {
	pending, err := store.HasPendingWrite(ctx, incoming.Kind(), incoming.EntityID())
	if err != nil {
		return false, fmt.Errorf("failed to check pending writes: %w", err)
	}
	if !pending {
		return false, nil
	}

	local, err := findEntity(ctx, store, incoming.Kind(), incoming.EntityID())
	if err != nil {
		return false, err
	}
	if local == nil {
		return false, nil
	}
	return models.IsNewerThan(local, incoming), nil
}

func decodeEntity(kind models.EntityType, data json.RawMessage) (models.Entity, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: empty data", errMalformedChange)
	}

	var ent models.Entity
	switch kind {
	case models.EntityTypeEventType:
		ent = &models.EventType{}
	case models.EntityTypeEvent:
		ent = &models.Event{}
	case models.EntityTypeGeofence:
		ent = &models.Geofence{}
	case models.EntityTypePropertyDefinition:
		ent = &models.PropertyDefinition{}
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", errMalformedChange, kind)
	}

	if err := json.Unmarshal(data, ent); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedChange, err)
	}
	if ent.EntityID() == "" {
		return nil, fmt.Errorf("%w: missing id", errMalformedChange)
	}
	return ent, nil
}

func upsertEntity(ctx context.Context, store storage.EntityStore, ent models.Entity, status models.SyncStatus) error {
	switch v := ent.(type) {
	case *models.EventType:
		return store.UpsertEventType(ctx, v, status)
	case *models.Event:
		return store.UpsertEvent(ctx, v, status)
	case *models.Geofence:
		return store.UpsertGeofence(ctx, v, status)
	case *models.PropertyDefinition:
		return store.UpsertPropertyDefinition(ctx, v, status)
	default:
		return fmt.Errorf("%w: %T", storage.ErrUnknownEntityType, ent)
	}
}

// findEntity returns nil without error when the entity is not stored
func findEntity(ctx context.Context, store storage.EntityStore, kind models.EntityType, id string) (models.Entity, error) {
	var (
		ent models.Entity
		err error
	)
	switch kind {
	case models.EntityTypeEventType:
		ent, err = store.FindEventType(ctx, id)
	case models.EntityTypeEvent:
		ent, err = store.FindEvent(ctx, id)
	case models.EntityTypeGeofence:
		ent, err = store.FindGeofence(ctx, id)
	case models.EntityTypePropertyDefinition:
		ent, err = store.FindPropertyDefinition(ctx, id)
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownEntityType, kind)
	}

	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load local %s %s: %w", kind, id, err)
	}
	return ent, nil
}
