package sync

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

// bootstrap replaces all local entities with the server's dataset and
// resets the cursor to the server's latest value.
func (e *Engine) bootstrap(ctx context.Context, store storage.LocalStore, res *Result) error {
	e.logger.Info("starting bootstrap", "cursor", e.Cursor())

	if err := e.capturePendingDeletes(ctx, store); err != nil {
		return err
	}
	defer e.clearPendingDeletes()

	// Полная очистка: данные сервера заменяют всё локальное.
	// Очередь мутаций не трогаем, она будет отправлена в этом же цикле.
	for _, kind := range models.AllEntityTypes {
		if err := store.DeleteAllEntities(ctx, kind); err != nil {
			return fmt.Errorf("failed to clear local %s: %w", kind, err)
		}
	}

	eventTypes, err := e.client.GetAllEventTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch event types: %w", err)
	}
	knownTypes := make(map[string]struct{}, len(eventTypes))
	for i := range eventTypes {
		stored, err := e.storeFetched(ctx, store, &eventTypes[i], res)
		if err != nil {
			return err
		}
		if stored {
			knownTypes[eventTypes[i].ID] = struct{}{}
		}
	}

	geofences, err := e.client.GetAllGeofences(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch geofences: %w", err)
	}
	for i := range geofences {
		if _, err := e.storeFetched(ctx, store, &geofences[i], res); err != nil {
			return err
		}
	}

	events, err := e.client.GetAllEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}
	orphans := 0
	for i := range events {
		if _, ok := knownTypes[events[i].EventTypeID]; !ok {
			orphans++
			e.logger.Warn("event references unknown event type",
				"event_id", events[i].ID,
				"event_type_id", events[i].EventTypeID)
		}
		if _, err := e.storeFetched(ctx, store, &events[i], res); err != nil {
			return err
		}
	}

	defs, err := e.fetchPropertyDefinitions(ctx, eventTypes)
	if err != nil {
		return err
	}
	for i := range defs {
		if _, err := e.storeFetched(ctx, store, &defs[i], res); err != nil {
			return err
		}
	}

	cursor, err := e.client.GetLatestCursor(ctx)
	if err != nil {
		e.logger.Warn("failed to fetch latest cursor, using sentinel",
			"error", err,
			"sentinel", SentinelCursor)
		cursor = SentinelCursor
	}
	if err := e.setCursor(ctx, cursor); err != nil {
		return err
	}
	if err := e.state.SetForceBootstrap(ctx, e.cfg.Environment, false); err != nil {
		return fmt.Errorf("failed to clear force bootstrap flag: %w", err)
	}

	e.checkRelationships(ctx, store)

	e.logger.Info("bootstrap completed",
		"event_types", len(eventTypes),
		"geofences", len(geofences),
		"events", len(events),
		"property_definitions", len(defs),
		"orphaned_events", orphans,
		"cursor", cursor)
	return nil
}

// storeFetched сохраняет сущность как synced, если по ней нет ожидающего delete
func (e *Engine) storeFetched(ctx context.Context, store storage.LocalStore, ent models.Entity, res *Result) (bool, error) {
	vetoed, err := e.isPendingDelete(ctx, store, ent.EntityID())
	if err != nil {
		return false, err
	}
	if vetoed {
		e.logger.Warn("skipping fetched entity pending local delete",
			"entity_type", ent.Kind(),
			"entity_id", ent.EntityID())
		res.Skipped++
		return false, nil
	}

	if err := upsertEntity(ctx, store, ent, models.SyncStatusSynced); err != nil {
		return false, fmt.Errorf("failed to store %s %s: %w", ent.Kind(), ent.EntityID(), err)
	}
	res.Applied++
	return true, nil
}

// fetchPropertyDefinitions загружает определения свойств для всех типов
// параллельно с ограничением; порядок результата соответствует порядку типов
func (e *Engine) fetchPropertyDefinitions(ctx context.Context, eventTypes []models.EventType) ([]models.PropertyDefinition, error) {
	perType := make([][]models.PropertyDefinition, len(eventTypes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.PropertyFetchConcurrency)
	for i := range eventTypes {
		id := eventTypes[i].ID
		g.Go(func() error {
			defs, err := e.client.GetPropertyDefinitions(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to fetch property definitions for event type %s: %w", id, err)
			}
			perType[i] = defs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.PropertyDefinition
	for _, defs := range perType {
		all = append(all, defs...)
	}
	return all, nil
}
