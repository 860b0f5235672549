package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

// entityTable описывает таблицу сущности и её натуральный ключ
type entityTable struct {
	name    string
	orderBy string
	// naturalKey - колонки, совпадение по которым означает дубликат
	naturalKey []string
}

var entityTables = map[models.EntityType]entityTable{
	models.EntityTypeEventType: {
		name:       "event_types",
		orderBy:    "name, id",
		naturalKey: []string{"name"},
	},
	models.EntityTypeGeofence: {
		name:       "geofences",
		orderBy:    "name, id",
		naturalKey: []string{"name"},
	},
	models.EntityTypePropertyDefinition: {
		name:       "property_definitions",
		orderBy:    "event_type_id, display_order, id",
		naturalKey: []string{"event_type_id", "prop_key"},
	},
	models.EntityTypeEvent: {
		name:       "events",
		orderBy:    "timestamp, id",
		naturalKey: []string{"event_type_id", "timestamp", "external_id", "healthkit_sample_id"},
	},
}

func tableFor(kind models.EntityType) (entityTable, error) {
	t, ok := entityTables[kind]
	if !ok {
		return entityTable{}, fmt.Errorf("%w: %q", storage.ErrUnknownEntityType, kind)
	}
	return t, nil
}

// UpsertEventType inserts or replaces an event type
func (s *Storage) UpsertEventType(ctx context.Context, et *models.EventType, status models.SyncStatus) error {
	data, err := json.Marshal(et)
	if err != nil {
		return fmt.Errorf("failed to marshal event type: %w", err)
	}

	query := `
		INSERT INTO event_types (id, name, data, sync_status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			sync_status = excluded.sync_status
	`
	return s.exec(ctx, "upsert event type", query, et.ID, et.Name, data, status)
}

// FindEventType returns the event type or storage.ErrNotFound
func (s *Storage) FindEventType(ctx context.Context, id string) (*models.EventType, error) {
	return findOne[models.EventType](ctx, s, "event_types", id)
}

// FetchAllEventTypes returns every stored event type ordered by name
func (s *Storage) FetchAllEventTypes(ctx context.Context) ([]*models.EventType, error) {
	return fetchAll[models.EventType](ctx, s, entityTables[models.EntityTypeEventType])
}

// UpsertEvent inserts or replaces an event
func (s *Storage) UpsertEvent(ctx context.Context, ev *models.Event, status models.SyncStatus) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	query := `
		INSERT INTO events (id, event_type_id, timestamp, external_id, healthkit_sample_id, data, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_type_id = excluded.event_type_id,
			timestamp = excluded.timestamp,
			external_id = excluded.external_id,
			healthkit_sample_id = excluded.healthkit_sample_id,
			data = excluded.data,
			sync_status = excluded.sync_status
	`
	return s.exec(ctx, "upsert event", query,
		ev.ID,
		ev.EventTypeID,
		ev.Timestamp.UnixMilli(),
		nullString(ev.ExternalID),
		nullString(ev.HealthKitSampleID),
		data,
		status,
	)
}

// FindEvent returns the event or storage.ErrNotFound
func (s *Storage) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	return findOne[models.Event](ctx, s, "events", id)
}

// FetchAllEvents returns every stored event ordered by timestamp
func (s *Storage) FetchAllEvents(ctx context.Context) ([]*models.Event, error) {
	return fetchAll[models.Event](ctx, s, entityTables[models.EntityTypeEvent])
}

// UpsertGeofence inserts or replaces a geofence
func (s *Storage) UpsertGeofence(ctx context.Context, g *models.Geofence, status models.SyncStatus) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal geofence: %w", err)
	}

	query := `
		INSERT INTO geofences (id, name, data, sync_status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			sync_status = excluded.sync_status
	`
	return s.exec(ctx, "upsert geofence", query, g.ID, g.Name, data, status)
}

// FindGeofence returns the geofence or storage.ErrNotFound
func (s *Storage) FindGeofence(ctx context.Context, id string) (*models.Geofence, error) {
	return findOne[models.Geofence](ctx, s, "geofences", id)
}

// FetchAllGeofences returns every stored geofence ordered by name
func (s *Storage) FetchAllGeofences(ctx context.Context) ([]*models.Geofence, error) {
	return fetchAll[models.Geofence](ctx, s, entityTables[models.EntityTypeGeofence])
}

// UpsertPropertyDefinition inserts or replaces a property definition
func (s *Storage) UpsertPropertyDefinition(ctx context.Context, pd *models.PropertyDefinition, status models.SyncStatus) error {
	data, err := json.Marshal(pd)
	if err != nil {
		return fmt.Errorf("failed to marshal property definition: %w", err)
	}

	query := `
		INSERT INTO property_definitions (id, event_type_id, prop_key, display_order, data, sync_status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_type_id = excluded.event_type_id,
			prop_key = excluded.prop_key,
			display_order = excluded.display_order,
			data = excluded.data,
			sync_status = excluded.sync_status
	`
	return s.exec(ctx, "upsert property definition", query,
		pd.ID, pd.EventTypeID, pd.Key, pd.DisplayOrder, data, status)
}

// FindPropertyDefinition returns the property definition or storage.ErrNotFound
func (s *Storage) FindPropertyDefinition(ctx context.Context, id string) (*models.PropertyDefinition, error) {
	return findOne[models.PropertyDefinition](ctx, s, "property_definitions", id)
}

// FetchAllPropertyDefinitions returns every stored property definition
func (s *Storage) FetchAllPropertyDefinitions(ctx context.Context) ([]*models.PropertyDefinition, error) {
	return fetchAll[models.PropertyDefinition](ctx, s, entityTables[models.EntityTypePropertyDefinition])
}

// DeleteEntity removes one entity; a missing row is not an error
func (s *Storage) DeleteEntity(ctx context.Context, kind models.EntityType, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	return s.exec(ctx, "delete "+string(kind), "DELETE FROM "+t.name+" WHERE id = ?", id)
}

// DeleteAllEntities removes every entity of the kind
func (s *Storage) DeleteAllEntities(ctx context.Context, kind models.EntityType) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	return s.exec(ctx, "delete all "+string(kind), "DELETE FROM "+t.name)
}

// MarkSynced flips sync_status of an existing entity to synced
func (s *Storage) MarkSynced(ctx context.Context, kind models.EntityType, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	return s.exec(ctx, "mark synced", "UPDATE "+t.name+" SET sync_status = ? WHERE id = ?",
		models.SyncStatusSynced, id)
}

// FindDuplicates returns ids of other rows sharing the natural key of id.
// Nullable key columns are compared with IS so two NULLs match.
func (s *Storage) FindDuplicates(ctx context.Context, kind models.EntityType, id string) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	conds := make([]string, 0, len(t.naturalKey))
	for _, col := range t.naturalKey {
		conds = append(conds, fmt.Sprintf("other.%s IS self.%s", col, col))
	}

	query := fmt.Sprintf(`
		SELECT other.id
		FROM %[1]s self
		JOIN %[1]s other ON %[2]s AND other.id <> self.id
		WHERE self.id = ?
		ORDER BY other.id
	`, t.name, strings.Join(conds, " AND "))

	return s.queryIDs(ctx, "find duplicates", query, id)
}

// DanglingEventRefs returns ids of events whose event type is not stored
func (s *Storage) DanglingEventRefs(ctx context.Context) ([]string, error) {
	query := `
		SELECT e.id
		FROM events e
		LEFT JOIN event_types t ON t.id = e.event_type_id
		WHERE t.id IS NULL
		ORDER BY e.id
	`
	return s.queryIDs(ctx, "find dangling events", query)
}

// findOne читает JSON колонку data одной записи
func findOne[T any](ctx context.Context, s *Storage, table, id string) (*T, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = db.QueryRowContext(ctx, "SELECT data FROM "+table+" WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, s.wrapErr(err, "failed to get %s row", table)
	}

	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s row: %w", table, err)
	}
	return v, nil
}

func fetchAll[T any](ctx context.Context, s *Storage, t entityTable) ([]*T, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT data FROM "+t.name+" ORDER BY "+t.orderBy)
	if err != nil {
		return nil, s.wrapErr(err, "failed to query %s", t.name)
	}
	defer rows.Close()

	var result []*T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, s.wrapErr(err, "failed to scan %s row", t.name)
		}
		v := new(T)
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s row: %w", t.name, err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, s.wrapErr(err, "rows iteration error")
	}

	return result, nil
}

func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return s.wrapErr(err, "failed to %s", op)
	}
	return nil
}

func (s *Storage) queryIDs(ctx context.Context, op, query string, args ...any) ([]string, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapErr(err, "failed to %s", op)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, s.wrapErr(err, "failed to scan id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, s.wrapErr(err, "rows iteration error")
	}

	return ids, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
