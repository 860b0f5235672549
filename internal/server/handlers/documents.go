package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/internal/validation"
)

// errValidation ошибка содержимого документа, отдаётся клиенту как 400
type errValidation struct {
	msg string
}

func (e *errValidation) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &errValidation{msg: fmt.Sprintf(format, args...)}
}

func isValidation(err error) bool {
	var v *errValidation
	return errors.As(err, &v)
}

// document входной документ сущности после разбора
type document struct {
	entity     models.Entity
	parentID   string
	naturalKey string
}

// stamp задаёт идентификатор, владельца и время
type stamp struct {
	createdAt time.Time // zero: оставить из тела или now
	now       time.Time
	id        string // id из пути, пусто для create
	userID    string
}

// parseDocument разбирает тело запроса в сущность нужного вида и проставляет
// id, user_id и временные метки
func parseDocument(kind models.EntityType, body []byte, st stamp) (*document, error) {
	switch kind {
	case models.EntityTypeEventType:
		var et models.EventType
		if err := json.Unmarshal(body, &et); err != nil {
			return nil, invalid("invalid event type: %v", err)
		}
		id, err := resolveID(et.ID, st.id)
		if err != nil {
			return nil, err
		}
		et.ID, et.UserID = id, st.userID
		et.CreatedAt, et.UpdatedAt = timestamps(et.CreatedAt, st)
		et.Name = strings.TrimSpace(et.Name)
		if et.Name == "" {
			return nil, invalid("name is required")
		}
		return &document{entity: &et, naturalKey: et.Name}, nil

	case models.EntityTypeGeofence:
		var g models.Geofence
		if err := json.Unmarshal(body, &g); err != nil {
			return nil, invalid("invalid geofence: %v", err)
		}
		id, err := resolveID(g.ID, st.id)
		if err != nil {
			return nil, err
		}
		g.ID, g.UserID = id, st.userID
		g.CreatedAt, g.UpdatedAt = timestamps(g.CreatedAt, st)
		g.Name = strings.TrimSpace(g.Name)
		switch {
		case g.Name == "":
			return nil, invalid("name is required")
		case g.Latitude < -90 || g.Latitude > 90:
			return nil, invalid("latitude must be between -90 and 90")
		case g.Longitude < -180 || g.Longitude > 180:
			return nil, invalid("longitude must be between -180 and 180")
		case g.Radius <= 0:
			return nil, invalid("radius must be positive")
		}
		return &document{entity: &g, naturalKey: g.Name}, nil

	case models.EntityTypePropertyDefinition:
		var p models.PropertyDefinition
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, invalid("invalid property definition: %v", err)
		}
		id, err := resolveID(p.ID, st.id)
		if err != nil {
			return nil, err
		}
		p.ID, p.UserID = id, st.userID
		p.CreatedAt, p.UpdatedAt = timestamps(p.CreatedAt, st)
		if err := validation.ValidateEntityID(p.EventTypeID); err != nil {
			return nil, invalid("event_type_id: %v", err)
		}
		if p.Key == "" {
			return nil, invalid("key is required")
		}
		if !validPropertyType(p.PropertyType) {
			return nil, invalid("unknown property_type %q", p.PropertyType)
		}
		return &document{entity: &p, parentID: p.EventTypeID, naturalKey: p.EventTypeID + "|" + p.Key}, nil

	case models.EntityTypeEvent:
		var e models.Event
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, invalid("invalid event: %v", err)
		}
		id, err := resolveID(e.ID, st.id)
		if err != nil {
			return nil, err
		}
		e.ID, e.UserID = id, st.userID
		e.CreatedAt, e.UpdatedAt = timestamps(e.CreatedAt, st)
		if err := validation.ValidateEntityID(e.EventTypeID); err != nil {
			return nil, invalid("event_type_id: %v", err)
		}
		if e.Timestamp.IsZero() {
			return nil, invalid("timestamp is required")
		}
		if e.SourceType == "" {
			e.SourceType = "manual"
		}
		return &document{entity: &e, parentID: e.EventTypeID, naturalKey: eventNaturalKey(&e)}, nil
	}

	return nil, invalid("unsupported entity type %q", kind)
}

// record сериализует документ для хранилища
func (d *document) record(kind models.EntityType, userID string) (*storage.EntityRecord, error) {
	data, err := json.Marshal(d.entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	return &storage.EntityRecord{
		Data:       data,
		Kind:       kind,
		ID:         d.entity.EntityID(),
		UserID:     userID,
		ParentID:   d.parentID,
		NaturalKey: d.naturalKey,
	}, nil
}

// resolveID id из пути имеет приоритет; для create без id генерируется UUIDv7
func resolveID(bodyID, pathID string) (string, error) {
	switch {
	case pathID != "":
		if bodyID != "" && !strings.EqualFold(bodyID, pathID) {
			return "", invalid("id in body does not match path")
		}
		return pathID, nil
	case bodyID == "":
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}
		return id.String(), nil
	}
	if err := validation.ValidateEntityID(bodyID); err != nil {
		return "", invalid("%v", err)
	}
	return bodyID, nil
}

// timestamps: created_at сохраняется, updated_at всегда время сервера
func timestamps(bodyCreated time.Time, st stamp) (time.Time, time.Time) {
	created := st.createdAt
	if created.IsZero() {
		created = bodyCreated
	}
	if created.IsZero() {
		created = st.now
	}
	return created.UTC(), st.now.UTC()
}

// eventNaturalKey уникальность события: тип, момент и внешние идентификаторы
func eventNaturalKey(e *models.Event) string {
	parts := []string{e.EventTypeID, strconv.FormatInt(e.Timestamp.UnixMilli(), 10), "", ""}
	if e.ExternalID != nil {
		parts[2] = *e.ExternalID
	}
	if e.HealthKitSampleID != nil {
		parts[3] = *e.HealthKitSampleID
	}
	return strings.Join(parts, "|")
}

func validPropertyType(t models.PropertyType) bool {
	switch t {
	case models.PropertyTypeText, models.PropertyTypeNumber, models.PropertyTypeBoolean,
		models.PropertyTypeDate, models.PropertyTypeSelect, models.PropertyTypeDuration,
		models.PropertyTypeURL, models.PropertyTypeEmail:
		return true
	}
	return false
}
