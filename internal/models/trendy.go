package models

import "time"

// EventType категория событий. Родитель для Event и PropertyDefinition.
type EventType struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
}

func (e *EventType) EntityID() string       { return e.ID }
func (e *EventType) Kind() EntityType       { return EntityTypeEventType }
func (e *EventType) LastUpdated() time.Time { return e.UpdatedAt }

// PropertyType тип значения пользовательского свойства
type PropertyType string

const (
	PropertyTypeText     PropertyType = "text"
	PropertyTypeNumber   PropertyType = "number"
	PropertyTypeBoolean  PropertyType = "boolean"
	PropertyTypeDate     PropertyType = "date"
	PropertyTypeSelect   PropertyType = "select"
	PropertyTypeDuration PropertyType = "duration"
	PropertyTypeURL      PropertyType = "url"
	PropertyTypeEmail    PropertyType = "email"
)

// PropertyValue значение свойства на конкретном событии
type PropertyValue struct {
	Value any          `json:"value"`
	Type  PropertyType `json:"type"`
}

// Event отслеживаемое событие. EventTypeID должен ссылаться на локально сохранённый EventType.
type Event struct {
	Timestamp         time.Time                `json:"timestamp"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	Properties        map[string]PropertyValue `json:"properties,omitempty"`
	Notes             *string                  `json:"notes,omitempty"`
	EndDate           *time.Time               `json:"end_date,omitempty"`
	ExternalID        *string                  `json:"external_id,omitempty"`
	OriginalTitle     *string                  `json:"original_title,omitempty"`
	GeofenceID        *string                  `json:"geofence_id,omitempty"`
	LocationLatitude  *float64                 `json:"location_latitude,omitempty"`
	LocationLongitude *float64                 `json:"location_longitude,omitempty"`
	LocationName      *string                  `json:"location_name,omitempty"`
	HealthKitSampleID *string                  `json:"healthkit_sample_id,omitempty"`
	HealthKitCategory *string                  `json:"healthkit_category,omitempty"`
	ID                string                   `json:"id"`
	UserID            string                   `json:"user_id,omitempty"`
	EventTypeID       string                   `json:"event_type_id"`
	SourceType        string                   `json:"source_type"`
	IsAllDay          bool                     `json:"is_all_day"`
}

func (e *Event) EntityID() string       { return e.ID }
func (e *Event) Kind() EntityType       { return EntityTypeEvent }
func (e *Event) LastUpdated() time.Time { return e.UpdatedAt }

// Geofence географическая зона для автоматического создания событий
type Geofence struct {
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	EventTypeEntryID *string   `json:"event_type_entry_id,omitempty"`
	EventTypeExitID  *string   `json:"event_type_exit_id,omitempty"`
	ID               string    `json:"id"`
	UserID           string    `json:"user_id,omitempty"`
	Name             string    `json:"name"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Radius           float64   `json:"radius"`
	IsActive         bool      `json:"is_active"`
	NotifyOnEntry    bool      `json:"notify_on_entry"`
	NotifyOnExit     bool      `json:"notify_on_exit"`
}

func (g *Geofence) EntityID() string       { return g.ID }
func (g *Geofence) Kind() EntityType       { return EntityTypeGeofence }
func (g *Geofence) LastUpdated() time.Time { return g.UpdatedAt }

// PropertyDefinition схема пользовательского свойства для EventType
type PropertyDefinition struct {
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DefaultValue any          `json:"default_value,omitempty"`
	ID           string       `json:"id"`
	EventTypeID  string       `json:"event_type_id"`
	UserID       string       `json:"user_id,omitempty"`
	Key          string       `json:"key"`
	Label        string       `json:"label"`
	PropertyType PropertyType `json:"property_type"`
	Options      []string     `json:"options,omitempty"`
	DisplayOrder int          `json:"display_order"`
}

func (p *PropertyDefinition) EntityID() string       { return p.ID }
func (p *PropertyDefinition) Kind() EntityType       { return EntityTypePropertyDefinition }
func (p *PropertyDefinition) LastUpdated() time.Time { return p.UpdatedAt }
