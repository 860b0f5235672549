package models

import "time"

// EntityType тип синхронизируемой сущности (совпадает со значениями entity_type в changefeed)
type EntityType string

const (
	EntityTypeEvent              EntityType = "event"
	EntityTypeEventType          EntityType = "event_type"
	EntityTypeGeofence           EntityType = "geofence"
	EntityTypePropertyDefinition EntityType = "property_definition"
)

// AllEntityTypes lists every synced kind, parents first.
var AllEntityTypes = []EntityType{
	EntityTypeEventType,
	EntityTypeGeofence,
	EntityTypePropertyDefinition,
	EntityTypeEvent,
}

// Valid reports whether t is one of the known entity kinds.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeEvent, EntityTypeEventType, EntityTypeGeofence, EntityTypePropertyDefinition:
		return true
	}
	return false
}

// IsParent reports whether other kinds reference this kind by id.
func (t EntityType) IsParent() bool {
	return t != EntityTypeEvent
}

// Operation тип изменения
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is create, update or delete.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// SyncStatus состояние локальной записи относительно сервера
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending" // локальное изменение ещё не отправлено
	SyncStatusSynced  SyncStatus = "synced"  // запись совпадает с сервером
)

// Entity is implemented by every synced model.
type Entity interface {
	EntityID() string
	Kind() EntityType
	LastUpdated() time.Time
}

// IsNewerThan реализует Last-Write-Wins на уровне записи:
// запись новее, если её UpdatedAt строго больше.
func IsNewerThan(a, b Entity) bool {
	return a.LastUpdated().After(b.LastUpdated())
}
