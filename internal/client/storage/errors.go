package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrNotFound indicates that an entity was not found in the local store
	ErrNotFound = errors.New("entity not found")

	// ErrStoreClosed indicates that the store handle was closed or invalidated
	ErrStoreClosed = errors.New("storage is closed")

	// ErrUnknownEntityType indicates an entity kind the store does not handle
	ErrUnknownEntityType = errors.New("unknown entity type")
)
