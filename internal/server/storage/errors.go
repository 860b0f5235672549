package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrEntityNotFound indicates that the entity does not exist for the user
	ErrEntityNotFound = errors.New("entity not found")

	// ErrConflict indicates a uniqueness violation: the natural key is taken
	// by another entity or the id belongs to another user
	ErrConflict = errors.New("entity conflicts with an existing record")

	// ErrIdempotencyKeyNotFound indicates that no response is cached for the key
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)
