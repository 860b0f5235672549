package storage

import (
	"context"
	"time"
)

// IdempotentResponse закешированный ответ на запрос с Idempotency-Key
type IdempotentResponse struct {
	CreatedAt  time.Time
	Key        string
	Route      string // метод и шаблон пути
	UserID     string
	Body       []byte
	StatusCode int
}

// IdempotencyStorage caches successful responses by idempotency key
type IdempotencyStorage interface {
	// GetIdempotentResponse returns ErrIdempotencyKeyNotFound when nothing is cached
	GetIdempotentResponse(ctx context.Context, userID, route, key string) (*IdempotentResponse, error)

	// SaveIdempotentResponse stores the response; an existing entry is kept
	SaveIdempotentResponse(ctx context.Context, resp *IdempotentResponse) error
}

// Storage is everything the HTTP layer needs
type Storage interface {
	UserStorage
	TokenStorage
	EntityStorage
	ChangeStorage
	IdempotencyStorage
	Ping(ctx context.Context) error
	Close() error
}
