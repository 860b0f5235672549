package storage

import (
	"context"

	"github.com/iudanet/trendysync/internal/models"
)

//go:generate moq -out statestorage_mock.go . StateStorage

// StateStorage defines durable key-value state of the sync engine.
// Every value is namespaced by environment so staging and production
// cursors never mix.
type StateStorage interface {
	// GetCursor returns the stored changefeed cursor, 0 if none
	GetCursor(ctx context.Context, env string) (int64, error)

	// SaveCursor persists the changefeed cursor as given
	SaveCursor(ctx context.Context, env string, cursor int64) error

	// GetForceBootstrap returns the force-resync flag
	GetForceBootstrap(ctx context.Context, env string) (bool, error)

	// SetForceBootstrap sets or clears the force-resync flag
	SetForceBootstrap(ctx context.Context, env string, force bool) error

	// GetBreakerState returns the persisted breaker state, or the initial
	// state when nothing was saved yet
	GetBreakerState(ctx context.Context, env string) (models.BreakerState, error)

	// SaveBreakerState persists the breaker state
	SaveBreakerState(ctx context.Context, env string, state models.BreakerState) error
}
