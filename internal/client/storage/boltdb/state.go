package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

const (
	keyCursor         = "cursor"
	keyForceBootstrap = "force_bootstrap"
	keyBreaker        = "breaker"
)

// Compile-time check
var _ storage.StateStorage = (*Storage)(nil)

// stateKey строит ключ вида "<env>/<name>"
func stateKey(env, name string) []byte {
	return []byte(env + "/" + name)
}

// SaveCursor persists the changefeed cursor for the environment
func (s *Storage) SaveCursor(ctx context.Context, env string, cursor int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketState)
		if err != nil {
			return err
		}

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(cursor))

		if err := b.Put(stateKey(env, keyCursor), buf); err != nil {
			return fmt.Errorf("failed to save cursor: %w", err)
		}
		return nil
	})
}

// GetCursor returns the stored cursor, 0 if no sync has been performed yet
func (s *Storage) GetCursor(ctx context.Context, env string) (int64, error) {
	var cursor int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketState)
		if err != nil {
			return err
		}

		buf := b.Get(stateKey(env, keyCursor))
		if buf == nil {
			// Курсор не найден - первая синхронизация
			return nil
		}
		if len(buf) != 8 {
			return fmt.Errorf("corrupted cursor value: %d bytes", len(buf))
		}

		cursor = int64(binary.BigEndian.Uint64(buf))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get cursor: %w", err)
	}

	return cursor, nil
}

// SetForceBootstrap sets or clears the force-resync flag
func (s *Storage) SetForceBootstrap(ctx context.Context, env string, force bool) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketState)
		if err != nil {
			return err
		}

		if !force {
			return b.Delete(stateKey(env, keyForceBootstrap))
		}
		if err := b.Put(stateKey(env, keyForceBootstrap), []byte{1}); err != nil {
			return fmt.Errorf("failed to save force bootstrap flag: %w", err)
		}
		return nil
	})
}

// GetForceBootstrap returns the force-resync flag
func (s *Storage) GetForceBootstrap(ctx context.Context, env string) (bool, error) {
	var force bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketState)
		if err != nil {
			return err
		}
		v := b.Get(stateKey(env, keyForceBootstrap))
		force = len(v) == 1 && v[0] == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to get force bootstrap flag: %w", err)
	}

	return force, nil
}

// SaveBreakerState persists circuit breaker counters as JSON
func (s *Storage) SaveBreakerState(ctx context.Context, env string, state models.BreakerState) error {
	if err := s.putJSON(bucketState, stateKey(env, keyBreaker), state); err != nil {
		return fmt.Errorf("failed to save breaker state: %w", err)
	}
	return nil
}

// GetBreakerState returns the persisted breaker state or the initial one
func (s *Storage) GetBreakerState(ctx context.Context, env string) (models.BreakerState, error) {
	state := models.NewBreakerState()
	if _, err := s.getJSON(bucketState, stateKey(env, keyBreaker), &state); err != nil {
		return models.NewBreakerState(), fmt.Errorf("failed to get breaker state: %w", err)
	}

	// Старые записи могли сохраниться без множителя
	if state.BackoffMultiplier < 1 {
		state.BackoffMultiplier = 1
	}

	return state, nil
}
