package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/trendysync/internal/models"
)

func TestCursor_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Изначально курсора нет - ожидаем 0
	cursor, err := store.GetCursor(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)

	require.NoError(t, store.SaveCursor(ctx, "production", 1234))

	cursor, err = store.GetCursor(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), cursor)

	// Окружения не пересекаются
	cursor, err = store.GetCursor(ctx, "staging")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)
}

func TestCursor_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/reopen.db"

	store, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.SaveCursor(ctx, "production", 77))
	require.NoError(t, store.SetForceBootstrap(ctx, "production", true))
	require.NoError(t, store.Close())

	store, err = New(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	cursor, err := store.GetCursor(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, int64(77), cursor)

	force, err := store.GetForceBootstrap(ctx, "production")
	require.NoError(t, err)
	assert.True(t, force)
}

func TestCursor_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketState)
	})
	require.NoError(t, err)

	_, err = store.GetCursor(ctx, "production")
	assert.ErrorContains(t, err, "bucket sync_state not found")

	err = store.SaveCursor(ctx, "production", 42)
	assert.ErrorContains(t, err, "bucket sync_state not found")
}

func TestForceBootstrap_SetAndClear(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	force, err := store.GetForceBootstrap(ctx, "production")
	require.NoError(t, err)
	assert.False(t, force)

	require.NoError(t, store.SetForceBootstrap(ctx, "production", true))
	force, err = store.GetForceBootstrap(ctx, "production")
	require.NoError(t, err)
	assert.True(t, force)

	require.NoError(t, store.SetForceBootstrap(ctx, "production", false))
	force, err = store.GetForceBootstrap(ctx, "production")
	require.NoError(t, err)
	assert.False(t, force)
}

func TestBreakerState_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// По умолчанию - начальное состояние
	state, err := store.GetBreakerState(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, models.NewBreakerState(), state)

	until := time.Now().Add(time.Minute).UTC().Truncate(time.Millisecond)
	saved := models.BreakerState{
		ConsecutiveRateLimitErrors: 2,
		BackoffUntil:               &until,
		BackoffMultiplier:          4,
	}
	require.NoError(t, store.SaveBreakerState(ctx, "production", saved))

	state, err = store.GetBreakerState(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, 2, state.ConsecutiveRateLimitErrors)
	assert.Equal(t, 4.0, state.BackoffMultiplier)
	require.NotNil(t, state.BackoffUntil)
	assert.True(t, until.Equal(*state.BackoffUntil))
}

func TestBreakerState_ZeroMultiplierNormalized(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveBreakerState(ctx, "production", models.BreakerState{}))

	state, err := store.GetBreakerState(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, 1.0, state.BackoffMultiplier)
}
