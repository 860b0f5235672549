package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	userID := uuid.New().String()
	user := &storage.User{
		PasswordHash: []byte("hash"),
		User: models.User{
			ID:        userID,
			Email:     "user_" + userID[:8] + "@example.com",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	require.NoError(t, s.CreateUser(ctx, user))
	return userID
}

func TestStorage_New_RunsMigrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, table := range []string{"users", "refresh_tokens", "entities", "change_log", "idempotency_keys"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	require.NoError(t, s.Ping(context.Background()))
}

func TestStorage_New_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/server.db"

	s, err := New(ctx, path)
	require.NoError(t, err)
	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.Close())

	// Повторное открытие не должно повторно применять миграции
	s, err = New(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	user, err := s.GetUserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}
