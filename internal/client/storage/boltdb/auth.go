package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/trendysync/internal/client/storage"
)

// Одна сессия на state.db: каталог данных принадлежит одному пользователю
var keySession = []byte("session")

var _ storage.AuthStorage = (*Storage)(nil)

// SaveAuth replaces the stored session
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if err := s.putJSON(bucketAuth, keySession, auth); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetAuth returns the stored session or storage.ErrAuthNotFound
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	var auth storage.AuthData
	found, err := s.getJSON(bucketAuth, keySession, &auth)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil, storage.ErrAuthNotFound
	}
	return &auth, nil
}

// DeleteAuth forgets the session; storage.ErrAuthNotFound if there is none
func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketAuth)
		if err != nil {
			return err
		}
		if b.Get(keySession) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(keySession)
	})
}
