// Package boltdb хранит сессию и состояние синхронизации клиента в bbolt.
// Сущности и очередь мутаций живут отдельно, в SQLite.
package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketAuth  = []byte("auth")
	bucketState = []byte("sync_state")
)

// openTimeout ожидание файловой блокировки, если базу держит другой процесс
const openTimeout = time.Second

// Storage state.db клиента
type Storage struct {
	db *bbolt.DB
}

// New открывает (или создаёт) state.db по пути dbPath
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open state db %s: %w", dbPath, err)
	}

	s := &Storage{db: db}
	if err := s.initBuckets(); err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return s, nil
}

// initBuckets создаёт бакеты auth и sync_state, если их нет
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAuth, bucketState} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Close закрывает базу; повторный вызов безопасен
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("bucket %s not found", name)
	}
	return b, nil
}

// putJSON сериализует v в bucket/key одной транзакцией
func (s *Storage) putJSON(name, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// getJSON читает bucket/key в v; false, если ключа нет
func (s *Storage) getJSON(name, key []byte, v any) (bool, error) {
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, name)
		if err != nil {
			return err
		}
		data := b.Get(key)
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		return nil
	})
	return found, err
}
