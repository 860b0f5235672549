package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/auth"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/client/storage/boltdb"
	"github.com/iudanet/trendysync/internal/client/storage/sqlite"
	"github.com/iudanet/trendysync/internal/client/sync"
	"github.com/iudanet/trendysync/internal/config"
)

var _ sync.NetworkClient = (*api.Client)(nil)

// BuildApp открывает state.db (bbolt) и собирает сессию, API клиент и движок.
// store.db (SQLite) открывается движком лениво.
func BuildApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := cfg.Log.NewLogger(os.Stderr)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	state, err := boltdb.New(ctx, cfg.StatePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	client := api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)
	session := auth.NewSession(client, state, logger)
	client = client.WithTokens(session)

	openStore := func(ctx context.Context) (storage.LocalStore, error) {
		s, err := sqlite.New(ctx, cfg.StorePath())
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	metrics := sync.NewMetrics()
	engine, err := sync.NewEngine(ctx, cfg.SyncEngineConfig(), client, openStore, state, logger, sync.WithMetrics(metrics))
	if err != nil {
		return nil, errors.Join(err, state.Close())
	}

	return &App{
		Auth:    session,
		Sync:    engine,
		Metrics: metrics,
		Config:  cfg,
		Logger:  logger,
		Close: func() error {
			engine.ResetDataStore()
			return state.Close()
		},
	}, nil
}
