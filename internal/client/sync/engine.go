package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/trendysync/internal/client/breaker"
	"github.com/iudanet/trendysync/internal/client/queue"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/pkg/api"
)

//go:generate moq -out networkclient_mock.go . NetworkClient
//go:generate moq -out service_mock.go . Service

// NetworkClient is the remote side of the engine
type NetworkClient interface {
	HealthProbe(ctx context.Context) error
	GetChanges(ctx context.Context, since int64, limit int) (*api.ChangeFeedResponse, error)
	GetLatestCursor(ctx context.Context) (int64, error)

	GetAllEventTypes(ctx context.Context) ([]models.EventType, error)
	GetAllGeofences(ctx context.Context) ([]models.Geofence, error)
	GetAllEvents(ctx context.Context) ([]models.Event, error)
	GetPropertyDefinitions(ctx context.Context, eventTypeID string) ([]models.PropertyDefinition, error)

	CreateEntity(ctx context.Context, kind models.EntityType, payload json.RawMessage, idempotencyKey string) error
	UpdateEntity(ctx context.Context, kind models.EntityType, id string, payload json.RawMessage, idempotencyKey string) error
	DeleteEntity(ctx context.Context, kind models.EntityType, id string, idempotencyKey string) error
	CreateEventsBatch(ctx context.Context, payloads []json.RawMessage, idempotencyKey string) (*api.BatchCreateEventsResponse, error)
}

// Service is what the CLI uses
type Service interface {
	PerformSync(ctx context.Context) *Result
	QueueMutation(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (bool, error)
	ForceBootstrap(ctx context.Context) error
	ResetCircuitBreaker(ctx context.Context) error
	ResetDataStore()
	Status(ctx context.Context) (*Status, error)
}

// StoreOpener opens a fresh handle to the local store
type StoreOpener func(ctx context.Context) (storage.LocalStore, error)

const (
	// DefaultPageSize размер страницы changefeed
	DefaultPageSize = 100

	// SentinelCursor используется, если после bootstrap не удалось узнать
	// последний курсор сервера. Ноль снова запустил бы bootstrap.
	SentinelCursor int64 = 1_000_000_000

	defaultPropertyFetchConcurrency = 4
)

// Config параметры движка синхронизации
type Config struct {
	Environment              string // пространство имён курсора (production, staging)
	PageSize                 int
	BatchSize                int
	PropertyFetchConcurrency int
	Breaker                  breaker.Config
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Environment:              "production",
		PageSize:                 DefaultPageSize,
		BatchSize:                queue.DefaultBatchSize,
		PropertyFetchConcurrency: defaultPropertyFetchConcurrency,
		Breaker:                  breaker.DefaultConfig(),
	}
}

// Engine coordinates health probe, bootstrap or pull, and flush.
// All mutable state is guarded by mu; it is re-read after every network or
// store call because other operations may interleave there.
type Engine struct {
	client    NetworkClient
	openStore StoreOpener
	state     storage.StateStorage
	breaker   *breaker.Breaker
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
	notifier  *notifier

	store          storage.LocalStore
	lastResult     *Result
	pendingDeletes map[string]struct{}

	cfg    Config
	group  singleflight.Group
	cursor int64

	mu      sync.Mutex
	syncing bool
}

// Option настраивает Engine
type Option func(*Engine)

// WithClock overrides time.Now for the engine and its breaker
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics attaches a metrics set
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine loads cursor and breaker state and returns a ready engine.
// The local store is opened lazily on first use.
func NewEngine(ctx context.Context, cfg Config, client NetworkClient, openStore StoreOpener, state storage.StateStorage, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = queue.DefaultBatchSize
	}
	if cfg.PropertyFetchConcurrency <= 0 {
		cfg.PropertyFetchConcurrency = defaultPropertyFetchConcurrency
	}
	if cfg.Breaker.Threshold <= 0 {
		cfg.Breaker = breaker.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		cfg:       cfg,
		client:    client,
		openStore: openStore,
		state:     state,
		logger:    logger,
		now:       time.Now,
		notifier:  newNotifier(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics()
	}

	cursor, err := state.GetCursor(ctx, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync cursor: %w", err)
	}
	e.cursor = cursor

	breakerState, err := state.GetBreakerState(ctx, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load breaker state: %w", err)
	}
	e.breaker = breaker.New(cfg.Breaker, breakerState, breaker.WithClock(e.now))

	return e, nil
}

// PerformSync runs one sync cycle. Concurrent callers share the in-flight
// cycle and receive its result with Shared set. The cycle is detached from
// the caller's cancellation.
func (e *Engine) PerformSync(ctx context.Context) *Result {
	v, _, shared := e.group.Do("sync", func() (any, error) {
		return e.run(context.WithoutCancel(ctx)), nil
	})

	res := *v.(*Result)
	res.Shared = shared
	return &res
}

// run один цикл синхронизации; флаг syncing снимается на всех путях выхода
func (e *Engine) run(ctx context.Context) *Result {
	res := &Result{StartedAt: e.now()}

	e.mu.Lock()
	e.syncing = true
	res.CursorBefore = e.cursor
	e.mu.Unlock()

	defer func() {
		res.FinishedAt = e.now()

		e.mu.Lock()
		e.syncing = false
		res.CursorAfter = e.cursor
		e.lastResult = res
		e.mu.Unlock()

		e.metrics.observeCycle(res)
		e.logger.Info("sync finished",
			"outcome", res.Outcome,
			"cursor", res.CursorAfter,
			"applied", res.Applied,
			"skipped", res.Skipped,
			"pushed", res.Pushed,
			"failed", res.Failed,
			"rate_limited", res.RateLimited,
			"duration", res.Duration())

		// Сигнал отправляется после всей работы с курсором и состоянием цикла
		if res.Bootstrapped && res.BootstrapErr == nil {
			e.notifier.publish(BootstrapCompleted{At: res.FinishedAt, Cursor: res.CursorAfter})
		}
	}()

	if remaining := e.breaker.BackoffRemaining(); remaining > 0 {
		e.logger.Info("sync skipped: rate limit backoff active", "remaining", remaining)
		res.Outcome = OutcomeBackoffActive
		return res
	}

	if err := e.healthCheck(ctx, res); err != nil {
		res.HealthErr = err
		res.Outcome = OutcomeHealthCheckFailed
		return res
	}

	store, err := e.localStore(ctx)
	if err != nil {
		e.logger.Error("local store unavailable", "error", err)
		res.StoreErr = err
		res.Outcome = OutcomeStoreUnavailable
		return res
	}

	needBootstrap, err := e.needsBootstrap(ctx)
	if err != nil {
		res.StoreErr = err
		res.Outcome = OutcomeStoreUnavailable
		return res
	}

	if needBootstrap {
		res.Bootstrapped = true
		if err := e.bootstrap(ctx, store, res); err != nil {
			e.logger.Error("bootstrap failed", "error", err)
			res.BootstrapErr = err
		}
	} else if err := e.pull(ctx, store, res); err != nil {
		e.logger.Error("pull failed", "error", err)
		res.PullErr = err
	} else {
		e.checkRelationships(ctx, store)
	}

	// Flush выполняется после любого из путей
	if err := e.flush(ctx, store, res); err != nil {
		e.logger.Error("flush failed", "error", err)
		res.PushErr = err
	}

	if n, err := store.CountPendingMutations(ctx); err == nil {
		res.PendingAfter = n
		e.metrics.pending.Set(float64(n))
	}

	res.Outcome = res.classify()
	return res
}

func (e *Engine) needsBootstrap(ctx context.Context) (bool, error) {
	force, err := e.state.GetForceBootstrap(ctx, e.cfg.Environment)
	if err != nil {
		return false, fmt.Errorf("failed to read force bootstrap flag: %w", err)
	}

	e.mu.Lock()
	cursor := e.cursor
	e.mu.Unlock()

	return cursor == 0 || force, nil
}

// localStore returns the cached handle, opening it if needed
func (e *Engine) localStore(ctx context.Context) (storage.LocalStore, error) {
	e.mu.Lock()
	if e.store != nil {
		s := e.store
		e.mu.Unlock()
		return s, nil
	}
	e.mu.Unlock()

	opened, err := e.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Пока открывали, другой вызов мог уже закешировать handle
	if e.store != nil {
		_ = opened.Close()
		return e.store, nil
	}
	e.store = opened
	return opened, nil
}

// ResetDataStore drops and closes the cached store handle immediately, even
// while a sync is running; the next operation opens a fresh one.
func (e *Engine) ResetDataStore() {
	e.mu.Lock()
	s := e.store
	e.store = nil
	e.mu.Unlock()

	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		e.logger.Warn("failed to close local store", "error", err)
	}
	e.logger.Info("local store handle reset")
}

// QueueMutation records a local change using the engine's store handle.
// Returns false if the same (kind, entityID, op) is already queued.
func (e *Engine) QueueMutation(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (bool, error) {
	store, err := e.localStore(ctx)
	if err != nil {
		return false, err
	}

	_, inserted, err := queue.New(store, e.logger).Enqueue(ctx, kind, entityID, op, payload)
	if err != nil {
		return false, err
	}

	if n, err := store.CountPendingMutations(ctx); err == nil {
		e.metrics.pending.Set(float64(n))
	}
	return inserted, nil
}

// LocalStore exposes the cached handle for reads by the host application
func (e *Engine) LocalStore(ctx context.Context) (storage.LocalStore, error) {
	return e.localStore(ctx)
}

// ForceBootstrap makes the next cycle replace all local data
func (e *Engine) ForceBootstrap(ctx context.Context) error {
	if err := e.state.SetForceBootstrap(ctx, e.cfg.Environment, true); err != nil {
		return fmt.Errorf("failed to set force bootstrap flag: %w", err)
	}
	return nil
}

// ResetCircuitBreaker clears counters, backoff and multiplier
func (e *Engine) ResetCircuitBreaker(ctx context.Context) error {
	e.breaker.Reset()
	return e.saveBreaker(ctx)
}

// IsCircuitBreakerTripped reports whether rate-limit backoff is active
func (e *Engine) IsCircuitBreakerTripped() bool {
	return e.breaker.IsTripped()
}

// BackoffRemaining returns time left until sync may run again
func (e *Engine) BackoffRemaining() time.Duration {
	return e.breaker.BackoffRemaining()
}

// IsSyncing reports whether a cycle is running
func (e *Engine) IsSyncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// Cursor returns the current changefeed cursor
func (e *Engine) Cursor() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// LastResult returns the result of the last finished cycle, nil if none
func (e *Engine) LastResult() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastResult == nil {
		return nil
	}
	res := *e.lastResult
	return &res
}

// PendingCount returns the number of queued mutations
func (e *Engine) PendingCount(ctx context.Context) (int, error) {
	store, err := e.localStore(ctx)
	if err != nil {
		return 0, err
	}
	return queue.New(store, e.logger).Count(ctx)
}

// Status collects engine state for display
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	pending, err := e.PendingCount(ctx)
	if err != nil {
		return nil, err
	}

	force, err := e.state.GetForceBootstrap(ctx, e.cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to read force bootstrap flag: %w", err)
	}

	st := &Status{
		Environment:      e.cfg.Environment,
		Cursor:           e.Cursor(),
		PendingMutations: pending,
		ForceBootstrap:   force,
		Syncing:          e.IsSyncing(),
		Breaker:          e.breaker.State(),
		BackoffRemaining: e.breaker.BackoffRemaining(),
		LastResult:       e.LastResult(),
	}
	return st, nil
}

// SubscribeBootstrap returns a channel receiving one value per completed
// bootstrap, and a func to unsubscribe
func (e *Engine) SubscribeBootstrap() (<-chan BootstrapCompleted, func()) {
	return e.notifier.subscribe()
}

// Metrics returns the engine metrics
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// advanceCursor сохраняет next, только если он строго больше текущего
func (e *Engine) advanceCursor(ctx context.Context, next int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if next <= e.cursor {
		return false, nil
	}
	if err := e.state.SaveCursor(ctx, e.cfg.Environment, next); err != nil {
		return false, fmt.Errorf("failed to save cursor: %w", err)
	}
	e.cursor = next
	return true, nil
}

// setCursor заменяет курсор после bootstrap: локальные данные заменены целиком,
// поэтому базой становится текущий курсор сервера
func (e *Engine) setCursor(ctx context.Context, cursor int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.SaveCursor(ctx, e.cfg.Environment, cursor); err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	e.cursor = cursor
	return nil
}

// recordRateLimit учитывает 429 в breaker и результате цикла
func (e *Engine) recordRateLimit(res *Result) {
	res.RateLimited++
	if e.breaker.RecordRateLimit() == breaker.Tripped {
		res.BreakerTripped = true
		e.logger.Warn("circuit breaker tripped",
			"backoff", e.breaker.BackoffRemaining())
	}
}

func (e *Engine) saveBreaker(ctx context.Context) error {
	if err := e.state.SaveBreakerState(ctx, e.cfg.Environment, e.breaker.State()); err != nil {
		return fmt.Errorf("failed to save breaker state: %w", err)
	}
	return nil
}

// capturePendingDeletes фиксирует набор id с ожидающим delete до начала пагинации
func (e *Engine) capturePendingDeletes(ctx context.Context, store storage.LocalStore) error {
	set, err := queue.New(store, e.logger).PendingDeletes(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.pendingDeletes = set
	e.mu.Unlock()
	return nil
}

func (e *Engine) clearPendingDeletes() {
	e.mu.Lock()
	e.pendingDeletes = nil
	e.mu.Unlock()
}

// isPendingDelete checks the captured set first, then the persisted queue.
// The second check catches deletes queued after the set was captured or
// lost across a restart.
func (e *Engine) isPendingDelete(ctx context.Context, store storage.LocalStore, entityID string) (bool, error) {
	e.mu.Lock()
	_, ok := e.pendingDeletes[entityID]
	e.mu.Unlock()
	if ok {
		return true, nil
	}

	found, err := store.HasPendingDelete(ctx, entityID)
	if err != nil {
		return false, fmt.Errorf("failed to check pending delete: %w", err)
	}
	return found, nil
}

// checkRelationships логирует события со ссылкой на отсутствующий EventType
func (e *Engine) checkRelationships(ctx context.Context, store storage.LocalStore) {
	ids, err := store.DanglingEventRefs(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrStoreClosed) {
			e.logger.Warn("failed to check event type references", "error", err)
		}
		return
	}
	if len(ids) > 0 {
		e.logger.Warn("events reference missing event types",
			"count", len(ids),
			"event_ids", ids)
	}
}
