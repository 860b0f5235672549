package sync_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/auth"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/client/storage/boltdb"
	clientsqlite "github.com/iudanet/trendysync/internal/client/storage/sqlite"
	"github.com/iudanet/trendysync/internal/client/sync"
	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/internal/server/middleware"
	serversqlite "github.com/iudanet/trendysync/internal/server/storage/sqlite"
)

// device один клиент со своими базами, сессией и движком
type device struct {
	engine  *sync.Engine
	session *auth.Session
}

func startBackend(t *testing.T) (string, *middleware.FaultInjector) {
	t.Helper()

	store, err := serversqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)

	faults := middleware.NewFaultInjector(nil)
	opts := server.DefaultOptions()
	opts.Faults = faults
	router := server.NewRouter(nil, store, jwt.NewService("backend-test-secret-key", 15*time.Minute, time.Hour), opts)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		router.Close()
		_ = store.Close()
	})
	return srv.URL, faults
}

func newDevice(t *testing.T, url string) *device {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	state, err := boltdb.New(ctx, filepath.Join(dir, "state.db"))
	require.NoError(t, err)

	client := api.NewClient(url, api.WithTimeout(5*time.Second))
	session := auth.NewSession(client, state, nil)
	client = client.WithTokens(session)

	openStore := func(ctx context.Context) (storage.LocalStore, error) {
		s, err := clientsqlite.New(ctx, filepath.Join(dir, "store.db"))
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	engine, err := sync.NewEngine(ctx, sync.DefaultConfig(), client, openStore, state, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		engine.ResetDataStore()
		_ = state.Close()
	})

	return &device{engine: engine, session: session}
}

func (d *device) queue(t *testing.T, kind models.EntityType, id string, op models.Operation, v any) {
	t.Helper()
	var payload json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		payload = b
	}
	inserted, err := d.engine.QueueMutation(context.Background(), kind, id, op, payload)
	require.NoError(t, err)
	require.True(t, inserted)
}

func (d *device) sync(t *testing.T) *sync.Result {
	t.Helper()
	res := d.engine.PerformSync(context.Background())
	require.NotNil(t, res)
	return res
}

func (d *device) store(t *testing.T) storage.LocalStore {
	t.Helper()
	s, err := d.engine.LocalStore(context.Background())
	require.NoError(t, err)
	return s
}

func TestEngineAgainstBackend(t *testing.T) {
	ctx := context.Background()
	url, faults := startBackend(t)

	phone := newDevice(t, url)
	_, err := phone.session.Register(ctx, "owner@example.com", "password1")
	require.NoError(t, err)

	laptop := newDevice(t, url)
	_, err = laptop.session.Login(ctx, "owner@example.com", "password1")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	coffee := models.EventType{ID: uuid.NewString(), Name: "Coffee", Color: "#6B4F2A", Icon: "cup", CreatedAt: now, UpdatedAt: now}
	cup := models.Event{ID: uuid.NewString(), EventTypeID: coffee.ID, Timestamp: now, SourceType: "manual", CreatedAt: now, UpdatedAt: now}
	office := models.Geofence{ID: uuid.NewString(), Name: "Office", Latitude: 52.52, Longitude: 13.40, Radius: 120, IsActive: true, CreatedAt: now, UpdatedAt: now}

	// Телефон создаёт данные офлайн и отправляет их первым циклом
	phone.queue(t, models.EntityTypeEvent, cup.ID, models.OperationCreate, &cup)
	phone.queue(t, models.EntityTypeEventType, coffee.ID, models.OperationCreate, &coffee)
	phone.queue(t, models.EntityTypeGeofence, office.ID, models.OperationCreate, &office)

	res := phone.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	assert.True(t, res.Bootstrapped)
	assert.Equal(t, 3, res.Pushed)
	assert.Zero(t, res.PendingAfter)

	// Ноутбук получает всё через bootstrap
	res = laptop.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	assert.True(t, res.Bootstrapped)
	assert.Equal(t, 3, res.Applied)
	assert.Positive(t, res.CursorAfter)

	got, err := laptop.store(t).FindEvent(ctx, cup.ID)
	require.NoError(t, err)
	assert.Equal(t, coffee.ID, got.EventTypeID)
	gotGeofence, err := laptop.store(t).FindGeofence(ctx, office.ID)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, gotGeofence.Radius, 0.001)

	// Удаление на телефоне доходит до ноутбука через changefeed
	phone.queue(t, models.EntityTypeEvent, cup.ID, models.OperationDelete, nil)
	res = phone.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	assert.Equal(t, 1, res.Pushed)

	cursorBefore := laptop.engine.Cursor()
	res = laptop.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	assert.False(t, res.Bootstrapped)
	assert.Greater(t, res.CursorAfter, cursorBefore)
	_, err = laptop.store(t).FindEvent(ctx, cup.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = laptop.store(t).FindEventType(ctx, coffee.ID)
	assert.NoError(t, err)

	// Captive portal прерывает цикл до изменения локальных данных
	renamed := coffee
	renamed.Name = "Espresso"
	renamed.UpdatedAt = now.Add(time.Minute)
	laptop.queue(t, models.EntityTypeEventType, coffee.ID, models.OperationUpdate, &renamed)

	faults.Set(middleware.FaultSettings{CaptivePortal: true})
	cursorBefore = laptop.engine.Cursor()
	res = laptop.sync(t)
	assert.Equal(t, sync.OutcomeHealthCheckFailed, res.Outcome)
	assert.True(t, api.IsDecoding(res.HealthErr), res.HealthErr)
	assert.Equal(t, cursorBefore, laptop.engine.Cursor())

	st, err := laptop.engine.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.PendingMutations)

	// После восстановления сети очередь уходит, телефон видит переименование
	faults.Set(middleware.FaultSettings{})
	res = laptop.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	assert.Equal(t, 1, res.Pushed)

	res = phone.sync(t)
	require.Equal(t, sync.OutcomeSuccess, res.Outcome, res.Err())
	et, err := phone.store(t).FindEventType(ctx, coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Espresso", et.Name)
}

func TestEngineAgainstBackend_RequiresSession(t *testing.T) {
	url, _ := startBackend(t)
	d := newDevice(t, url)

	res := d.sync(t)
	assert.Equal(t, sync.OutcomeHealthCheckFailed, res.Outcome)
	assert.ErrorIs(t, res.HealthErr, api.ErrNoToken)
}
