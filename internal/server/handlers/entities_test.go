package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/internal/server/storage/sqlite"
)

type entityFixture struct {
	store  *sqlite.Storage
	router chi.Router
	userID string
	now    time.Time
}

// setupEntityRoutes поднимает handler-ы поверх in-memory SQLite;
// все запросы выполняются от имени одного пользователя
func setupEntityRoutes(t *testing.T) *entityFixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &entityFixture{
		store:  store,
		userID: uuid.New().String(),
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateUser(ctx, &storage.User{
		PasswordHash: []byte("hash"),
		User:         models.User{ID: f.userID, Email: "owner@example.com", CreatedAt: f.now, UpdatedAt: f.now},
	}))

	h := NewEntityHandler(setupTestLogger(), store)
	h.now = func() time.Time { return f.now }
	changes := NewChangesHandler(setupTestLogger(), store)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid := r.Header.Get("X-Test-User"); uid != "" {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uid, "")))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), f.userID, "owner@example.com")))
		})
	})
	for path, kind := range map[string]models.EntityType{
		"/event-types": models.EntityTypeEventType,
		"/geofences":   models.EntityTypeGeofence,
		"/events":      models.EntityTypeEvent,
	} {
		r.Get(path, h.List(kind))
		r.Post(path, h.Create(kind))
		r.Get(path+"/{id}", h.Get(kind))
		r.Put(path+"/{id}", h.Update(kind))
		r.Delete(path+"/{id}", h.Delete(kind))
	}
	r.Post("/events/batch", h.BatchCreateEvents)
	r.Get("/event-types/{id}/properties", h.ListProperties)
	r.Post("/event-types/{id}/properties", h.CreateProperty)
	r.Put("/property-definitions/{id}", h.Update(models.EntityTypePropertyDefinition))
	r.Get("/changes", changes.Changes)
	r.Get("/changes/latest-cursor", changes.LatestCursor)
	f.router = r

	return f
}

func (f *entityFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *entityFixture) createEventType(t *testing.T, name string) models.EventType {
	t.Helper()
	w := f.do(t, http.MethodPost, "/event-types", map[string]any{"name": name, "color": "#ff0000", "icon": "star"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var et models.EventType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &et))
	return et
}

func TestEntityHandler_CreateEventType(t *testing.T) {
	f := setupEntityRoutes(t)

	et := f.createEventType(t, "  Coffee ")

	assert.Equal(t, "Coffee", et.Name)
	assert.Equal(t, f.userID, et.UserID)
	_, err := uuid.Parse(et.ID)
	require.NoError(t, err)
	assert.True(t, et.CreatedAt.Equal(f.now))
	assert.True(t, et.UpdatedAt.Equal(f.now))

	w := f.do(t, http.MethodGet, "/event-types/"+et.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.EventType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, et.Name, got.Name)
}

func TestEntityHandler_Create_ClientIDIsKept(t *testing.T) {
	f := setupEntityRoutes(t)
	id := uuid.Must(uuid.NewV7()).String()
	clientCreated := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	w := f.do(t, http.MethodPost, "/event-types", map[string]any{
		"id":         id,
		"name":       "Run",
		"created_at": clientCreated,
		"updated_at": clientCreated,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var et models.EventType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &et))
	assert.Equal(t, id, et.ID)
	assert.True(t, et.CreatedAt.Equal(clientCreated))
	// updated_at всегда выставляет сервер
	assert.True(t, et.UpdatedAt.Equal(f.now))

	// Повторная отправка того же create заменяет запись
	w = f.do(t, http.MethodPost, "/event-types", map[string]any{"id": id, "name": "Running"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/event-types", nil)
	var list []models.EventType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Running", list[0].Name)
}

func TestEntityHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		body       any
		name       string
		path       string
		wantType   string
		wantStatus int
	}{
		{name: "empty body", path: "/event-types", body: nil, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:bad_request"},
		{name: "malformed json", path: "/event-types", body: "{", wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "missing name", path: "/event-types", body: map[string]any{"color": "red"}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "bad id", path: "/event-types", body: map[string]any{"id": "not-a-uuid", "name": "x"}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "geofence radius", path: "/geofences", body: map[string]any{"name": "Home", "latitude": 1, "longitude": 2, "radius": 0}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "geofence latitude", path: "/geofences", body: map[string]any{"name": "Home", "latitude": 95, "longitude": 2, "radius": 10}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "event without timestamp", path: "/events", body: map[string]any{"event_type_id": uuid.NewString()}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
		{name: "event with unknown type", path: "/events", body: map[string]any{"event_type_id": uuid.NewString(), "timestamp": time.Now()}, wantStatus: http.StatusBadRequest, wantType: "urn:trendy:error:validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupEntityRoutes(t)

			w := f.do(t, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			p := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, p.Type)
		})
	}
}

func TestEntityHandler_DuplicateNameConflict(t *testing.T) {
	f := setupEntityRoutes(t)
	f.createEventType(t, "Coffee")

	w := f.do(t, http.MethodPost, "/event-types", map[string]any{"name": "Coffee"})

	assert.Equal(t, http.StatusConflict, w.Code)
	p := decodeProblem(t, w)
	assert.Contains(t, p.Detail, "duplicate")
}

func TestEntityHandler_OtherUserCannotSeeEntity(t *testing.T) {
	f := setupEntityRoutes(t)
	et := f.createEventType(t, "Private")

	req := httptest.NewRequest(http.MethodGet, "/event-types/"+et.ID, nil)
	req.Header.Set("X-Test-User", uuid.NewString())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntityHandler_Update(t *testing.T) {
	f := setupEntityRoutes(t)
	et := f.createEventType(t, "Tea")
	created := f.now
	f.now = f.now.Add(time.Hour)

	w := f.do(t, http.MethodPut, "/event-types/"+et.ID, map[string]any{"name": "Green tea", "color": "green"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.EventType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, et.ID, updated.ID)
	assert.Equal(t, "Green tea", updated.Name)
	assert.True(t, updated.CreatedAt.Equal(created))
	assert.True(t, updated.UpdatedAt.Equal(f.now))
}

func TestEntityHandler_Update_Errors(t *testing.T) {
	f := setupEntityRoutes(t)
	et := f.createEventType(t, "Tea")
	f.createEventType(t, "Coffee")

	tests := []struct {
		body       any
		name       string
		path       string
		wantStatus int
	}{
		{name: "invalid uuid", path: "/event-types/abc", body: map[string]any{"name": "x"}, wantStatus: http.StatusBadRequest},
		{name: "not found", path: "/event-types/" + uuid.NewString(), body: map[string]any{"name": "x"}, wantStatus: http.StatusNotFound},
		{name: "id mismatch", path: "/event-types/" + et.ID, body: map[string]any{"id": uuid.NewString(), "name": "x"}, wantStatus: http.StatusBadRequest},
		{name: "name taken", path: "/event-types/" + et.ID, body: map[string]any{"name": "Coffee"}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
		})
	}
}

func TestEntityHandler_Delete(t *testing.T) {
	f := setupEntityRoutes(t)
	et := f.createEventType(t, "Temp")

	w := f.do(t, http.MethodDelete, "/event-types/"+et.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/event-types/"+et.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/event-types/"+et.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntityHandler_Properties(t *testing.T) {
	f := setupEntityRoutes(t)
	et := f.createEventType(t, "Workout")

	w := f.do(t, http.MethodPost, "/event-types/"+et.ID+"/properties", map[string]any{
		"key":           "duration",
		"label":         "Duration",
		"property_type": "duration",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var prop models.PropertyDefinition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prop))
	assert.Equal(t, et.ID, prop.EventTypeID)

	w = f.do(t, http.MethodGet, "/event-types/"+et.ID+"/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var props []models.PropertyDefinition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &props))
	require.Len(t, props, 1)
	assert.Equal(t, "duration", props[0].Key)

	t.Run("same key conflicts", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/event-types/"+et.ID+"/properties", map[string]any{
			"key": "duration", "property_type": "number",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("body parent mismatch", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/event-types/"+et.ID+"/properties", map[string]any{
			"event_type_id": uuid.NewString(), "key": "other", "property_type": "text",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown property type", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/event-types/"+et.ID+"/properties", map[string]any{
			"key": "other", "property_type": "color",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing event type", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/event-types/"+uuid.NewString()+"/properties", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update keeps parent", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/property-definitions/"+prop.ID, map[string]any{
			"event_type_id": et.ID, "key": "duration", "label": "Time spent", "property_type": "duration",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated models.PropertyDefinition
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "Time spent", updated.Label)
	})
}

func TestEntityHandler_ListEvents_Paging(t *testing.T) {
	f := setupEntityRoutes(t)
	coffee := f.createEventType(t, "Coffee")
	tea := f.createEventType(t, "Tea")

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		f.now = f.now.Add(time.Second)
		typeID := coffee.ID
		if i%2 == 1 {
			typeID = tea.ID
		}
		w := f.do(t, http.MethodPost, "/events", map[string]any{
			"event_type_id": typeID,
			"timestamp":     base.Add(time.Duration(i) * time.Hour),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantCode  int
	}{
		{name: "default page", query: "", wantCount: 5, wantCode: http.StatusOK},
		{name: "limit", query: "?limit=2", wantCount: 2, wantCode: http.StatusOK},
		{name: "offset", query: "?limit=2&offset=4", wantCount: 1, wantCode: http.StatusOK},
		{name: "filter by type", query: "?event_type_id=" + coffee.ID, wantCount: 3, wantCode: http.StatusOK},
		{name: "bad limit", query: "?limit=0", wantCode: http.StatusBadRequest},
		{name: "bad offset", query: "?offset=-1", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/events"+tt.query, nil)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var events []models.Event
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
			assert.Len(t, events, tt.wantCount)
			for _, e := range events {
				assert.Equal(t, "manual", e.SourceType)
			}
		})
	}
}

func TestEntityHandler_List_EmptyIsArray(t *testing.T) {
	f := setupEntityRoutes(t)

	w := f.do(t, http.MethodGet, "/geofences", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestEntityHandler_RequiresUser(t *testing.T) {
	h := NewEntityHandler(nil, nil)

	w := httptest.NewRecorder()
	h.List(models.EntityTypeEventType)(w, httptest.NewRequest(http.MethodGet, "/event-types", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
