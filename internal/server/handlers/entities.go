package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/internal/validation"
	"github.com/iudanet/trendysync/pkg/api"
)

const (
	// DefaultEventsLimit размер страницы GET /events без limit
	DefaultEventsLimit = 100
	// MaxEventsLimit максимальный limit для GET /events
	MaxEventsLimit = 500

	maxBodyBytes = 4 << 20
)

// EntityHandler обрабатывает CRUD запросы для всех видов сущностей
type EntityHandler struct {
	logger *slog.Logger
	store  storage.EntityStorage
	now    func() time.Time
}

// NewEntityHandler создает handler сущностей
func NewEntityHandler(logger *slog.Logger, store storage.EntityStorage) *EntityHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EntityHandler{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

// List обрабатывает GET /api/v1/{kind}. События отдаются страницами limit/offset.
func (h *EntityHandler) List(kind models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var filter storage.ListFilter
		if kind == models.EntityTypeEvent {
			var err error
			filter, err = pageFilter(r)
			if err != nil {
				WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, err.Error())
				return
			}
			filter.ParentID = r.URL.Query().Get("event_type_id")
		}

		h.list(w, r, userID, kind, filter)
	}
}

// ListProperties обрабатывает GET /api/v1/event-types/{id}/properties
func (h *EntityHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	eventTypeID, ok := pathID(w, r)
	if !ok {
		return
	}

	if !h.parentExists(w, r, userID, eventTypeID, http.StatusNotFound) {
		return
	}

	h.list(w, r, userID, models.EntityTypePropertyDefinition, storage.ListFilter{ParentID: eventTypeID})
}

// Get обрабатывает GET /api/v1/{kind}/{id}
func (h *EntityHandler) Get(kind models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := h.store.GetEntity(r.Context(), userID, kind, id)
		if err != nil {
			h.storeError(w, r, kind, err)
			return
		}

		sendRaw(w, data, http.StatusOK)
	}
}

// Create обрабатывает POST /api/v1/{kind}.
// Повторный create с тем же id того же пользователя заменяет запись.
func (h *EntityHandler) Create(kind models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		body, ok := readBody(w, r)
		if !ok {
			return
		}

		h.create(w, r, userID, kind, body)
	}
}

// CreateProperty обрабатывает POST /api/v1/event-types/{id}/properties
func (h *EntityHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	eventTypeID, ok := pathID(w, r)
	if !ok {
		return
	}

	if !h.parentExists(w, r, userID, eventTypeID, http.StatusNotFound) {
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	// event_type_id берётся из пути
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
		return
	}
	if raw, exists := fields["event_type_id"]; exists {
		var bodyParent string
		if err := json.Unmarshal(raw, &bodyParent); err != nil || (bodyParent != "" && !strings.EqualFold(bodyParent, eventTypeID)) {
			WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, "event_type_id does not match path")
			return
		}
	}
	fields["event_type_id"], _ = json.Marshal(eventTypeID)
	body, _ = json.Marshal(fields)

	h.create(w, r, userID, models.EntityTypePropertyDefinition, body)
}

// Update обрабатывает PUT /api/v1/{kind}/{id}
func (h *EntityHandler) Update(kind models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r)
		if !ok {
			return
		}

		existing, err := h.store.GetEntity(ctx, userID, kind, id)
		if err != nil {
			h.storeError(w, r, kind, err)
			return
		}
		var prev struct {
			CreatedAt time.Time `json:"created_at"`
		}
		_ = json.Unmarshal(existing, &prev)

		doc, err := parseDocument(kind, body, stamp{
			id:        id,
			userID:    userID,
			createdAt: prev.CreatedAt,
			now:       h.now(),
		})
		if err != nil {
			h.documentError(w, r, err)
			return
		}

		if doc.parentID != "" && !h.parentExists(w, r, userID, doc.parentID, http.StatusBadRequest) {
			return
		}

		rec, err := doc.record(kind, userID)
		if err != nil {
			internalError(w, r, h.logger, "failed to encode entity", err)
			return
		}

		if err := h.store.UpdateEntity(ctx, rec); err != nil {
			h.storeError(w, r, kind, err)
			return
		}

		h.logger.InfoContext(ctx, "entity updated", slog.String("kind", string(kind)), slog.String("id", id))
		sendRaw(w, rec.Data, http.StatusOK)
	}
}

// Delete обрабатывает DELETE /api/v1/{kind}/{id}
func (h *EntityHandler) Delete(kind models.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := h.store.DeleteEntity(r.Context(), userID, kind, id); err != nil {
			h.storeError(w, r, kind, err)
			return
		}

		h.logger.InfoContext(r.Context(), "entity deleted", slog.String("kind", string(kind)), slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *EntityHandler) create(w http.ResponseWriter, r *http.Request, userID string, kind models.EntityType, body []byte) {
	rec, err := h.prepareCreate(r.Context(), userID, kind, body)
	if err != nil {
		h.documentError(w, r, err)
		return
	}

	if err := h.store.CreateEntity(r.Context(), rec); err != nil {
		h.storeError(w, r, kind, err)
		return
	}

	h.logger.InfoContext(r.Context(), "entity created", slog.String("kind", string(kind)), slog.String("id", rec.ID))
	sendRaw(w, rec.Data, http.StatusCreated)
}

// prepareCreate разбирает документ и проверяет ссылку на EventType
func (h *EntityHandler) prepareCreate(ctx context.Context, userID string, kind models.EntityType, body []byte) (*storage.EntityRecord, error) {
	doc, err := parseDocument(kind, body, stamp{userID: userID, now: h.now()})
	if err != nil {
		return nil, err
	}

	if doc.parentID != "" {
		if _, err := h.store.GetEntity(ctx, userID, models.EntityTypeEventType, doc.parentID); err != nil {
			if errors.Is(err, storage.ErrEntityNotFound) {
				return nil, invalid("event type %s not found", doc.parentID)
			}
			return nil, fmt.Errorf("failed to check event type: %w", err)
		}
	}

	return doc.record(kind, userID)
}

func (h *EntityHandler) list(w http.ResponseWriter, r *http.Request, userID string, kind models.EntityType, filter storage.ListFilter) {
	docs, err := h.store.ListEntities(r.Context(), userID, kind, filter)
	if err != nil {
		internalError(w, r, h.logger, "failed to list entities", err)
		return
	}

	SendJSON(w, h.logger, docs, http.StatusOK)
}

// parentExists проверяет EventType; при отсутствии отвечает missingStatus
func (h *EntityHandler) parentExists(w http.ResponseWriter, r *http.Request, userID, eventTypeID string, missingStatus int) bool {
	_, err := h.store.GetEntity(r.Context(), userID, models.EntityTypeEventType, eventTypeID)
	if err == nil {
		return true
	}

	if errors.Is(err, storage.ErrEntityNotFound) {
		problemType := api.ProblemTypeNotFound
		if missingStatus == http.StatusBadRequest {
			problemType = api.ProblemTypeValidation
		}
		WriteProblem(w, r, missingStatus, problemType, fmt.Sprintf("event type %s not found", eventTypeID))
		return false
	}

	internalError(w, r, h.logger, "failed to check event type", err)
	return false
}

func (h *EntityHandler) documentError(w http.ResponseWriter, r *http.Request, err error) {
	if isValidation(err) {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, err.Error())
		return
	}
	internalError(w, r, h.logger, "failed to parse entity", err)
}

func (h *EntityHandler) storeError(w http.ResponseWriter, r *http.Request, kind models.EntityType, err error) {
	switch {
	case errors.Is(err, storage.ErrEntityNotFound):
		WriteProblem(w, r, http.StatusNotFound, api.ProblemTypeNotFound, fmt.Sprintf("%s not found", kind))
	case errors.Is(err, storage.ErrConflict):
		WriteProblem(w, r, http.StatusConflict, api.ProblemTypeConflict, conflictMessage(kind))
	default:
		internalError(w, r, h.logger, "entity storage failed", err)
	}
}

func conflictMessage(kind models.EntityType) string {
	return fmt.Sprintf("duplicate %s: unique constraint violation", kind)
}

// requireUser достаёт user_id, установленный AuthMiddleware
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, api.ProblemTypeUnauthorized, "authentication required")
	}
	return userID, ok
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateEntityID(id); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeInvalidUUID, err.Error())
		return "", false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
		return nil, false
	}
	return body, true
}

func pageFilter(r *http.Request) (storage.ListFilter, error) {
	filter := storage.ListFilter{Limit: DefaultEventsLimit}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("limit must be a positive integer")
		}
		filter.Limit = min(limit, MaxEventsLimit)
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func sendRaw(w http.ResponseWriter, data []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(data)
}
