package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/trendysync/internal/models"
	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/pkg/api"
)

// MaxBatchSize максимальное число событий в одном batch запросе
const MaxBatchSize = 500

// BatchCreateEvents обрабатывает POST /api/v1/events/batch.
// Каждый элемент создаётся независимо: 201 если все успешны,
// 207 при частичном успехе, 400 если не создан ни один.
func (h *EntityHandler) BatchCreateEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req api.BatchCreateEventsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
		return
	}

	switch {
	case len(req.Events) == 0:
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation, "events must not be empty")
		return
	case len(req.Events) > MaxBatchSize:
		WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeValidation,
			fmt.Sprintf("batch exceeds %d events", MaxBatchSize))
		return
	}

	resp := api.BatchCreateEventsResponse{
		Created: make([]models.Event, 0, len(req.Events)),
		Errors:  make([]api.BatchError, 0),
		Total:   len(req.Events),
	}

	for i, raw := range req.Events {
		event, err := h.createBatchItem(r, userID, raw)
		if err != nil {
			resp.Errors = append(resp.Errors, api.BatchError{Index: i, Message: err.Error()})
			continue
		}
		resp.Created = append(resp.Created, *event)
	}

	resp.Success = len(resp.Created)
	resp.Failed = len(resp.Errors)

	status := http.StatusCreated
	switch {
	case resp.Success == 0:
		status = http.StatusBadRequest
	case resp.Failed > 0:
		status = http.StatusMultiStatus
	}

	h.logger.InfoContext(ctx, "events batch processed",
		slog.Int("total", resp.Total),
		slog.Int("success", resp.Success),
		slog.Int("failed", resp.Failed))

	SendJSON(w, h.logger, resp, status)
}

// createBatchItem возвращает ошибку, текст которой уходит клиенту
func (h *EntityHandler) createBatchItem(r *http.Request, userID string, raw json.RawMessage) (*models.Event, error) {
	rec, err := h.prepareCreate(r.Context(), userID, models.EntityTypeEvent, raw)
	if err != nil {
		if isValidation(err) {
			return nil, err
		}
		h.logger.ErrorContext(r.Context(), "failed to prepare batch event", slog.Any("error", err))
		return nil, errors.New("internal error")
	}

	if err := h.store.CreateEntity(r.Context(), rec); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, errors.New(conflictMessage(models.EntityTypeEvent))
		}
		h.logger.ErrorContext(r.Context(), "failed to store batch event", slog.Any("error", err))
		return nil, errors.New("internal error")
	}

	var event models.Event
	if err := json.Unmarshal(rec.Data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode stored event: %w", err)
	}
	return &event, nil
}
