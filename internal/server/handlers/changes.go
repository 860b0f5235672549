package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/trendysync/internal/server/storage"
	"github.com/iudanet/trendysync/pkg/api"
)

const (
	// DefaultChangesLimit размер страницы changefeed без limit
	DefaultChangesLimit = 100
	// MaxChangesLimit максимальный размер страницы changefeed
	MaxChangesLimit = 500
)

// ChangesHandler отдаёт changefeed пользователя
type ChangesHandler struct {
	logger *slog.Logger
	store  storage.ChangeStorage
}

// NewChangesHandler создает handler changefeed
func NewChangesHandler(logger *slog.Logger, store storage.ChangeStorage) *ChangesHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChangesHandler{logger: logger, store: store}
}

// Changes обрабатывает GET /api/v1/changes?since=&limit=
func (h *ChangesHandler) Changes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	var since int64
	if v := q.Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "since must be a non-negative integer")
			return
		}
		since = parsed
	}

	limit := DefaultChangesLimit
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, MaxChangesLimit)
	}

	// Берём на одну запись больше, чтобы узнать has_more
	changes, err := h.store.GetChanges(r.Context(), userID, since, limit+1)
	if err != nil {
		internalError(w, r, h.logger, "failed to get changes", err)
		return
	}

	resp := api.ChangeFeedResponse{
		Changes:    changes,
		NextCursor: since,
	}
	if len(changes) > limit {
		resp.Changes = changes[:limit]
		resp.HasMore = true
	}
	if n := len(resp.Changes); n > 0 {
		resp.NextCursor = resp.Changes[n-1].ID
	}

	SendJSON(w, h.logger, resp, http.StatusOK)
}

// LatestCursor обрабатывает GET /api/v1/changes/latest-cursor
func (h *ChangesHandler) LatestCursor(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cursor, err := h.store.GetLatestCursor(r.Context(), userID)
	if err != nil {
		internalError(w, r, h.logger, "failed to get latest cursor", err)
		return
	}

	SendJSON(w, h.logger, api.LatestCursorResponse{Cursor: cursor}, http.StatusOK)
}
