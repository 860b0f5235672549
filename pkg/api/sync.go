package api

import (
	"encoding/json"

	"github.com/iudanet/trendysync/internal/models"
)

// ChangeFeedResponse ответ GET /api/v1/changes
type ChangeFeedResponse struct {
	Changes    []models.ChangeEntry `json:"changes"`
	NextCursor int64                `json:"next_cursor"` // курсор последней записи страницы (или исходный, если записей нет)
	HasMore    bool                 `json:"has_more"`
}

// LatestCursorResponse ответ GET /api/v1/changes/latest-cursor
type LatestCursorResponse struct {
	Cursor int64 `json:"cursor"`
}

// BatchCreateEventsRequest тело POST /api/v1/events/batch.
// Каждый элемент - уже сериализованный payload мутации.
type BatchCreateEventsRequest struct {
	Events []json.RawMessage `json:"events"`
}

// BatchError ошибка для конкретного элемента батча
type BatchError struct {
	Message string `json:"message"`
	Index   int    `json:"index"` // индекс в BatchCreateEventsRequest.Events
}

// BatchCreateEventsResponse результат пакетного создания событий
type BatchCreateEventsResponse struct {
	Created []models.Event `json:"created"`
	Errors  []BatchError   `json:"errors"`
	Total   int            `json:"total"`
	Success int            `json:"success"`
	Failed  int            `json:"failed"`
}
