package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/trendysync/pkg/api"
)

// ProblemContentType media type тела ошибки (RFC 9457)
const ProblemContentType = "application/problem+json"

// SendJSON отправляет JSON ответ
func SendJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteProblem отправляет ошибку в формате problem details
func WriteProblem(w http.ResponseWriter, r *http.Request, statusCode int, problemType, detail string) {
	writeProblem(w, r, api.ProblemDetails{
		Type:   problemType,
		Title:  http.StatusText(statusCode),
		Status: statusCode,
		Detail: detail,
	})
}

// WriteRateLimited отправляет 429 с Retry-After в заголовке и в теле
func WriteRateLimited(w http.ResponseWriter, r *http.Request, retryAfterSeconds int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	writeProblem(w, r, api.ProblemDetails{
		Type:        api.ProblemTypeRateLimit,
		Title:       http.StatusText(http.StatusTooManyRequests),
		Status:      http.StatusTooManyRequests,
		Detail:      "rate limit exceeded, please try again later",
		UserMessage: "Too many requests. Please wait a moment.",
		RetryAfter:  &retryAfterSeconds,
	})
}

func writeProblem(w http.ResponseWriter, r *http.Request, problem api.ProblemDetails) {
	problem.RequestID = chimw.GetReqID(r.Context())

	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// internalError логирует причину и отвечает 500 без деталей
func internalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	WriteProblem(w, r, http.StatusInternalServerError, api.ProblemTypeInternal, "internal server error")
}

// decodeJSON читает тело запроса; неизвестные поля допускаются
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
