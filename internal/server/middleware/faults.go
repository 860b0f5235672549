package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/iudanet/trendysync/internal/server/handlers"
	"github.com/iudanet/trendysync/pkg/api"
)

// captivePortalPage отдаётся вместо JSON, как это делают гостевые Wi-Fi сети
const captivePortalPage = `<!DOCTYPE html>
<html><head><title>Sign in to network</title></head>
<body><form method="post"><button>Accept and connect</button></form></body></html>
`

const defaultFaultRetryAfter = 30

// FaultSettings состояние имитации сбоев сети
type FaultSettings struct {
	RateLimitRetryAfter int  `json:"rate_limit_retry_after,omitempty"` // секунды, по умолчанию 30
	RateLimitNext       int  `json:"rate_limit_next"`                  // сколько ближайших запросов получат 429
	CaptivePortal       bool `json:"captive_portal"`
}

// FaultInjector имитирует captive portal и серверный rate limit
// в dev backend. Нулевое значение ничего не делает.
type FaultInjector struct {
	logger   *slog.Logger
	settings FaultSettings
	mu       sync.Mutex
}

// NewFaultInjector создает injector без активных сбоев
func NewFaultInjector(logger *slog.Logger) *FaultInjector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FaultInjector{logger: logger}
}

// Set заменяет текущие настройки
func (f *FaultInjector) Set(s FaultSettings) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
}

// Settings возвращает текущие настройки
func (f *FaultInjector) Settings() FaultSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// next решает судьбу очередного запроса
func (f *FaultInjector) next() (captive bool, retryAfter int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settings.CaptivePortal {
		return true, 0
	}
	if f.settings.RateLimitNext > 0 {
		f.settings.RateLimitNext--
		retryAfter = f.settings.RateLimitRetryAfter
		if retryAfter <= 0 {
			retryAfter = defaultFaultRetryAfter
		}
		return false, retryAfter
	}
	return false, 0
}

// Middleware применяет активные сбои к запросу
func (f *FaultInjector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captive, retryAfter := f.next()

		switch {
		case captive:
			f.logger.DebugContext(r.Context(), "captive portal fault", "path", r.URL.Path)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(captivePortalPage))
		case retryAfter > 0:
			f.logger.DebugContext(r.Context(), "rate limit fault", "path", r.URL.Path)
			handlers.WriteRateLimited(w, r, retryAfter)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Handler обрабатывает GET/PUT /debug/faults
func (f *FaultInjector) Handler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var s FaultSettings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			handlers.WriteProblem(w, r, http.StatusBadRequest, api.ProblemTypeBadRequest, "invalid request body")
			return
		}
		f.Set(s)
		f.logger.InfoContext(r.Context(), "fault settings changed",
			"captive_portal", s.CaptivePortal,
			"rate_limit_next", s.RateLimitNext)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	handlers.SendJSON(w, f.logger, f.Settings(), http.StatusOK)
}
