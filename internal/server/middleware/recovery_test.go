package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/trendysync/internal/server/handlers"
	"github.com/iudanet/trendysync/pkg/api"
)

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	handler := RecoveryMiddleware(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	tests := []struct {
		value any
		name  string
	}{
		{name: "string", value: "something went wrong"},
		{name: "error", value: assert.AnError},
		{name: "struct", value: struct{ Code int }{Code: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RecoveryMiddleware(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			w := httptest.NewRecorder()
			require.NotPanics(t, func() {
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, handlers.ProblemContentType, w.Header().Get("Content-Type"))

			var p api.ProblemDetails
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, api.ProblemTypeInternal, p.Type)
			assert.NotContains(t, w.Body.String(), "went wrong")
		})
	}
}

func TestRecoveryMiddleware_AbortHandlerRepanics(t *testing.T) {
	handler := RecoveryMiddleware(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	})
}
