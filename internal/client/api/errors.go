package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// duplicateMarkers фрагменты сообщений, по которым сервер сообщает о нарушении уникальности
var duplicateMarkers = []string{"duplicate", "unique", "23505"}

// NetworkError transport failure: connection refused, DNS, timeout, reset.
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError a response body that could not be decoded as the expected JSON.
// A captive portal answering with HTML produces this error.
type DecodingError struct {
	Err     error
	Op      string
	Snippet string // начало тела ответа для диагностики
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Op, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// HTTPError non-2xx response that is neither 5xx nor a duplicate conflict.
type HTTPError struct {
	Message    string
	body       []byte
	StatusCode int
	RetryAfter time.Duration // из заголовка Retry-After или problem details, 0 если нет
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// ServerError 5xx response.
type ServerError struct {
	Message    string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// DuplicateConflictError 409 or a uniqueness violation reported by the server.
type DuplicateConflictError struct {
	Message    string
	StatusCode int
}

func (e *DuplicateConflictError) Error() string {
	return fmt.Sprintf("duplicate conflict (%d): %s", e.StatusCode, e.Message)
}

// classifyStatus builds the typed error for a non-2xx response
func classifyStatus(status int, message string, retryAfter time.Duration, body []byte) error {
	if status == http.StatusConflict || hasDuplicateMarker(message) {
		return &DuplicateConflictError{StatusCode: status, Message: message}
	}
	if status >= 500 {
		return &ServerError{StatusCode: status, Message: message}
	}
	return &HTTPError{
		StatusCode: status,
		Message:    message,
		RetryAfter: retryAfter,
		body:       body,
	}
}

func hasDuplicateMarker(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// StatusCode returns the HTTP status carried by err, 0 for transport and decode errors
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.StatusCode
	}
	var dupErr *DuplicateConflictError
	if errors.As(err, &dupErr) {
		return dupErr.StatusCode
	}
	return 0
}

// IsRateLimited reports a 429 response
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// IsDuplicateConflict reports a 409 or uniqueness violation
func IsDuplicateConflict(err error) bool {
	var dupErr *DuplicateConflictError
	return errors.As(err, &dupErr)
}

// IsNotFound reports a 404 response
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports a 401 or 403 response
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}

// IsDecoding reports a malformed response body
func IsDecoding(err error) bool {
	var decErr *DecodingError
	return errors.As(err, &decErr)
}

// IsNetwork reports a transport failure
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsDuplicateMessage reports whether a per-item error message from a batch
// response describes a uniqueness violation
func IsDuplicateMessage(message string) bool {
	return hasDuplicateMarker(message)
}
