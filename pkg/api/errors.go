package api

// ErrorResponse представляет ответ с ошибкой в старом формате {"error": "..."}
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// ProblemDetails RFC 9457 тело ошибки
type ProblemDetails struct {
	RetryAfter  *int   `json:"retry_after,omitempty"` // секунды до повтора (429, 503)
	Type        string `json:"type"`
	Title       string `json:"title"`
	Detail      string `json:"detail,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	UserMessage string `json:"user_message,omitempty"`
	Status      int    `json:"status"`
}

// Problem type URIs used by the backend.
const (
	ProblemTypeValidation   = "urn:trendy:error:validation"
	ProblemTypeBadRequest   = "urn:trendy:error:bad_request"
	ProblemTypeInvalidUUID  = "urn:trendy:error:invalid_uuid"
	ProblemTypeNotFound     = "urn:trendy:error:not_found"
	ProblemTypeConflict     = "urn:trendy:error:conflict"
	ProblemTypeRateLimit    = "urn:trendy:error:rate_limit"
	ProblemTypeUnauthorized = "urn:trendy:error:unauthorized"
	ProblemTypeInternal     = "urn:trendy:error:internal"
)
