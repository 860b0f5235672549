package api

import (
	"bytes"
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
	"unicode/utf8"

	"github.com/iudanet/trendysync/pkg/api"
)

const (
	// IdempotencyKeyHeader заголовок, по которому сервер распознаёт повтор запроса
	IdempotencyKeyHeader = "Idempotency-Key"

	defaultTimeout = 30 * time.Second
	snippetLen     = 128
)

// ErrNoToken is returned by a TokenSource when there is no session
var ErrNoToken = errors.New("not authenticated")

var errNotJSON = errors.New("response body is not JSON")

// TokenSource supplies the bearer token attached to every request
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client представляет HTTP клиент для взаимодействия с сервером trendy
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	baseURL    string
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource attaches bearer tokens to requests
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.New(slog.DiscardHandler),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTokens возвращает копию клиента, подписывающую запросы токенами ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// request описание одного вызова API
type request struct {
	body           any
	result         any
	method         string
	path           string
	op             string
	idempotencyKey string
	token          string // явный bearer токен вместо TokenSource
	anonymous      bool   // без bearer токена (login)
}

// do выполняет HTTP запрос и классифицирует ошибку
func (c *Client) do(ctx context.Context, r request) error {
	var bodyReader io.Reader
	if r.body != nil {
		var jsonData []byte
		switch b := r.body.(type) {
		case json.RawMessage:
			jsonData = b
		default:
			var err error
			jsonData, err = json.Marshal(r.body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, r.idempotencyKey)
	}

	switch {
	case r.anonymous:
	case r.token != "":
		req.Header.Set("Authorization", "Bearer "+r.token)
	case c.tokens != nil:
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: r.op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: r.op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := errorMessage(respBody)
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"), respBody)
		return classifyStatus(resp.StatusCode, message, retryAfter, respBody)
	}

	if r.result == nil {
		// пустое тело (204) допустимо; любое другое тело должно быть JSON,
		// иначе это не ответ API (например, страница captive portal)
		if len(bytes.TrimSpace(respBody)) > 0 && !json.Valid(respBody) {
			return &DecodingError{Op: r.op, Err: errNotJSON, Snippet: snippet(respBody)}
		}
		return nil
	}

	if err := json.Unmarshal(respBody, r.result); err != nil {
		return &DecodingError{Op: r.op, Err: err, Snippet: snippet(respBody)}
	}

	return nil
}

// errorMessage достаёт текст ошибки из problem details или {"error": "..."}
func errorMessage(body []byte) string {
	var problem api.ProblemDetails
	if err := json.Unmarshal(body, &problem); err == nil && (problem.Detail != "" || problem.Title != "") {
		if problem.Detail != "" {
			return problem.Detail
		}
		return problem.Title
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && (errResp.Error != "" || errResp.Message != "") {
		if errResp.Message != "" && errResp.Error != "" {
			return errResp.Error + ": " + errResp.Message
		}
		return errResp.Error + errResp.Message
	}

	return snippet(body)
}

func parseRetryAfter(header string, body []byte) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	var problem api.ProblemDetails
	if err := json.Unmarshal(body, &problem); err == nil && problem.RetryAfter != nil && *problem.RetryAfter > 0 {
		return time.Duration(*problem.RetryAfter) * time.Second
	}

	return 0
}

// snippet обрезает тело по границе руны
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= snippetLen {
		return s
	}
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
