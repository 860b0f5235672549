package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/trendysync/internal/client/api"
)

// healthCheck делает ровно один запрос. Любая ошибка, включая ошибку
// декодирования ответа, прерывает весь цикл до изменения локальных данных.
func (e *Engine) healthCheck(ctx context.Context, res *Result) error {
	err := e.client.HealthProbe(ctx)
	if err == nil {
		return nil
	}

	e.logger.Warn("health check failed, sync aborted",
		"error", err,
		"reason", failureReason(err))

	if api.IsRateLimited(err) {
		e.recordRateLimit(res)
		if saveErr := e.saveBreaker(ctx); saveErr != nil {
			e.logger.Warn("failed to persist breaker state", "error", saveErr)
		}
	}

	return fmt.Errorf("health check: %w", err)
}

func failureReason(err error) string {
	switch {
	case api.IsUnauthorized(err):
		return "unauthorized"
	case api.IsRateLimited(err):
		return "rate_limited"
	case api.IsDecoding(err):
		return "decoding"
	case api.IsNetwork(err):
		return "network"
	case api.StatusCode(err) >= 500:
		return "server"
	default:
		return "other"
	}
}
