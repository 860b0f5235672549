package sync

import (
	"time"

	"github.com/iudanet/trendysync/internal/models"
)

// Outcome итог цикла синхронизации
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomePartial           Outcome = "partial" // хотя бы одна фаза завершилась с ошибкой
	OutcomeHealthCheckFailed Outcome = "health_check_failed"
	OutcomeBackoffActive     Outcome = "backoff_active"
	OutcomeStoreUnavailable  Outcome = "store_unavailable"
)

// Result describes one sync cycle. PerformSync never returns an error;
// callers inspect Outcome and the per-phase errors instead.
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time

	HealthErr    error
	StoreErr     error
	BootstrapErr error
	PullErr      error
	PushErr      error

	Outcome Outcome

	CursorBefore int64
	CursorAfter  int64

	Applied      int // изменения сервера, применённые локально
	Skipped      int // изменения, пропущенные (resurrection, LWW, битые данные)
	Pushed       int // мутации, подтверждённые сервером
	Failed       int // мутации, оставшиеся в очереди с attempts+1
	RateLimited  int // ответы 429
	PendingAfter int

	Bootstrapped   bool
	BreakerTripped bool
	Shared         bool // цикл был общим для нескольких одновременных вызовов
}

// Duration returns how long the cycle took
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err returns the first phase error, nil when the cycle fully succeeded
func (r *Result) Err() error {
	for _, err := range []error{r.HealthErr, r.StoreErr, r.BootstrapErr, r.PullErr, r.PushErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) classify() Outcome {
	if r.BootstrapErr != nil || r.PullErr != nil || r.PushErr != nil || r.Failed > 0 || r.RateLimited > 0 || r.BreakerTripped {
		return OutcomePartial
	}
	return OutcomeSuccess
}

// Status snapshot of engine state for display
type Status struct {
	LastResult       *Result
	Environment      string
	Breaker          models.BreakerState
	Cursor           int64
	PendingMutations int
	BackoffRemaining time.Duration
	ForceBootstrap   bool
	Syncing          bool
}
