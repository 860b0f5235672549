// Package breaker implements the rate-limit circuit breaker used by the push
// engine.
package breaker

import (
	"sync"
	"time"

	"github.com/iudanet/trendysync/internal/models"
)

// Config параметры breaker
type Config struct {
	Threshold     int           // подряд идущих 429 до срабатывания
	BaseBackoff   time.Duration // пауза при множителе 1
	MaxBackoff    time.Duration
	MaxMultiplier float64
}

// DefaultConfig: 3 ошибки, 30s * множитель, не больше 300s, множитель до 10
func DefaultConfig() Config {
	return Config{
		Threshold:     3,
		BaseBackoff:   30 * time.Second,
		MaxBackoff:    300 * time.Second,
		MaxMultiplier: 10,
	}
}

// Decision is the result of consulting the breaker before a send
type Decision int

const (
	// Proceed allows the send
	Proceed Decision = iota
	// Tripped means the threshold was reached just now and backoff started
	Tripped
	// BackingOff means an earlier trip is still in effect
	BackingOff
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Tripped:
		return "tripped"
	case BackingOff:
		return "backing_off"
	default:
		return "unknown"
	}
}

// Breaker is safe for concurrent use
type Breaker struct {
	now   func() time.Time
	state models.BreakerState
	cfg   Config
	mu    sync.Mutex
}

// Option настраивает Breaker
type Option func(*Breaker)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// New creates a breaker starting from a persisted state
func New(cfg Config, state models.BreakerState, opts ...Option) *Breaker {
	if state.BackoffMultiplier < 1 {
		state.BackoffMultiplier = 1
	}
	b := &Breaker{
		cfg:   cfg,
		state: state,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Check must be called before every batch or individual send. It also trips
// a counter restored at the threshold from persisted state.
func (b *Breaker) Check() Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state.BackoffUntil != nil && now.Before(*b.state.BackoffUntil) {
		return BackingOff
	}

	if b.state.ConsecutiveRateLimitErrors < b.cfg.Threshold {
		return Proceed
	}

	b.tripLocked(now)
	return Tripped
}

// RecordRateLimit counts one 429 response. The response that brings the
// counter to the threshold trips the breaker immediately.
func (b *Breaker) RecordRateLimit() Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state.BackoffUntil != nil && now.Before(*b.state.BackoffUntil) {
		return BackingOff
	}

	b.state.ConsecutiveRateLimitErrors++
	if b.state.ConsecutiveRateLimitErrors < b.cfg.Threshold {
		return Proceed
	}

	b.tripLocked(now)
	return Tripped
}

func (b *Breaker) tripLocked(now time.Time) {
	until := now.Add(b.backoffLocked())
	b.state.BackoffUntil = &until
	b.state.BackoffMultiplier = min(b.state.BackoffMultiplier*2, b.cfg.MaxMultiplier)
	// Для следующего срабатывания нужна новая серия из Threshold ошибок
	b.state.ConsecutiveRateLimitErrors = 0
}

func (b *Breaker) backoffLocked() time.Duration {
	d := time.Duration(float64(b.cfg.BaseBackoff) * b.state.BackoffMultiplier)
	return min(d, b.cfg.MaxBackoff)
}

// RecordSuccess resets the consecutive counter. The multiplier is kept so
// escalation carries over to the next burst.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.ConsecutiveRateLimitErrors = 0
}

// Reset clears counter, backoff and multiplier
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = models.NewBreakerState()
}

// IsTripped reports whether backoff is in effect
func (b *Breaker) IsTripped() bool {
	return b.BackoffRemaining() > 0
}

// BackoffRemaining returns time left until sends are allowed again
func (b *Breaker) BackoffRemaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.BackoffUntil == nil {
		return 0
	}
	return max(b.state.BackoffUntil.Sub(b.now()), 0)
}

// State returns a copy of the current state for persistence
func (b *Breaker) State() models.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	if s.BackoffUntil != nil {
		until := *s.BackoffUntil
		s.BackoffUntil = &until
	}
	return s
}
