package models

import (
	"encoding/json"
	"time"
)

// ChangeEntry одна запись серверного changefeed.
// ID - монотонный курсор.
type ChangeEntry struct {
	CreatedAt  time.Time       `json:"created_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
	EntityType EntityType      `json:"entity_type"`
	Operation  Operation       `json:"operation"`
	EntityID   string          `json:"entity_id"`
	Data       json.RawMessage `json:"data,omitempty"` // nil для delete
	ID         int64           `json:"id"`
}

// BreakerState persisted circuit breaker counters.
type BreakerState struct {
	BackoffUntil               *time.Time `json:"backoff_until,omitempty"`
	ConsecutiveRateLimitErrors int        `json:"consecutive_rate_limit_errors"`
	BackoffMultiplier          float64    `json:"backoff_multiplier"`
}

// NewBreakerState returns the initial state: no errors, multiplier 1.0.
func NewBreakerState() BreakerState {
	return BreakerState{BackoffMultiplier: 1.0}
}
