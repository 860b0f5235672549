package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PendingMutation одно локальное изменение в очереди на отправку.
// ClientRequestID генерируется один раз при постановке в очередь и не меняется
// при повторных попытках - сервер использует его как Idempotency-Key.
type PendingMutation struct {
	CreatedAt       time.Time       `json:"created_at"`
	EntityType      EntityType      `json:"entity_type"`
	EntityID        string          `json:"entity_id"`
	Operation       Operation       `json:"operation"`
	ClientRequestID string          `json:"client_request_id"`
	LastError       string          `json:"last_error,omitempty"`
	Payload         json.RawMessage `json:"payload,omitempty"` // пусто для delete
	ID              int64           `json:"id"`
	Attempts        int             `json:"attempts"`
}

// Key returns the (entityType, entityId, operation) triple that must be unique
// among unresolved mutations.
func (m *PendingMutation) Key() string {
	return fmt.Sprintf("%s/%s/%s", m.EntityType, m.EntityID, m.Operation)
}

// IsBatchable reports whether the mutation can be sent through the batch endpoint.
// Only event creates are batched.
func (m *PendingMutation) IsBatchable() bool {
	return m.EntityType == EntityTypeEvent && m.Operation == OperationCreate
}
