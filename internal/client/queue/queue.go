// Package queue manages the durable queue of local mutations waiting to be
// pushed to the server.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

var (
	// ErrInvalidMutation is returned for mutations that can never be sent
	ErrInvalidMutation = errors.New("invalid mutation")
)

// Queue wraps one store handle. It is cheap to create; callers build a new
// Queue whenever the underlying handle changes.
type Queue struct {
	store  storage.MutationStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a queue over store
func New(store storage.MutationStore, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Queue{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue records a local change. The returned bool is false when an
// unresolved mutation with the same (kind, entityID, op) already exists;
// in that case nothing is written and the existing clientRequestId stays.
//
// A delete supersedes queued creates and updates of the same entity.
func (q *Queue) Enqueue(ctx context.Context, kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) (*models.PendingMutation, bool, error) {
	if err := validate(kind, entityID, op, payload); err != nil {
		return nil, false, err
	}

	requestID, err := uuid.NewV7()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate client request id: %w", err)
	}

	m := &models.PendingMutation{
		EntityType:      kind,
		EntityID:        entityID,
		Operation:       op,
		ClientRequestID: requestID.String(),
		CreatedAt:       q.now(),
	}
	if op != models.OperationDelete {
		m.Payload = payload
	}

	inserted, err := q.store.InsertPendingMutation(ctx, m)
	if err != nil {
		return nil, false, fmt.Errorf("failed to enqueue %s %s: %w", op, kind, err)
	}
	if !inserted {
		q.logger.Debug("mutation already queued",
			"entity_type", kind,
			"entity_id", entityID,
			"operation", op)
		return nil, false, nil
	}

	if op == models.OperationDelete {
		if err := q.dropSuperseded(ctx, m); err != nil {
			return m, true, err
		}
	}

	q.logger.Debug("mutation queued",
		"entity_type", kind,
		"entity_id", entityID,
		"operation", op,
		"client_request_id", m.ClientRequestID)

	return m, true, nil
}

// dropSuperseded удаляет create/update той же сущности, поставленные до delete
func (q *Queue) dropSuperseded(ctx context.Context, del *models.PendingMutation) error {
	pending, err := q.store.FetchPendingMutations(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending mutations: %w", err)
	}

	for _, m := range pending {
		if m.ID == del.ID || m.EntityType != del.EntityType || m.EntityID != del.EntityID {
			continue
		}
		if m.Operation == models.OperationDelete {
			continue
		}
		if err := q.store.DeletePendingMutation(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to drop superseded mutation %d: %w", m.ID, err)
		}
		q.logger.Debug("mutation superseded by delete",
			"entity_type", m.EntityType,
			"entity_id", m.EntityID,
			"operation", m.Operation)
	}

	return nil
}

// Pending returns all queued mutations in creation order
func (q *Queue) Pending(ctx context.Context) ([]*models.PendingMutation, error) {
	muts, err := q.store.FetchPendingMutations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending mutations: %w", err)
	}
	return muts, nil
}

// Resolve removes a mutation that the server accepted
func (q *Queue) Resolve(ctx context.Context, m *models.PendingMutation) error {
	if err := q.store.DeletePendingMutation(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to resolve mutation %d: %w", m.ID, err)
	}
	return nil
}

// Fail records one failed attempt; the mutation stays queued
func (q *Queue) Fail(ctx context.Context, m *models.PendingMutation, cause string) error {
	if err := q.store.IncrementMutationAttempts(ctx, m.ID, cause); err != nil {
		return fmt.Errorf("failed to record attempt for mutation %d: %w", m.ID, err)
	}
	m.Attempts++
	m.LastError = cause
	return nil
}

// PendingDeletes returns the set of entity ids with a queued delete
func (q *Queue) PendingDeletes(ctx context.Context) (map[string]struct{}, error) {
	ids, err := q.store.PendingDeleteEntityIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending deletes: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Count returns the queue length
func (q *Queue) Count(ctx context.Context) (int, error) {
	n, err := q.store.CountPendingMutations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending mutations: %w", err)
	}
	return n, nil
}

func validate(kind models.EntityType, entityID string, op models.Operation, payload json.RawMessage) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidMutation, kind)
	}
	if !op.Valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidMutation, op)
	}
	if entityID == "" {
		return fmt.Errorf("%w: empty entity id", ErrInvalidMutation)
	}
	if op != models.OperationDelete {
		if len(payload) == 0 {
			return fmt.Errorf("%w: %s requires a payload", ErrInvalidMutation, op)
		}
		if !json.Valid(payload) {
			return fmt.Errorf("%w: payload is not valid JSON", ErrInvalidMutation)
		}
	}
	return nil
}
