package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/breaker"
	"github.com/iudanet/trendysync/internal/client/queue"
	"github.com/iudanet/trendysync/internal/client/storage"
	"github.com/iudanet/trendysync/internal/models"
)

// flush sends queued mutations in plan order. Send failures stay on the
// mutation; only store failures abort the flush with an error. Once the
// breaker trips no further send is made in this cycle.
func (e *Engine) flush(ctx context.Context, store storage.LocalStore, res *Result) error {
	q := queue.New(store, e.logger)

	muts, err := q.Pending(ctx)
	if err != nil {
		return err
	}
	if len(muts) == 0 {
		return nil
	}

	defer func() {
		if err := e.saveBreaker(ctx); err != nil {
			e.logger.Warn("failed to persist breaker state", "error", err)
		}
	}()

	steps := queue.Plan(muts, e.cfg.BatchSize)
	e.logger.Info("flushing pending mutations",
		"mutations", len(muts),
		"steps", len(steps))

	for i, step := range steps {
		switch e.breaker.Check() {
		case breaker.Tripped:
			res.BreakerTripped = true
			e.logger.Warn("circuit breaker tripped, flush aborted",
				"remaining_steps", len(steps)-i,
				"backoff", e.breaker.BackoffRemaining())
			return nil
		case breaker.BackingOff:
			e.logger.Info("rate limit backoff active, flush aborted",
				"remaining_steps", len(steps)-i,
				"backoff", e.breaker.BackoffRemaining())
			return nil
		}

		if step.Batch != nil {
			err = e.pushBatch(ctx, q, store, step.Batch, res)
		} else {
			err = e.pushSingle(ctx, q, store, step.Single, res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pushSingle(ctx context.Context, q *queue.Queue, store storage.LocalStore, m *models.PendingMutation, res *Result) error {
	var err error
	switch m.Operation {
	case models.OperationCreate:
		err = e.client.CreateEntity(ctx, m.EntityType, m.Payload, m.ClientRequestID)
	case models.OperationUpdate:
		err = e.client.UpdateEntity(ctx, m.EntityType, m.EntityID, m.Payload, m.ClientRequestID)
	case models.OperationDelete:
		err = e.client.DeleteEntity(ctx, m.EntityType, m.EntityID, m.ClientRequestID)
	default:
		err = fmt.Errorf("unknown operation %q", m.Operation)
	}

	log := mutationLogger(e.logger, m)

	switch {
	case err == nil:
		e.breaker.RecordSuccess()
		return e.resolve(ctx, q, store, m, res)

	case m.Operation == models.OperationDelete && api.IsNotFound(err):
		log.Debug("entity already deleted on server")
		e.breaker.RecordSuccess()
		return e.resolve(ctx, q, store, m, res)

	case api.IsDuplicateConflict(err):
		e.breaker.RecordSuccess()
		return e.resolveDuplicate(ctx, q, store, m, res)

	case api.IsRateLimited(err):
		log.Warn("mutation rate limited", "error", err)
		e.recordRateLimit(res)
		return nil

	default:
		log.Warn("mutation failed", "error", err, "attempts", m.Attempts+1)
		res.Failed++
		return q.Fail(ctx, m, err.Error())
	}
}

// pushBatch отправляет пачку create событий одним запросом.
// Элементы без записи в errors считаются созданными.
func (e *Engine) pushBatch(ctx context.Context, q *queue.Queue, store storage.LocalStore, batch []*models.PendingMutation, res *Result) error {
	payloads := make([]json.RawMessage, len(batch))
	for i, m := range batch {
		payloads[i] = m.Payload
	}

	key := queue.BatchKey(batch)
	resp, err := e.client.CreateEventsBatch(ctx, payloads, key)
	if err != nil {
		return e.handleBatchError(ctx, q, store, batch, err, res)
	}

	failed := make(map[int]string, len(resp.Errors))
	for _, be := range resp.Errors {
		if be.Index >= 0 && be.Index < len(batch) {
			failed[be.Index] = be.Message
		}
	}

	accepted := false
	for i, m := range batch {
		msg, isFailed := failed[i]
		switch {
		case !isFailed:
			accepted = true
			if err := e.resolve(ctx, q, store, m, res); err != nil {
				return err
			}
		case api.IsDuplicateMessage(msg):
			accepted = true
			if err := e.resolveDuplicate(ctx, q, store, m, res); err != nil {
				return err
			}
		default:
			mutationLogger(e.logger, m).Warn("batch item failed", "error", msg)
			res.Failed++
			if err := q.Fail(ctx, m, msg); err != nil {
				return err
			}
		}
	}
	if accepted {
		e.breaker.RecordSuccess()
	}

	e.logger.Info("event batch sent",
		"size", len(batch),
		"failed", len(failed),
		"idempotency_key", key)
	return nil
}

func (e *Engine) handleBatchError(ctx context.Context, q *queue.Queue, store storage.LocalStore, batch []*models.PendingMutation, err error, res *Result) error {
	switch {
	case api.IsRateLimited(err):
		e.logger.Warn("event batch rate limited", "size", len(batch), "error", err)
		e.recordRateLimit(res)
		return nil

	case api.IsDuplicateConflict(err):
		e.breaker.RecordSuccess()
		for _, m := range batch {
			if err := e.resolveDuplicate(ctx, q, store, m, res); err != nil {
				return err
			}
		}
		return nil

	default:
		e.logger.Warn("event batch failed", "size", len(batch), "error", err)
		for _, m := range batch {
			res.Failed++
			if err := q.Fail(ctx, m, err.Error()); err != nil {
				return err
			}
		}
		return nil
	}
}

// resolve удаляет мутацию из очереди и помечает сущность synced,
// если по ней не осталось других неотправленных записей
func (e *Engine) resolve(ctx context.Context, q *queue.Queue, store storage.LocalStore, m *models.PendingMutation, res *Result) error {
	if err := q.Resolve(ctx, m); err != nil {
		return err
	}
	res.Pushed++

	if m.Operation == models.OperationDelete {
		return nil
	}

	pending, err := store.HasPendingWrite(ctx, m.EntityType, m.EntityID)
	if err != nil {
		return fmt.Errorf("failed to check pending writes: %w", err)
	}
	if pending {
		return nil
	}
	if err := store.MarkSynced(ctx, m.EntityType, m.EntityID); err != nil {
		return fmt.Errorf("failed to mark %s %s synced: %w", m.EntityType, m.EntityID, err)
	}
	return nil
}

// resolveDuplicate обрабатывает 409: сервер уже хранит эту запись.
// Если локально есть другая сущность с тем же естественным ключом,
// это каноническая копия сервера, а наша - устаревший дубликат.
func (e *Engine) resolveDuplicate(ctx context.Context, q *queue.Queue, store storage.LocalStore, m *models.PendingMutation, res *Result) error {
	if err := q.Resolve(ctx, m); err != nil {
		return err
	}
	res.Pushed++

	if m.Operation == models.OperationDelete {
		return nil
	}

	dups, err := store.FindDuplicates(ctx, m.EntityType, m.EntityID)
	if err != nil {
		return fmt.Errorf("failed to look up duplicates: %w", err)
	}

	log := mutationLogger(e.logger, m)
	if len(dups) > 0 {
		log.Info("removing stale local duplicate", "canonical_ids", dups)
		if err := store.DeleteEntity(ctx, m.EntityType, m.EntityID); err != nil {
			return fmt.Errorf("failed to delete duplicate %s %s: %w", m.EntityType, m.EntityID, err)
		}
		return nil
	}

	log.Debug("server already has entity")
	if err := store.MarkSynced(ctx, m.EntityType, m.EntityID); err != nil {
		return fmt.Errorf("failed to mark %s %s synced: %w", m.EntityType, m.EntityID, err)
	}
	return nil
}

func mutationLogger(logger *slog.Logger, m *models.PendingMutation) *slog.Logger {
	return logger.With(
		"mutation_id", m.ID,
		"entity_type", m.EntityType,
		"entity_id", m.EntityID,
		"operation", m.Operation)
}
