package sqlite

import (
	"context"
	"time"

	"github.com/iudanet/trendysync/internal/models"
)

// InsertPendingMutation stores m and assigns m.ID.
// Returns false if the (entity_type, entity_id, operation) triple is already queued.
func (s *Storage) InsertPendingMutation(ctx context.Context, m *models.PendingMutation) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO pending_mutations (
			entity_type, entity_id, operation, payload,
			client_request_id, attempts, last_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, entity_id, operation) DO NOTHING
	`

	res, err := db.ExecContext(ctx, query,
		m.EntityType,
		m.EntityID,
		m.Operation,
		[]byte(m.Payload),
		m.ClientRequestID,
		m.Attempts,
		m.LastError,
		m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return false, s.wrapErr(err, "failed to insert pending mutation")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, s.wrapErr(err, "failed to get affected rows")
	}
	if affected == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, s.wrapErr(err, "failed to get mutation id")
	}
	m.ID = id

	return true, nil
}

// FetchPendingMutations returns queued mutations in creation order
func (s *Storage) FetchPendingMutations(ctx context.Context) ([]*models.PendingMutation, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, entity_type, entity_id, operation, payload,
		       client_request_id, attempts, last_error, created_at
		FROM pending_mutations
		ORDER BY created_at, id
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.wrapErr(err, "failed to query pending mutations")
	}
	defer rows.Close()

	var mutations []*models.PendingMutation
	for rows.Next() {
		m := &models.PendingMutation{}
		var payload []byte
		var createdAt int64

		err := rows.Scan(
			&m.ID,
			&m.EntityType,
			&m.EntityID,
			&m.Operation,
			&payload,
			&m.ClientRequestID,
			&m.Attempts,
			&m.LastError,
			&createdAt,
		)
		if err != nil {
			return nil, s.wrapErr(err, "failed to scan pending mutation")
		}

		if len(payload) > 0 {
			m.Payload = payload
		}
		m.CreatedAt = time.Unix(0, createdAt)
		mutations = append(mutations, m)
	}

	if err := rows.Err(); err != nil {
		return nil, s.wrapErr(err, "rows iteration error")
	}

	return mutations, nil
}

// DeletePendingMutation removes a resolved mutation
func (s *Storage) DeletePendingMutation(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete pending mutation", "DELETE FROM pending_mutations WHERE id = ?", id)
}

// IncrementMutationAttempts records a failed send
func (s *Storage) IncrementMutationAttempts(ctx context.Context, id int64, lastErr string) error {
	query := `UPDATE pending_mutations SET attempts = attempts + 1, last_error = ? WHERE id = ?`
	return s.exec(ctx, "increment mutation attempts", query, lastErr, id)
}

// PendingDeleteEntityIDs returns entity ids with a queued delete
func (s *Storage) PendingDeleteEntityIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT entity_id FROM pending_mutations WHERE operation = ? ORDER BY entity_id`
	return s.queryIDs(ctx, "query pending deletes", query, models.OperationDelete)
}

// HasPendingDelete reports whether a delete is queued for entityID
func (s *Storage) HasPendingDelete(ctx context.Context, entityID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pending_mutations WHERE entity_id = ? AND operation = ?)`
	return s.exists(ctx, query, entityID, models.OperationDelete)
}

// HasPendingWrite reports whether a create or update is queued for the entity
func (s *Storage) HasPendingWrite(ctx context.Context, kind models.EntityType, entityID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM pending_mutations
			WHERE entity_type = ? AND entity_id = ? AND operation IN (?, ?)
		)
	`
	return s.exists(ctx, query, kind, entityID, models.OperationCreate, models.OperationUpdate)
}

// CountPendingMutations returns the queue length
func (s *Storage) CountPendingMutations(ctx context.Context) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_mutations").Scan(&n); err != nil {
		return 0, s.wrapErr(err, "failed to count pending mutations")
	}
	return n, nil
}

func (s *Storage) exists(ctx context.Context, query string, args ...any) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	var found bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, s.wrapErr(err, "failed to check pending mutations")
	}
	return found, nil
}
