package queue

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/trendysync/internal/models"
)

// DefaultBatchSize максимальное число событий в одном batch запросе
const DefaultBatchSize = 50

// batchKeyNamespace пространство имён для детерминированных ключей батчей
var batchKeyNamespace = uuid.MustParse("6f1c2a4e-8b3d-5e7f-9a0b-1c2d3e4f5a6b")

// Step is one network send of the flush: either a batch of event creates
// or a single mutation.
type Step struct {
	Single *models.PendingMutation
	Batch  []*models.PendingMutation
}

// Plan orders mutations for sending:
//
//  1. creates and updates of parent kinds (event types, geofences, property definitions)
//  2. event creates in batches of batchSize
//  3. event updates
//  4. event deletes
//  5. parent deletes, children first (property definitions, geofences, event types)
//
// Creation order is kept inside each group.
func Plan(muts []*models.PendingMutation, batchSize int) []Step {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var (
		parentWrites  []*models.PendingMutation
		eventCreates  []*models.PendingMutation
		eventUpdates  []*models.PendingMutation
		eventDeletes  []*models.PendingMutation
		parentDeletes []*models.PendingMutation
	)

	for _, m := range muts {
		switch {
		case m.IsBatchable():
			eventCreates = append(eventCreates, m)
		case m.EntityType == models.EntityTypeEvent && m.Operation == models.OperationUpdate:
			eventUpdates = append(eventUpdates, m)
		case m.EntityType == models.EntityTypeEvent:
			eventDeletes = append(eventDeletes, m)
		case m.Operation == models.OperationDelete:
			parentDeletes = append(parentDeletes, m)
		default:
			parentWrites = append(parentWrites, m)
		}
	}

	// Родители создаются раньше детей, а удаляются позже
	sort.SliceStable(parentWrites, func(i, j int) bool {
		return parentRank(parentWrites[i].EntityType) < parentRank(parentWrites[j].EntityType)
	})
	sort.SliceStable(parentDeletes, func(i, j int) bool {
		return parentRank(parentDeletes[i].EntityType) > parentRank(parentDeletes[j].EntityType)
	})

	steps := make([]Step, 0, len(muts))
	for _, m := range parentWrites {
		steps = append(steps, Step{Single: m})
	}
	for start := 0; start < len(eventCreates); start += batchSize {
		end := min(start+batchSize, len(eventCreates))
		steps = append(steps, Step{Batch: eventCreates[start:end]})
	}
	for _, group := range [][]*models.PendingMutation{eventUpdates, eventDeletes, parentDeletes} {
		for _, m := range group {
			steps = append(steps, Step{Single: m})
		}
	}

	return steps
}

func parentRank(kind models.EntityType) int {
	switch kind {
	case models.EntityTypeEventType:
		return 0
	case models.EntityTypeGeofence:
		return 1
	case models.EntityTypePropertyDefinition:
		return 2
	default:
		return 3
	}
}

// BatchKey derives a stable idempotency key for a batch from its members'
// clientRequestIds, so resending the same batch reuses the key.
func BatchKey(batch []*models.PendingMutation) string {
	ids := make([]string, len(batch))
	for i, m := range batch {
		ids[i] = m.ClientRequestID
	}
	return uuid.NewSHA1(batchKeyNamespace, []byte(strings.Join(ids, ","))).String()
}
