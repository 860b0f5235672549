package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/storage"
)

// pull consumes the changefeed from the current cursor. The cursor is saved
// after every fully applied page, so a failure leaves it at the last good page.
func (e *Engine) pull(ctx context.Context, store storage.LocalStore, res *Result) error {
	if err := e.capturePendingDeletes(ctx, store); err != nil {
		return err
	}
	defer e.clearPendingDeletes()

	for page := 1; ; page++ {
		since := e.Cursor()

		feed, err := e.client.GetChanges(ctx, since, e.cfg.PageSize)
		if err != nil {
			if api.IsRateLimited(err) {
				e.recordRateLimit(res)
				if saveErr := e.saveBreaker(ctx); saveErr != nil {
					e.logger.Warn("failed to persist breaker state", "error", saveErr)
				}
			}
			return fmt.Errorf("failed to fetch changes since %d: %w", since, err)
		}

		for _, change := range feed.Changes {
			applied, err := e.applyChange(ctx, store, change)
			if err != nil {
				return err
			}
			if applied {
				res.Applied++
			} else {
				res.Skipped++
			}
		}

		advanced, err := e.advanceCursor(ctx, feed.NextCursor)
		if err != nil {
			return err
		}

		e.logger.Debug("changes page applied",
			"page", page,
			"since", since,
			"next_cursor", feed.NextCursor,
			"changes", len(feed.Changes),
			"has_more", feed.HasMore)

		if !feed.HasMore {
			return nil
		}
		if !advanced {
			// сервер сообщает has_more, но курсор не сдвинулся: повтор дал бы ту же страницу
			e.logger.Warn("changefeed did not advance, stopping pull",
				"since", since,
				"next_cursor", feed.NextCursor)
			return nil
		}
	}
}
