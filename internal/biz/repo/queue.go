package repo

import (
	"context"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// QueueRepo is the durable, score-ordered holding area for items awaiting
// classification. Entries are unique by Item.Key() and ordered by relevance
// score descending; equal scores keep their prior relative order.
type QueueRepo interface {
	// Enqueue adds candidates not already queued or processed, scores them,
	// re-sorts the store (stable) and persists it. Returns the number added.
	// A persistence failure is reported alongside the in-memory count; the
	// count is still valid for this process.
	Enqueue(ctx context.Context, items []domain.Item, processed *domain.ProcessedSet) (int, error)

	// Peek returns the first n entries without mutating the store.
	Peek(ctx context.Context, n int) ([]domain.QueueEntry, error)

	// Remove deletes all entries whose id is in ids and persists. Removing
	// absent ids is not an error. Returns the number removed.
	Remove(ctx context.Context, ids map[string]struct{}) (int, error)

	// Prune drops entries whose id is already in the processed set. This
	// reconciles queue membership with the checkpoint after a crash between
	// checkpoint write and queue removal.
	Prune(ctx context.Context, processed *domain.ProcessedSet) (int, error)

	// Stats summarizes the current queue.
	Stats(ctx context.Context) (domain.QueueStats, error)
}
