package repo

import (
	"context"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// CheckpointRepo persists the set of already-classified item ids. It is a
// dedup membership test for Enqueue only; it never gates Peek or Remove.
type CheckpointRepo interface {
	// Load reads the persisted set. A missing file yields an empty set.
	Load(ctx context.Context) (*domain.ProcessedSet, error)

	// Save overwrites the persisted set (full replace).
	Save(ctx context.Context, set *domain.ProcessedSet) error
}
