package repo

import (
	"context"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// ArchiveRepo keeps a durable record of every relevant item that was
// notified. Observational only: it is never consulted for dedup.
type ArchiveRepo interface {
	Record(ctx context.Context, item domain.RelevantItem) error
	Count(ctx context.Context) (int64, error)
	Close() error
}
