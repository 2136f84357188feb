package repo

import (
	"context"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// SourceRepo pulls new items from the monitored content source.
type SourceRepo interface {
	// FetchAllNew returns every new item across the configured targets.
	// An empty result is not an error.
	FetchAllNew(ctx context.Context) ([]domain.Item, error)
}
