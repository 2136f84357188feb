package repo

import (
	"context"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// NotifierRepo delivers relevant items and run summaries to the
// notification channel.
type NotifierRepo interface {
	// SendBatch sends one notification per item and returns how many were
	// delivered. Per-item failures are logged by the adapter and do not
	// block the remaining items.
	SendBatch(ctx context.Context, items []domain.RelevantItem) int

	// SendSummary sends one aggregate notification for the run.
	SendSummary(ctx context.Context, summary domain.RunSummary) error
}
