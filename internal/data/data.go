package data

import (
	"log/slog"

	"github.com/wefun-ai/reddit-radar/feishu"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
	"github.com/wefun-ai/reddit-radar/internal/conf"
)

// Repositories contains all driven adapters.
type Repositories struct {
	Source     repo.SourceRepo // nil when Reddit credentials are absent
	Queue      repo.QueueRepo
	Checkpoint repo.CheckpointRepo
	Notifier   repo.NotifierRepo
	Archive    repo.ArchiveRepo
}

// NewRepositories wires all adapters from configuration.
func NewRepositories(cfg *conf.Config, wl conf.Watchlist, logger *slog.Logger) (*Repositories, error) {
	var source repo.SourceRepo
	if cfg.Reddit.Enabled() {
		var err error
		source, err = NewRedditSource(cfg.Reddit, wl, logger)
		if err != nil {
			return nil, err
		}
	}

	archive, err := NewArchiveStore(cfg.Storage.ArchivePath())
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Source:     source,
		Queue:      NewQueueStore(cfg.Storage.QueuePath(), wl.RelevanceKeywords, logger),
		Checkpoint: NewCheckpointStore(cfg.Storage.CheckpointPath(), cfg.Pipeline.CheckpointCap, logger),
		Notifier:   NewFeishuNotifier(feishu.NewClient(cfg.Feishu.WebhookURL), logger),
		Archive:    archive,
	}, nil
}
