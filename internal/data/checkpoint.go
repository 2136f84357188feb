package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// checkpointStore persists processed item ids as a JSON array, capped at a
// configured maximum cardinality (oldest evicted).
type checkpointStore struct {
	path   string
	cap    int
	logger *slog.Logger
}

// NewCheckpointStore creates the processed-ids store.
func NewCheckpointStore(path string, cap int, logger *slog.Logger) repo.CheckpointRepo {
	return &checkpointStore{
		path:   path,
		cap:    cap,
		logger: logger.With("store", "checkpoint"),
	}
}

// Load reads the persisted set. The file may be a bare JSON array or an
// object wrapping one under "processed"; a missing file yields an empty set.
func (s *checkpointStore) Load(ctx context.Context) (*domain.ProcessedSet, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewProcessedSet(s.cap, nil), nil
		}
		return domain.NewProcessedSet(s.cap, nil), fmt.Errorf("read checkpoint: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		var wrapped struct {
			Processed []string `json:"processed"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return domain.NewProcessedSet(s.cap, nil), fmt.Errorf("parse checkpoint: %w", err)
		}
		ids = wrapped.Processed
	}
	return domain.NewProcessedSet(s.cap, ids), nil
}

// Save overwrites the persisted set atomically.
func (s *checkpointStore) Save(ctx context.Context, set *domain.ProcessedSet) error {
	raw, err := json.Marshal(set.IDs())
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := writeFileAtomic(s.path, raw); err != nil {
		s.logger.Error("persist checkpoint failed", "err", err)
		return err
	}
	return nil
}
