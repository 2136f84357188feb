package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// queueFile is the on-disk representation: the whole queue is rewritten on
// every mutation.
type queueFile struct {
	Queue       []domain.QueueEntry `json:"queue"`
	LastUpdated time.Time           `json:"last_updated"`
}

// queueStore implements repo.QueueRepo on a single JSON file.
type queueStore struct {
	path     string
	keywords []string
	logger   *slog.Logger
	now      func() time.Time
}

// NewQueueStore creates the pending-queue store. keywords are the relevance
// keywords used to score entries at enqueue time.
func NewQueueStore(path string, keywords []string, logger *slog.Logger) repo.QueueRepo {
	return &queueStore{
		path:     path,
		keywords: keywords,
		logger:   logger.With("store", "queue"),
		now:      time.Now,
	}
}

func (s *queueStore) load() []domain.QueueEntry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read queue file", "path", s.path, "err", err)
		}
		return nil
	}
	var f queueFile
	if err := json.Unmarshal(raw, &f); err != nil {
		s.logger.Warn("cannot parse queue file", "path", s.path, "err", err)
		return nil
	}
	return f.Queue
}

// save writes the full queue atomically: temp file in the same directory,
// then rename. A failure leaves the previous file intact.
func (s *queueStore) save(queue []domain.QueueEntry) error {
	if queue == nil {
		queue = []domain.QueueEntry{}
	}
	raw, err := json.MarshalIndent(queueFile{Queue: queue, LastUpdated: s.now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	return writeFileAtomic(s.path, raw)
}

// Enqueue adds candidates not already queued or checkpointed, scores them,
// and stable-sorts the store by score descending.
func (s *queueStore) Enqueue(ctx context.Context, items []domain.Item, processed *domain.ProcessedSet) (int, error) {
	queue := s.load()

	existing := make(map[string]struct{}, len(queue))
	for _, e := range queue {
		existing[e.Key()] = struct{}{}
	}

	added := 0
	for _, it := range items {
		key := it.Key()
		if key == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		if processed.Has(key) {
			continue
		}

		entry := domain.QueueEntry{
			Item:           it,
			RelevanceScore: domain.RelevanceScore(it, s.keywords),
			AddedAt:        s.now(),
		}
		entry.Item.ID = key
		queue = append(queue, entry)
		existing[key] = struct{}{}
		added++
	}

	// Stable: equal scores keep enqueue order.
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].RelevanceScore > queue[j].RelevanceScore
	})

	if err := s.save(queue); err != nil {
		s.logger.Error("persist queue failed", "err", err)
		return added, err
	}
	return added, nil
}

// Peek returns the first n entries without mutating the store.
func (s *queueStore) Peek(ctx context.Context, n int) ([]domain.QueueEntry, error) {
	queue := s.load()
	if n > len(queue) {
		n = len(queue)
	}
	out := make([]domain.QueueEntry, n)
	copy(out, queue[:n])
	return out, nil
}

// Remove deletes all entries whose id is in ids and persists.
func (s *queueStore) Remove(ctx context.Context, ids map[string]struct{}) (int, error) {
	queue := s.load()
	kept := queue[:0]
	for _, e := range queue {
		if _, drop := ids[e.Key()]; drop {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(queue) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(kept); err != nil {
		s.logger.Error("persist queue failed", "err", err)
		return removed, err
	}
	return removed, nil
}

// Prune drops entries already present in the processed set.
func (s *queueStore) Prune(ctx context.Context, processed *domain.ProcessedSet) (int, error) {
	queue := s.load()
	kept := queue[:0]
	for _, e := range queue {
		if processed.Has(e.Key()) {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(queue) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(kept); err != nil {
		s.logger.Error("persist queue failed", "err", err)
		return removed, err
	}
	return removed, nil
}

// Stats summarizes the current queue.
func (s *queueStore) Stats(ctx context.Context) (domain.QueueStats, error) {
	var stats domain.QueueStats
	stats.ByType = make(map[domain.ItemType]int)
	for _, e := range s.load() {
		stats.Observe(e)
	}
	return stats, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
