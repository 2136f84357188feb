package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// PipelineConfig shapes one run.
type PipelineConfig struct {
	RunSize    int           // max entries pulled from the queue per run
	ChunkSize  int           // items per classification request
	ChunkDelay time.Duration // pause between chunks
}

// Pipeline drives a single triage run:
// fetch -> prefilter -> enqueue -> dequeue -> classify per chunk -> notify ->
// checkpoint -> ack. All failures are contained; the run always reaches its
// terminal state.
type Pipeline struct {
	source     repo.SourceRepo
	queue      repo.QueueRepo
	checkpoint repo.CheckpointRepo
	notifier   repo.NotifierRepo
	archive    repo.ArchiveRepo

	prefilter  *Prefilter
	classifier *BatchClassifier

	cfg    PipelineConfig
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// PipelineDeps wires the adapters into the pipeline.
type PipelineDeps struct {
	Source     repo.SourceRepo
	Queue      repo.QueueRepo
	Checkpoint repo.CheckpointRepo
	Notifier   repo.NotifierRepo
	Archive    repo.ArchiveRepo
	Prefilter  *Prefilter
	Classifier *BatchClassifier
}

// NewPipeline constructs the orchestration component. Source and Archive may
// be nil; the corresponding stages are skipped.
func NewPipeline(deps PipelineDeps, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		queue:      deps.Queue,
		checkpoint: deps.Checkpoint,
		notifier:   deps.Notifier,
		archive:    deps.Archive,
		prefilter:  deps.Prefilter,
		classifier: deps.Classifier,
		cfg:        cfg,
		logger:     logger.With("component", "pipeline"),
		sleep:      waitFor,
	}
}

// Run executes one pass. It returns an error only for context cancellation;
// every external failure is contained and logged.
func (p *Pipeline) Run(ctx context.Context) error {
	processed, err := p.checkpoint.Load(ctx)
	if err != nil {
		p.logger.Warn("checkpoint load failed, starting empty", "err", err)
	}
	if processed == nil {
		processed = domain.NewProcessedSet(0, nil)
	}

	// Heal the crash window between checkpoint write and queue removal:
	// anything both checkpointed and queued is a leftover, not new work.
	if pruned, err := p.queue.Prune(ctx, processed); err != nil {
		p.logger.Error("queue prune failed", "err", err)
	} else if pruned > 0 {
		p.logger.Info("pruned already-processed entries", "count", pruned)
	}

	// FETCH + PREFILTER + ENQUEUE
	if p.source != nil {
		items, err := p.source.FetchAllNew(ctx)
		if err != nil {
			p.logger.Error("source fetch failed, continuing with zero items", "err", err)
			items = nil
		}
		if len(items) > 0 {
			filtered := p.prefilter.Filter(items)
			if len(filtered) > 0 {
				added, err := p.queue.Enqueue(ctx, filtered, processed)
				if err != nil {
					p.logger.Error("enqueue persistence failed", "err", err)
				}
				p.logger.Info("enqueued new items", "added", added)
			}
		}
	}

	if stats, err := p.queue.Stats(ctx); err == nil {
		p.logger.Info("queue status",
			"total", stats.Total,
			"high", stats.High,
			"medium", stats.Medium,
			"low", stats.Low,
		)
	}

	// DEQUEUE
	entries, err := p.queue.Peek(ctx, p.cfg.RunSize)
	if err != nil {
		p.logger.Error("queue peek failed", "err", err)
		return nil
	}
	if len(entries) == 0 {
		p.logger.Info("queue empty, run complete")
		return nil
	}
	p.logger.Info("processing entries", "count", len(entries))

	// CLASSIFY_LOOP
	chunks := chunkEntries(entries, p.cfg.ChunkSize)
	summary := domain.RunSummary{
		Total:          len(entries),
		RelevantByType: make(map[domain.ItemType]int),
	}
	ackIDs := make(map[string]struct{})

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunkNum := i + 1

		p.processChunk(ctx, chunk, chunkNum, processed, ackIDs, &summary)

		// The delay paces the provider for every non-final chunk, whether
		// or not this one classified.
		if chunkNum < len(chunks) {
			if err := p.sleep(ctx, p.cfg.ChunkDelay); err != nil {
				return err
			}
		}
	}

	// ACK
	if len(ackIDs) > 0 {
		removed, err := p.queue.Remove(ctx, ackIDs)
		if err != nil {
			p.logger.Error("queue ack persistence failed", "err", err)
		}
		p.logger.Info("acknowledged processed entries", "removed", removed)
	}

	// SUMMARIZE: suppressed entirely when nothing was relevant.
	if summary.Relevant > 0 {
		if err := p.notifier.SendSummary(ctx, summary); err != nil {
			p.logger.Error("summary notification failed", "err", err)
		}
	}

	if stats, err := p.queue.Stats(ctx); err == nil {
		p.logger.Info("run complete",
			"processed", len(ackIDs),
			"relevant", summary.Relevant,
			"sent", summary.Sent,
			"queue_remaining", stats.Total,
		)
	}
	return nil
}

// processChunk classifies one chunk, notifies its relevant items, and records
// its ids. On a classification error the chunk stays queued and unchecked; a
// future run retries it.
func (p *Pipeline) processChunk(ctx context.Context, chunk []domain.QueueEntry, chunkNum int, processed *domain.ProcessedSet, ackIDs map[string]struct{}, summary *domain.RunSummary) {
	verdicts, err := p.classifier.Classify(ctx, chunk, chunkNum)
	if err != nil {
		p.logger.Error("chunk classification failed, entries stay queued", "chunk", chunkNum, "err", err)
		return
	}

	relevant := Correlate(chunk, verdicts)
	if len(relevant) > 0 {
		sent := p.notifier.SendBatch(ctx, relevant)
		summary.Sent += sent
		summary.Relevant += len(relevant)
		for _, item := range relevant {
			summary.RelevantByType[item.Type]++
		}
		p.archiveAll(ctx, relevant)
		p.logger.Info("chunk relevant items notified", "chunk", chunkNum, "relevant", len(relevant), "sent", sent)
	} else {
		p.logger.Info("chunk had no relevant items", "chunk", chunkNum)
	}

	// Record every classified id, relevant or not, and persist
	// incrementally so a crash only loses this chunk's ack.
	for _, entry := range chunk {
		processed.Add(entry.Key())
		ackIDs[entry.Key()] = struct{}{}
	}
	if err := p.checkpoint.Save(ctx, processed); err != nil {
		p.logger.Error("checkpoint save failed", "chunk", chunkNum, "err", err)
	}
}

func (p *Pipeline) archiveAll(ctx context.Context, items []domain.RelevantItem) {
	if p.archive == nil {
		return
	}
	for _, item := range items {
		if err := p.archive.Record(ctx, item); err != nil {
			p.logger.Warn("archive record failed", "item", item.Key(), "err", err)
		}
	}
}

func chunkEntries(entries []domain.QueueEntry, size int) [][]domain.QueueEntry {
	if size <= 0 {
		size = len(entries)
	}
	var chunks [][]domain.QueueEntry
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
