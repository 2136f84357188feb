package usecase

import (
	"log/slog"
	"strings"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

// Prefilter rejects obviously stale or off-topic items before they reach the
// classifier. Order-preserving; an item with no relevance-keyword hit is
// still kept (priority is a later concern).
type Prefilter struct {
	exclude []string
	maxAge  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewPrefilter builds the filter. exclude phrases are matched as lower-cased
// substrings of title+content.
func NewPrefilter(exclude []string, maxAge time.Duration, logger *slog.Logger) *Prefilter {
	return &Prefilter{
		exclude: exclude,
		maxAge:  maxAge,
		logger:  logger.With("component", "prefilter"),
		now:     time.Now,
	}
}

// Filter returns the kept subset of items, in input order.
func (f *Prefilter) Filter(items []domain.Item) []domain.Item {
	if len(items) == 0 {
		return nil
	}

	kept := make([]domain.Item, 0, len(items))
	droppedByAge := 0
	droppedByKeyword := 0

	for _, it := range items {
		if f.tooOld(it) {
			droppedByAge++
			continue
		}
		if f.excluded(it) {
			droppedByKeyword++
			continue
		}
		kept = append(kept, it)
	}

	if droppedByAge > 0 {
		f.logger.Info("dropped stale items", "count", droppedByAge, "max_age", f.maxAge)
	}
	if droppedByKeyword > 0 {
		f.logger.Info("dropped excluded items", "count", droppedByKeyword)
	}
	f.logger.Info("prefilter kept items", "count", len(kept))
	return kept
}

// tooOld reports whether the item's published timestamp is older than the
// cutoff. Missing or unparseable timestamps keep the item (fail-open).
func (f *Prefilter) tooOld(it domain.Item) bool {
	if it.Published == "" {
		return false
	}
	published, err := parsePublished(it.Published)
	if err != nil {
		return false
	}
	return f.now().Sub(published) > f.maxAge
}

func (f *Prefilter) excluded(it domain.Item) bool {
	text := it.SearchText()
	for _, kw := range f.exclude {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// parsePublished handles the RFC 2822-style timestamps feeds emit, e.g.
// "Mon, 13 Jan 2025 10:30:00 +0000".
func parsePublished(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.Parse(time.RFC1123Z, value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC1123, value)
}
