package domain

import (
	"strings"
	"time"
)

// ItemType classifies where a monitored item came from.
type ItemType string

const (
	TypePost    ItemType = "post"
	TypeComment ItemType = "comment"
	TypeSearch  ItemType = "search"
)

// Item is a single piece of monitored content as produced by the source.
type Item struct {
	ID            string   `json:"id"`
	Type          ItemType `json:"type"`
	Subreddit     string   `json:"subreddit"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Link          string   `json:"link"`
	Author        string   `json:"author"`
	SearchKeyword string   `json:"search_keyword,omitempty"`

	// Published is the origin timestamp in RFC 2822-ish form as delivered
	// by the source. Empty or unparseable means the item is never
	// age-filtered.
	Published string `json:"published,omitempty"`
}

// Key returns the identity used for dedup: the native id, falling back
// to the link when the source did not provide one.
func (it Item) Key() string {
	if it.ID != "" {
		return it.ID
	}
	return it.Link
}

// SearchText returns the lower-cased title+content used for keyword matching.
func (it Item) SearchText() string {
	return strings.ToLower(it.Title + " " + it.Content)
}

// RelevanceScore counts how many of the given keywords appear in the
// item's title+content (case-insensitive substring match).
func RelevanceScore(it Item, keywords []string) int {
	text := it.SearchText()
	score := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			score++
		}
	}
	return score
}

// QueueEntry is an Item waiting in the priority queue.
type QueueEntry struct {
	Item
	RelevanceScore int       `json:"relevance_score"`
	AddedAt        time.Time `json:"added_at"`
}

// Verdict is one classifier decision, correlated back to its chunk by Index.
type Verdict struct {
	Index      int    `json:"index"`
	IsRelevant bool   `json:"is_relevant"`
	Reason     string `json:"reason"`
	ReplyDraft string `json:"reply_draft"`
}

// RelevantItem is an Item the classifier accepted, carrying the verdict text.
type RelevantItem struct {
	Item
	Reason     string `json:"reason"`
	ReplyDraft string `json:"reply_draft"`
}

// Score bucket thresholds for queue statistics.
const (
	highScoreMin   = 3
	mediumScoreMin = 1
)

// QueueStats summarizes the pending queue for observability.
type QueueStats struct {
	Total  int
	ByType map[ItemType]int
	High   int // relevance score >= 3
	Medium int // relevance score 1-2
	Low    int // relevance score 0
}

// Observe folds one entry into the stats.
func (s *QueueStats) Observe(e QueueEntry) {
	if s.ByType == nil {
		s.ByType = make(map[ItemType]int)
	}
	s.Total++
	s.ByType[e.Type]++
	switch {
	case e.RelevanceScore >= highScoreMin:
		s.High++
	case e.RelevanceScore >= mediumScoreMin:
		s.Medium++
	default:
		s.Low++
	}
}

// RunSummary aggregates one pipeline run for the summary notification.
type RunSummary struct {
	Total          int
	Relevant       int
	Sent           int
	RelevantByType map[ItemType]int
}
