package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// Prompt-side truncation bounds. Storage keeps full text.
const (
	promptTitleLimit   = 200
	promptContentLimit = 500
)

// Errors that leave a chunk unclassified (it stays in the queue).
var (
	// ErrNoProvider means neither provider has a usable credential.
	ErrNoProvider = errors.New("no classifier provider available")

	// ErrUnparseable means the response contained no valid JSON array.
	ErrUnparseable = errors.New("classifier response unparseable")
)

// ClassifierConfig shapes retry and prompt behavior.
type ClassifierConfig struct {
	ProductName        string
	ProductDescription string

	// RetryCeiling is how many times the primary is attempted on quota
	// errors before failing over to the secondary.
	RetryCeiling int

	// BackoffBase scales the wait between primary attempts (base * attempt).
	BackoffBase time.Duration
}

// BatchClassifier turns a chunk of queue entries into verdicts via the
// primary provider, failing over to the secondary for the remainder of the
// run once the primary's quota is exhausted. The exhausted flag is explicit
// per-value state: construct one classifier per run.
type BatchClassifier struct {
	primary   repo.ClassifierProvider
	secondary repo.ClassifierProvider
	cfg       ClassifierConfig
	logger    *slog.Logger
	sleep     func(context.Context, time.Duration) error

	primaryExhausted bool
}

// NewBatchClassifier builds a classifier. Either provider may be nil when
// its credential is absent.
func NewBatchClassifier(primary, secondary repo.ClassifierProvider, cfg ClassifierConfig, logger *slog.Logger) *BatchClassifier {
	if cfg.RetryCeiling < 1 {
		cfg.RetryCeiling = 1
	}
	return &BatchClassifier{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		logger:    logger.With("component", "classifier"),
		sleep:     waitFor,
	}
}

// waitFor sleeps for d unless the context ends first.
func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Classify sends one chunk and returns its verdicts. A non-nil error means
// the chunk stays unclassified: it must not be checkpointed or removed from
// the queue.
func (c *BatchClassifier) Classify(ctx context.Context, chunk []domain.QueueEntry, chunkNum int) ([]domain.Verdict, error) {
	if len(chunk) == 0 {
		return nil, nil
	}

	prompt := c.buildPrompt(chunk)

	provider := c.primary
	if c.primaryExhausted || provider == nil {
		provider = c.secondary
	}
	if provider == nil {
		c.logger.Warn("chunk skipped: no provider credential", "chunk", chunkNum)
		return nil, ErrNoProvider
	}

	text, err := c.invoke(ctx, provider, prompt, chunkNum)
	if err != nil {
		c.logger.Error("chunk classification failed", "chunk", chunkNum, "provider", provider.Name(), "err", err)
		return nil, err
	}

	verdicts := parseVerdicts(text)
	if verdicts == nil {
		c.logger.Warn("chunk response unparseable, skipping", "chunk", chunkNum, "provider", provider.Name())
		return nil, ErrUnparseable
	}

	// Honor only verdicts whose index maps back into the chunk.
	valid := verdicts[:0]
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(chunk) {
			continue
		}
		valid = append(valid, v)
	}
	c.logger.Info("chunk classified", "chunk", chunkNum, "provider", provider.Name(), "verdicts", len(valid))
	return valid, nil
}

// invoke runs the provider call. For the primary it is a bounded retry loop
// on quota errors; once the ceiling is hit the primary is marked exhausted
// for the rest of the run and the secondary gets exactly one attempt.
func (c *BatchClassifier) invoke(ctx context.Context, provider repo.ClassifierProvider, prompt string, chunkNum int) (string, error) {
	if provider != c.primary {
		return provider.Complete(ctx, prompt)
	}

	for attempt := 1; attempt <= c.cfg.RetryCeiling; attempt++ {
		text, err := provider.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, repo.ErrQuotaExceeded) {
			return "", err
		}
		if attempt < c.cfg.RetryCeiling {
			wait := c.cfg.BackoffBase * time.Duration(attempt)
			c.logger.Warn("primary quota limited, backing off",
				"chunk", chunkNum, "attempt", attempt, "wait", wait)
			if err := c.sleep(ctx, wait); err != nil {
				return "", err
			}
		}
	}

	c.primaryExhausted = true
	c.logger.Warn("primary exhausted, failing over", "chunk", chunkNum)
	if c.secondary == nil {
		return "", fmt.Errorf("primary exhausted and no secondary credential: %w", ErrNoProvider)
	}
	return c.secondary.Complete(ctx, prompt)
}

// Correlate merges verdicts back onto the chunk, keeping relevant ones.
func Correlate(chunk []domain.QueueEntry, verdicts []domain.Verdict) []domain.RelevantItem {
	var relevant []domain.RelevantItem
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(chunk) {
			continue
		}
		if !v.IsRelevant {
			continue
		}
		relevant = append(relevant, domain.RelevantItem{
			Item:       chunk[v.Index].Item,
			Reason:     v.Reason,
			ReplyDraft: v.ReplyDraft,
		})
	}
	return relevant
}

func (c *BatchClassifier) buildPrompt(chunk []domain.QueueEntry) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `# Role
You are an experienced indie developer browsing Reddit, scouting for people who would genuinely benefit from %s.

About %s: %s

# Task
For each numbered content item below, decide whether the author is a potential user worth replying to, and draft a short, casual, human-sounding reply for the relevant ones.

Accept: users frustrated with coding games, asking for no-code/low-code tools, with simple game ideas they can't implement, discussing AI tools for game development, or beginners wanting to build games without deep programming knowledge.

Reject: spam, self-promotion, job postings, politics, finance, advanced technical discussions, and show-off posts that ask for nothing.

Reply style: lowercase, under 50 words, conversational fragments are fine. Mention %s only when it fits very naturally.

# Output Format
Respond with a JSON array only. No markdown code blocks.
[
  {"index": 0, "is_relevant": true, "reason": "...", "reply_draft": "..."},
  {"index": 1, "is_relevant": false, "reason": "...", "reply_draft": ""}
]

---
CONTENT ITEMS TO ANALYZE:

`, c.cfg.ProductName, c.cfg.ProductName, c.cfg.ProductDescription, c.cfg.ProductName)

	for i, entry := range chunk {
		fmt.Fprintf(&sb, "\n[Item %d]\nType: %s\nSubreddit: r/%s\nTitle: %s\nContent: %s\n",
			i, entry.Type, entry.Subreddit,
			truncateRunes(entry.Title, promptTitleLimit),
			truncateRunes(entry.Content, promptContentLimit))
		if entry.SearchKeyword != "" {
			fmt.Fprintf(&sb, "Search Keyword: %s\n", entry.SearchKeyword)
		}
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var codeFenceRe = regexp.MustCompile("```(?:json)?\\s*")

// parseVerdicts extracts the JSON verdict array from the raw response text,
// tolerating code fences and leading/trailing prose. Malformed array
// elements are dropped individually; a nil return means no array was found.
func parseVerdicts(text string) []domain.Verdict {
	text = codeFenceRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	raws, ok := decodeArray(text)
	if !ok {
		// Fall back to the first bracket-delimited span.
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil
		}
		raws, ok = decodeArray(text[start : end+1])
		if !ok {
			return nil
		}
	}

	verdicts := make([]domain.Verdict, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			Index      *int   `json:"index"`
			IsRelevant *bool  `json:"is_relevant"`
			Reason     string `json:"reason"`
			ReplyDraft string `json:"reply_draft"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		if probe.Index == nil || probe.IsRelevant == nil {
			continue
		}
		verdicts = append(verdicts, domain.Verdict{
			Index:      *probe.Index,
			IsRelevant: *probe.IsRelevant,
			Reason:     probe.Reason,
			ReplyDraft: probe.ReplyDraft,
		})
	}
	return verdicts
}

func decodeArray(text string) ([]json.RawMessage, bool) {
	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raws); err != nil {
		return nil, false
	}
	return raws, true
}
