package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

// fakeProvider scripts responses for the classifier. Each call consumes one
// entry from replies; an entry with err set fails the call.
type fakeProvider struct {
	name    string
	replies []fakeReply
	calls   int
}

type fakeReply struct {
	text string
	err  error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.calls++
	if len(p.replies) == 0 {
		return "", fmt.Errorf("%s: no scripted reply for call %d", p.name, p.calls)
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.text, r.err
}

func quotaReply() fakeReply {
	return fakeReply{err: fmt.Errorf("429: %w", repo.ErrQuotaExceeded)}
}

func okReply(text string) fakeReply {
	return fakeReply{text: text}
}

func testChunk(n int) []domain.QueueEntry {
	chunk := make([]domain.QueueEntry, n)
	for i := range chunk {
		chunk[i] = domain.QueueEntry{Item: domain.Item{
			ID:    fmt.Sprintf("id-%d", i),
			Type:  domain.TypePost,
			Title: fmt.Sprintf("title %d", i),
		}}
	}
	return chunk
}

func newTestClassifier(primary, secondary repo.ClassifierProvider, ceiling int) *BatchClassifier {
	c := NewBatchClassifier(primary, secondary, ClassifierConfig{
		ProductName:        "testproduct",
		ProductDescription: "a test product",
		RetryCeiling:       ceiling,
		BackoffBase:        time.Second,
	}, testLogger())
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestParseVerdicts(t *testing.T) {
	bare := `[{"index": 0, "is_relevant": true, "reason": "r", "reply_draft": "d"},
	          {"index": 1, "is_relevant": false, "reason": "no", "reply_draft": ""}]`

	tests := []struct {
		name string
		text string
		want int // -1 means nil (unparseable)
	}{
		{"bare array", bare, 2},
		{"json code fence", "```json\n" + bare + "\n```", 2},
		{"plain code fence", "```\n" + bare + "\n```", 2},
		{"leading prose", "Here are the results:\n" + bare, 2},
		{"trailing prose", bare + "\nLet me know if you need more.", 2},
		{"no array at all", "sorry, I cannot help with that", -1},
		{"not json", "[this is not json]", -1},
		{"empty array", "[]", 0},
		{"malformed element dropped", `[{"index": 0, "is_relevant": true}, {"oops": 1}, "nope"]`, 1},
		{"missing index dropped", `[{"is_relevant": true, "reason": "r"}]`, 0},
		{"missing is_relevant dropped", `[{"index": 0, "reason": "r"}]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseVerdicts(tt.text)
			if tt.want == -1 {
				if got != nil {
					t.Fatalf("parseVerdicts() = %v, want nil", got)
				}
				return
			}
			if got == nil || len(got) != tt.want {
				t.Fatalf("parseVerdicts() returned %d verdicts, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseVerdictsFencedMatchesBare(t *testing.T) {
	bare := `[{"index": 3, "is_relevant": true, "reason": "needs tool", "reply_draft": "try it"}]`
	fenced := "```json\n" + bare + "\n```"

	a := parseVerdicts(bare)
	b := parseVerdicts(fenced)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected one verdict each, got %d and %d", len(a), len(b))
	}
	if a[0] != b[0] {
		t.Errorf("fenced verdict %+v differs from bare %+v", b[0], a[0])
	}
}

func TestClassifyUnparseableResponse(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []fakeReply{okReply("no json here")}}
	c := newTestClassifier(primary, nil, 2)

	_, err := c.Classify(context.Background(), testChunk(3), 1)
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("Classify() err = %v, want ErrUnparseable", err)
	}
}

func TestClassifyDropsOutOfRangeIndexes(t *testing.T) {
	reply := `[{"index": 0, "is_relevant": true, "reason": "a", "reply_draft": ""},
	           {"index": 5, "is_relevant": true, "reason": "b", "reply_draft": ""},
	           {"index": -1, "is_relevant": true, "reason": "c", "reply_draft": ""}]`
	primary := &fakeProvider{name: "primary", replies: []fakeReply{okReply(reply)}}
	c := newTestClassifier(primary, nil, 2)

	verdicts, err := c.Classify(context.Background(), testChunk(2), 1)
	if err != nil {
		t.Fatalf("Classify() err = %v", err)
	}
	if len(verdicts) != 1 || verdicts[0].Index != 0 {
		t.Fatalf("verdicts = %+v, want single verdict with index 0", verdicts)
	}
}

func TestClassifyFailoverAfterQuotaCeiling(t *testing.T) {
	reply := `[{"index": 0, "is_relevant": false, "reason": "n", "reply_draft": ""}]`
	primary := &fakeProvider{name: "primary", replies: []fakeReply{quotaReply(), quotaReply()}}
	secondary := &fakeProvider{name: "secondary", replies: []fakeReply{okReply(reply), okReply(reply)}}
	c := newTestClassifier(primary, secondary, 2)

	verdicts, err := c.Classify(context.Background(), testChunk(1), 1)
	if err != nil {
		t.Fatalf("Classify() err = %v", err)
	}
	if len(verdicts) != 1 {
		t.Fatalf("got %d verdicts, want 1", len(verdicts))
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want exactly 2", primary.calls)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary called %d times, want exactly 1", secondary.calls)
	}

	// The exhausted state persists: the next chunk skips the primary.
	if _, err := c.Classify(context.Background(), testChunk(1), 2); err != nil {
		t.Fatalf("second Classify() err = %v", err)
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times after second chunk, want still 2", primary.calls)
	}
	if secondary.calls != 2 {
		t.Errorf("secondary called %d times after second chunk, want 2", secondary.calls)
	}
}

func TestClassifyQuotaWithoutSecondary(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []fakeReply{quotaReply(), quotaReply()}}
	c := newTestClassifier(primary, nil, 2)

	_, err := c.Classify(context.Background(), testChunk(1), 1)
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Classify() err = %v, want ErrNoProvider", err)
	}
}

func TestClassifyNonQuotaErrorDoesNotRetry(t *testing.T) {
	boom := errors.New("connection refused")
	primary := &fakeProvider{name: "primary", replies: []fakeReply{{err: boom}}}
	secondary := &fakeProvider{name: "secondary"}
	c := newTestClassifier(primary, secondary, 3)

	_, err := c.Classify(context.Background(), testChunk(1), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("Classify() err = %v, want %v", err, boom)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestClassifyBackoffStopsOnCancel(t *testing.T) {
	primary := &fakeProvider{name: "primary", replies: []fakeReply{quotaReply(), quotaReply()}}
	secondary := &fakeProvider{name: "secondary"}
	c := newTestClassifier(primary, secondary, 2)
	c.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := c.Classify(context.Background(), testChunk(1), 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Classify() err = %v, want context.Canceled", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1 (backoff aborted)", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0 (cancellation is not failover)", secondary.calls)
	}
	if c.primaryExhausted {
		t.Errorf("cancellation must not mark the primary exhausted")
	}
}

func TestWaitForCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := waitFor(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("waitFor() err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waitFor blocked %v on a cancelled context", elapsed)
	}
}

func TestWaitForElapses(t *testing.T) {
	if err := waitFor(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("waitFor() err = %v", err)
	}
}

func TestClassifyNoProviders(t *testing.T) {
	c := newTestClassifier(nil, nil, 2)
	_, err := c.Classify(context.Background(), testChunk(1), 1)
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("Classify() err = %v, want ErrNoProvider", err)
	}
}

func TestCorrelate(t *testing.T) {
	chunk := testChunk(3)
	verdicts := []domain.Verdict{
		{Index: 0, IsRelevant: true, Reason: "wants a tool", ReplyDraft: "try this"},
		{Index: 1, IsRelevant: false, Reason: "off topic"},
		{Index: 2, IsRelevant: true, Reason: "beginner"},
		{Index: 9, IsRelevant: true, Reason: "out of range"},
	}

	relevant := Correlate(chunk, verdicts)
	if len(relevant) != 2 {
		t.Fatalf("got %d relevant items, want 2", len(relevant))
	}
	if relevant[0].ID != "id-0" || relevant[1].ID != "id-2" {
		t.Errorf("relevant ids = %q, %q; want id-0, id-2", relevant[0].ID, relevant[1].ID)
	}
	if relevant[0].ReplyDraft != "try this" {
		t.Errorf("reply draft = %q, want %q", relevant[0].ReplyDraft, "try this")
	}
}

func TestBuildPromptTruncation(t *testing.T) {
	long := make([]rune, 1000)
	for i := range long {
		long[i] = 'x'
	}
	chunk := []domain.QueueEntry{{Item: domain.Item{
		ID:      "long",
		Title:   string(long),
		Content: string(long),
	}}}

	c := newTestClassifier(&fakeProvider{name: "p"}, nil, 1)
	prompt := c.buildPrompt(chunk)

	if got := len([]rune(prompt)); got > 3000 {
		t.Errorf("prompt is %d runes, truncation did not apply", got)
	}
	if !containsRun(prompt, 'x', promptTitleLimit) {
		t.Errorf("prompt missing truncated title run")
	}
}

func containsRun(s string, r rune, n int) bool {
	run := 0
	for _, c := range s {
		if c == r {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
