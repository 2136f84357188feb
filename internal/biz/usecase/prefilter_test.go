package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPrefilterAgeCutoff(t *testing.T) {
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	maxAge := 7 * 24 * time.Hour

	f := NewPrefilter(nil, maxAge, testLogger())
	f.now = func() time.Time { return now }

	tests := []struct {
		name      string
		published string
		want      bool // kept
	}{
		{"fresh", now.Add(-time.Hour).Format(time.RFC1123Z), true},
		{"exactly at cutoff", now.Add(-maxAge).Format(time.RFC1123Z), true},
		{"one second past cutoff", now.Add(-maxAge - time.Second).Format(time.RFC1123Z), false},
		{"one day past cutoff", now.Add(-maxAge - 24*time.Hour).Format(time.RFC1123Z), false},
		{"missing timestamp", "", true},
		{"unparseable timestamp", "not a date", true},
		{"rfc1123 without numeric zone", now.Add(-time.Hour).Format(time.RFC1123), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := f.Filter([]domain.Item{{ID: "t1", Title: "hello", Published: tt.published}})
			if got := len(kept) == 1; got != tt.want {
				t.Errorf("kept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrefilterExcludeKeywords(t *testing.T) {
	f := NewPrefilter([]string{"hiring", "For Sale"}, 7*24*time.Hour, testLogger())

	tests := []struct {
		name  string
		title string
		body  string
		want  bool // kept
	}{
		{"clean item", "need a no-code engine", "any ideas?", true},
		{"keyword in title", "We are HIRING devs", "", false},
		{"keyword in content", "quick question", "asset pack for sale here", false},
		{"mixed-case exclude keyword", "FOR SALE: sprites", "", false},
		{"substring inside word", "rehiring discussion", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := f.Filter([]domain.Item{{ID: "t1", Title: tt.title, Content: tt.body}})
			if got := len(kept) == 1; got != tt.want {
				t.Errorf("kept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrefilterPreservesOrder(t *testing.T) {
	f := NewPrefilter([]string{"spam"}, 7*24*time.Hour, testLogger())

	items := []domain.Item{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "pure spam"},
		{ID: "c", Title: "third"},
		{ID: "d", Title: "fourth"},
	}
	kept := f.Filter(items)

	wantIDs := []string{"a", "c", "d"}
	if len(kept) != len(wantIDs) {
		t.Fatalf("kept %d items, want %d", len(kept), len(wantIDs))
	}
	for i, id := range wantIDs {
		if kept[i].ID != id {
			t.Errorf("kept[%d].ID = %q, want %q", i, kept[i].ID, id)
		}
	}
}
