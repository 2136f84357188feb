package domain

import "testing"

func TestItemKey(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"id wins", Item{ID: "t3_x", Link: "https://r/x"}, "t3_x"},
		{"link fallback", Item{Link: "https://r/x"}, "https://r/x"},
		{"both empty", Item{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelevanceScore(t *testing.T) {
	keywords := []string{"no-code", "beginner", "game idea", ""}

	tests := []struct {
		name string
		item Item
		want int
	}{
		{"no hits", Item{Title: "patch notes"}, 0},
		{"one hit in title", Item{Title: "total beginner here"}, 1},
		{"hit in content", Item{Content: "looking for a NO-CODE tool"}, 1},
		{"multiple hits", Item{Title: "beginner with a game idea", Content: "want no-code"}, 3},
		{"same keyword twice counts once", Item{Title: "beginner", Content: "beginner again"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelevanceScore(tt.item, keywords); got != tt.want {
				t.Errorf("RelevanceScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueueStatsObserve(t *testing.T) {
	var stats QueueStats
	stats.Observe(QueueEntry{Item: Item{Type: TypePost}, RelevanceScore: 4})
	stats.Observe(QueueEntry{Item: Item{Type: TypePost}, RelevanceScore: 3})
	stats.Observe(QueueEntry{Item: Item{Type: TypeComment}, RelevanceScore: 2})
	stats.Observe(QueueEntry{Item: Item{Type: TypeSearch}, RelevanceScore: 1})
	stats.Observe(QueueEntry{Item: Item{Type: TypeSearch}})

	if stats.Total != 5 {
		t.Errorf("total = %d, want 5", stats.Total)
	}
	if stats.High != 2 || stats.Medium != 2 || stats.Low != 1 {
		t.Errorf("buckets = %d/%d/%d, want 2/2/1", stats.High, stats.Medium, stats.Low)
	}
	if stats.ByType[TypePost] != 2 || stats.ByType[TypeComment] != 1 || stats.ByType[TypeSearch] != 2 {
		t.Errorf("by type = %v", stats.ByType)
	}
}
