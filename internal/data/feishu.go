package data

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/wefun-ai/reddit-radar/feishu"
	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
)

const contentPreviewLimit = 300

// typeStyle selects the card look per content type.
type typeStyle struct {
	icon        string
	label       string
	headerColor string
	titleLabel  string
}

var typeStyles = map[domain.ItemType]typeStyle{
	domain.TypePost:    {icon: "📝", label: "Post", headerColor: "blue", titleLabel: "Post Title"},
	domain.TypeComment: {icon: "💬", label: "Comment", headerColor: "purple", titleLabel: "Comment Context"},
	domain.TypeSearch:  {icon: "🔍", label: "Search Hit", headerColor: "orange", titleLabel: "Post Title"},
}

// feishuNotifier implements repo.NotifierRepo over the webhook client.
type feishuNotifier struct {
	client *feishu.Client
	logger *slog.Logger
}

// NewFeishuNotifier creates the Feishu notification adapter.
func NewFeishuNotifier(client *feishu.Client, logger *slog.Logger) repo.NotifierRepo {
	return &feishuNotifier{
		client: client,
		logger: logger.With("component", "notifier.feishu"),
	}
}

// SendBatch sends one card per item; per-item failures are logged and do not
// block the rest of the batch.
func (n *feishuNotifier) SendBatch(ctx context.Context, items []domain.RelevantItem) int {
	sent := 0
	for _, item := range items {
		if err := n.client.SendCard(ctx, buildItemCard(item)); err != nil {
			n.logger.Error("send notification failed", "item", item.Key(), "err", err)
			continue
		}
		sent++
	}
	return sent
}

// SendSummary posts the aggregate run card.
func (n *feishuNotifier) SendSummary(ctx context.Context, summary domain.RunSummary) error {
	text := fmt.Sprintf("• Scanned: **%d** items\n• Relevant: **%d** items\n• Delivered: **%d** items",
		summary.Total, summary.Relevant, summary.Sent)

	if len(summary.RelevantByType) > 0 {
		text += "\n\n📊 By type:\n"
		if c := summary.RelevantByType[domain.TypePost]; c > 0 {
			text += fmt.Sprintf("• Posts: %d\n", c)
		}
		if c := summary.RelevantByType[domain.TypeComment]; c > 0 {
			text += fmt.Sprintf("• Comments: %d\n", c)
		}
		if c := summary.RelevantByType[domain.TypeSearch]; c > 0 {
			text += fmt.Sprintf("• Search hits: %d", c)
		}
	}

	card := feishu.Card{
		"header": map[string]any{
			"title": map[string]any{
				"tag":     "plain_text",
				"content": "📊 Reddit Radar Run Summary",
			},
			"template": "green",
		},
		"elements": []map[string]any{
			{
				"tag": "div",
				"text": map[string]any{
					"tag":     "lark_md",
					"content": text,
				},
			},
		},
	}
	return n.client.SendCard(ctx, card)
}

// buildItemCard renders one relevant item as an interactive card: title,
// content preview, verdict reason, suggested reply, author/community fields,
// and a Google-search deep link (avoids hitting Reddit directly, which rate
// limits hard).
func buildItemCard(item domain.RelevantItem) feishu.Card {
	style, ok := typeStyles[item.Type]
	if !ok {
		style = typeStyles[domain.TypePost]
	}

	preview := item.Content
	if len([]rune(preview)) > contentPreviewLimit {
		preview = string([]rune(preview)[:contentPreviewLimit]) + "..."
	}

	elements := []map[string]any{
		{
			"tag": "div",
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**%s %s**\n%s", style.icon, style.titleLabel, item.Title),
			},
		},
		{
			"tag": "div",
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**📄 Preview**\n%s", preview),
			},
		},
		{"tag": "hr"},
		{
			"tag": "div",
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**🤖 Why it matched**\n%s", item.Reason),
			},
		},
		{
			"tag": "div",
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**💡 Suggested reply**\n```\n%s\n```", item.ReplyDraft),
			},
		},
		{"tag": "hr"},
	}

	fields := []map[string]any{
		{
			"is_short": true,
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**Author**: u/%s", item.Author),
			},
		},
		{
			"is_short": true,
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**Community**: r/%s", item.Subreddit),
			},
		},
	}
	if item.SearchKeyword != "" {
		fields = append(fields, map[string]any{
			"is_short": true,
			"text": map[string]any{
				"tag":     "lark_md",
				"content": fmt.Sprintf("**Keyword**: %s", item.SearchKeyword),
			},
		})
	}
	elements = append(elements, map[string]any{
		"tag":    "div",
		"fields": fields,
	})

	elements = append(elements, map[string]any{
		"tag": "action",
		"actions": []map[string]any{
			{
				"tag": "button",
				"text": map[string]any{
					"tag":     "plain_text",
					"content": "🔥 Go to Reply (via Google)",
				},
				"type": "primary",
				"url":  googleSearchURL(item.Title, item.Subreddit),
			},
		},
	})

	return feishu.Card{
		"config": map[string]any{
			"wide_screen_mode": true,
		},
		"header": map[string]any{
			"title": map[string]any{
				"tag":     "plain_text",
				"content": fmt.Sprintf("🎯 Reddit Lead [%s] - r/%s", style.label, item.Subreddit),
			},
			"template": style.headerColor,
		},
		"elements": elements,
	}
}

// googleSearchURL builds a site-restricted exact-title Google query so the
// human lands on the thread without tripping Reddit's 429s.
func googleSearchURL(title, subreddit string) string {
	if title == "" {
		return "https://www.google.com/search?q=" + url.QueryEscape("site:reddit.com")
	}
	query := fmt.Sprintf(`site:reddit.com %q`, title)
	if subreddit != "" {
		query = fmt.Sprintf(`site:reddit.com/r/%s %q`, subreddit, title)
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}
