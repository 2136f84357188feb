package data

import (
	"context"
	"log/slog"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/wefun-ai/reddit-radar/internal/biz/domain"
	"github.com/wefun-ai/reddit-radar/internal/biz/repo"
	"github.com/wefun-ai/reddit-radar/internal/conf"
)

// redditSource pulls new posts per subreddit plus site-wide keyword search
// results, normalized into domain items.
type redditSource struct {
	client  *reddit.Client
	limiter *rate.Limiter
	wl      conf.Watchlist
	logger  *slog.Logger
}

// NewRedditSource builds the Reddit content source. The limiter keeps us
// inside the authenticated API budget (~60 requests/min).
func NewRedditSource(cfg conf.RedditConfig, wl conf.Watchlist, logger *slog.Logger) (repo.SourceRepo, error) {
	creds := reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.ClientSecret,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	client, err := reddit.NewClient(creds, reddit.WithUserAgent(cfg.UserAgent))
	if err != nil {
		return nil, err
	}

	return &redditSource{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
		wl:      wl,
		logger:  logger.With("component", "source.reddit"),
	}, nil
}

// FetchAllNew collects new posts from every watched subreddit and search
// keyword. A failing target is logged and skipped; the rest still yield.
func (s *redditSource) FetchAllNew(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item

	for _, sub := range s.wl.Subreddits {
		if err := s.limiter.Wait(ctx); err != nil {
			return items, err
		}
		posts, _, err := s.client.Subreddit.NewPosts(ctx, sub, &reddit.ListOptions{Limit: s.wl.PostsPerSubreddit})
		if err != nil {
			s.logger.Warn("fetch subreddit failed", "subreddit", sub, "err", err)
			continue
		}
		for _, p := range posts {
			items = append(items, postToItem(p, domain.TypePost, ""))
		}
	}

	for _, kw := range s.wl.SearchKeywords {
		if err := s.limiter.Wait(ctx); err != nil {
			return items, err
		}
		posts, _, err := s.client.Subreddit.SearchPosts(ctx, kw, "", &reddit.ListPostSearchOptions{
			ListPostOptions: reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{Limit: s.wl.ResultsPerKeyword},
				Time:        "week",
			},
			Sort: "new",
		})
		if err != nil {
			s.logger.Warn("keyword search failed", "keyword", kw, "err", err)
			continue
		}
		for _, p := range posts {
			items = append(items, postToItem(p, domain.TypeSearch, kw))
		}
	}

	s.logger.Info("fetched new items", "count", len(items))
	return items, nil
}

func postToItem(p *reddit.Post, typ domain.ItemType, keyword string) domain.Item {
	link := p.URL
	if p.Permalink != "" {
		link = "https://www.reddit.com" + p.Permalink
	}
	published := ""
	if p.Created != nil {
		published = p.Created.Time.UTC().Format(time.RFC1123Z)
	}
	return domain.Item{
		ID:            p.FullID,
		Type:          typ,
		Subreddit:     p.SubredditName,
		Title:         p.Title,
		Content:       p.Body,
		Link:          link,
		Author:        p.Author,
		SearchKeyword: keyword,
		Published:     published,
	}
}
