package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vocab-updated/config"
	"vocab-updated/models"
)

const (
	hnSearchWindow  = 2 * 24 * time.Hour
	hnFirebaseScan  = 50 // top-story IDs examined by the fallback
	hnFetchParallel = 8
)

// HNAdapter searches Hacker News for a category's keywords.
// Fallback chain: the Algolia search API first, then a keyword filter over
// the Firebase top-stories feed when Algolia is down.
//
// Engagement formula (fixed): story points.
type HNAdapter struct {
	client      *Client
	algoliaBase string
	firebase    string
	limit       int
}

func NewHNAdapter(client *Client, limit int) *HNAdapter {
	return &HNAdapter{
		client:      client,
		algoliaBase: "https://hn.algolia.com/api/v1",
		firebase:    "https://hacker-news.firebaseio.com/v0",
		limit:       limit,
	}
}

func (a *HNAdapter) Name() string { return "Hacker News" }

func (a *HNAdapter) Fetch(ctx context.Context, cat config.CategoryConfig) ([]models.RawItem, error) {
	keywords := cat.HNKeywords
	if len(keywords) == 0 {
		return nil, nil
	}
	return runChain(ctx, []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) { return a.searchAlgolia(ctx, keywords) },
		func(ctx context.Context) ([]models.RawItem, error) { return a.scanTopStories(ctx, keywords) },
	})
}

type algoliaResponse struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		Author    string `json:"author"`
		Points    int    `json:"points"`
		CreatedAt string `json:"created_at"`
	} `json:"hits"`
}

func (a *HNAdapter) searchAlgolia(ctx context.Context, keywords []string) ([]models.RawItem, error) {
	// Keep the query small: first three keywords, OR-joined, recent window.
	kw := keywords
	if len(kw) > 3 {
		kw = kw[:3]
	}
	cutoff := time.Now().Add(-hnSearchWindow).Unix()
	u := fmt.Sprintf("%s/search?query=%s&tags=story&hitsPerPage=%d&numericFilters=created_at_i>%d",
		a.algoliaBase, url.QueryEscape(strings.Join(kw, " OR ")), a.limit, cutoff)

	var body algoliaResponse
	if err := a.client.GetJSON(ctx, u, nil, &body); err != nil {
		return nil, err
	}

	items := make([]models.RawItem, 0, len(body.Hits))
	for _, h := range body.Hits {
		link := h.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		published, _ := time.Parse(time.RFC3339, h.CreatedAt)
		items = append(items, models.RawItem{
			Title:       h.Title,
			URL:         link,
			SourceName:  "Hacker News",
			Author:      h.Author,
			Engagement:  maxInt(h.Points, 0),
			PublishedAt: published,
		})
	}
	return items, nil
}

type hnStory struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	By    string `json:"by"`
	Time  int64  `json:"time"`
	Score int    `json:"score"`
}

// scanTopStories fetches the top-story ID list and keeps stories whose title
// matches any keyword. Item lookups run in a bounded parallel group.
func (a *HNAdapter) scanTopStories(ctx context.Context, keywords []string) ([]models.RawItem, error) {
	var ids []int
	if err := a.client.GetJSON(ctx, a.firebase+"/topstories.json", nil, &ids); err != nil {
		return nil, err
	}
	if len(ids) > hnFirebaseScan {
		ids = ids[:hnFirebaseScan]
	}

	stories := make([]*hnStory, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hnFetchParallel)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			var s hnStory
			u := fmt.Sprintf("%s/item/%d.json", a.firebase, id)
			if err := a.client.GetJSON(gctx, u, nil, &s); err != nil {
				// A single unreadable story is not worth failing the scan.
				return nil
			}
			stories[i] = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var items []models.RawItem
	for _, s := range stories {
		if s == nil || s.Type != "story" || s.Title == "" {
			continue
		}
		if !matchesAny(s.Title, keywords) {
			continue
		}
		link := s.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", s.ID)
		}
		items = append(items, models.RawItem{
			Title:       s.Title,
			URL:         link,
			SourceName:  "Hacker News",
			Author:      s.By,
			Engagement:  maxInt(s.Score, 0),
			PublishedAt: time.Unix(s.Time, 0).UTC(),
		})
		if len(items) >= a.limit {
			break
		}
	}
	return items, nil
}

func matchesAny(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
