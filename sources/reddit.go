package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"vocab-updated/config"
	"vocab-updated/models"
)

const redditSnippetMax = 600

// RedditAdapter pulls posts from a category's configured subreddits.
// Fallback chain per subreddit: hot listing, then new listing, then the
// subreddit RSS feed as a last resort (no score signal there).
//
// Engagement formula (fixed): the post score (upvotes minus downvotes,
// floored at zero).
type RedditAdapter struct {
	client    *Client
	baseURL   string
	userAgent string
	limit     int
}

func NewRedditAdapter(client *Client, userAgent string, limit int) *RedditAdapter {
	return &RedditAdapter{
		client:    client,
		baseURL:   "https://www.reddit.com",
		userAgent: userAgent,
		limit:     limit,
	}
}

func (a *RedditAdapter) Name() string { return "Reddit" }

func (a *RedditAdapter) Fetch(ctx context.Context, cat config.CategoryConfig) ([]models.RawItem, error) {
	var all []models.RawItem
	var lastErr error
	for _, sub := range cat.Subreddits {
		s := sub
		items, err := runChain(ctx, []tryFetch{
			func(ctx context.Context) ([]models.RawItem, error) { return a.listing(ctx, s, "hot") },
			func(ctx context.Context) ([]models.RawItem, error) { return a.listing(ctx, s, "new") },
			func(ctx context.Context) ([]models.RawItem, error) { return a.rss(ctx, s) },
		})
		if err != nil {
			config.Logger.Warnf("reddit: r/%s unavailable: %v", s, err)
			lastErr = err
			continue
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		return nil, lastErr
	}
	return all, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				Stickied   bool    `json:"stickied"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) listing(ctx context.Context, sub, sort string) ([]models.RawItem, error) {
	u := fmt.Sprintf("%s/r/%s/%s.json?limit=%d", a.baseURL, sub, sort, a.limit)
	if sort == "hot" {
		u += "&t=day"
	}

	var body redditListing
	if err := a.client.GetJSON(ctx, u, map[string]string{"User-Agent": a.userAgent}, &body); err != nil {
		return nil, err
	}

	sourceName := "Reddit r/" + sub
	items := make([]models.RawItem, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		d := child.Data
		if d.Stickied {
			continue
		}

		snippet := d.Selftext
		if rs := []rune(snippet); len(rs) > redditSnippetMax {
			snippet = string(rs[:redditSnippetMax])
		}

		// Point at the reddit thread unless the post URL already does.
		link := d.URL
		if !strings.HasPrefix(link, "https://www.reddit.com") {
			link = a.baseURL + d.Permalink
		}

		score := d.Score
		if score < 0 {
			score = 0
		}

		items = append(items, models.RawItem{
			Title:       d.Title,
			Snippet:     snippet,
			URL:         link,
			SourceName:  sourceName,
			Author:      "u/" + d.Author,
			Engagement:  score,
			PublishedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
		})
	}
	return items, nil
}

// rss parses the subreddit Atom feed. Feed entries carry no score, so
// engagement is zero and ranking falls back to merge order.
func (a *RedditAdapter) rss(ctx context.Context, sub string) ([]models.RawItem, error) {
	fp := gofeed.NewParser()
	fp.Client = a.client.HTTP()
	fp.UserAgent = a.userAgent

	feed, err := fp.ParseURLWithContext(a.baseURL+"/r/"+sub+"/.rss", ctx)
	if err != nil {
		return nil, err
	}

	sourceName := "Reddit r/" + sub
	items := make([]models.RawItem, 0, len(feed.Items))
	for i, item := range feed.Items {
		if i >= a.limit {
			break
		}
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}
		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}
		items = append(items, models.RawItem{
			Title:       item.Title,
			URL:         item.Link,
			SourceName:  sourceName,
			Author:      author,
			Engagement:  0,
			PublishedAt: published,
		})
	}
	return items, nil
}
