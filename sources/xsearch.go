package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"vocab-updated/config"
	"vocab-updated/models"
)

// XAdapter searches X (Twitter) for a category's configured queries.
// Fallback chain per query: v2 recent search first (needs elevated access),
// then the v1.1 popular search.
//
// Engagement formula (fixed): likes + 2*retweets, on both API versions.
type XAdapter struct {
	client   *Client
	apiBase  string
	tokenURL string
	limit    int

	consumerKey    string
	consumerSecret string
	staticBearer   string
}

var tcoTailRe = regexp.MustCompile(`(\s*https://t\.co/\S+)+$`)

func NewXAdapter(client *Client, limit int) *XAdapter {
	return &XAdapter{
		client:         client,
		apiBase:        "https://api.twitter.com",
		tokenURL:       "https://api.twitter.com/2/oauth2/token",
		limit:          limit,
		consumerKey:    os.Getenv("X_CONSUMER_KEY"),
		consumerSecret: os.Getenv("X_CONSUMER_SECRET"),
		staticBearer:   os.Getenv("X_BEARER_TOKEN"),
	}
}

func (a *XAdapter) Name() string { return "X" }

func (a *XAdapter) Fetch(ctx context.Context, cat config.CategoryConfig) ([]models.RawItem, error) {
	token := a.accessToken(ctx)
	if token == "" {
		config.Logger.Warnf("x: no access token available, skipping (category=%s)", cat.Key)
		return nil, nil
	}

	var all []models.RawItem
	var lastErr error
	for _, query := range cat.XQueries {
		q := query
		items, err := runChain(ctx, []tryFetch{
			func(ctx context.Context) ([]models.RawItem, error) { return a.searchV2(ctx, token, q) },
			func(ctx context.Context) ([]models.RawItem, error) { return a.searchV11(ctx, token, q) },
		})
		if err != nil {
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

// accessToken exchanges client credentials for an OAuth2 bearer token,
// falling back to the statically configured bearer when the exchange is not
// possible or fails.
func (a *XAdapter) accessToken(ctx context.Context) string {
	if a.consumerKey == "" || a.consumerSecret == "" {
		return a.staticBearer
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(a.consumerKey + ":" + a.consumerSecret))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return a.staticBearer
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := a.client.Do(req)
	if err != nil {
		config.Logger.Warnf("x: oauth token request failed: %v", err)
		return a.staticBearer
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		config.Logger.Warnf("x: oauth token request returned %d", resp.StatusCode)
		return a.staticBearer
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.AccessToken == "" {
		return a.staticBearer
	}
	return body.AccessToken
}

type xV2Response struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		AuthorID      string `json:"author_id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

func (a *XAdapter) searchV2(ctx context.Context, token, query string) ([]models.RawItem, error) {
	u := fmt.Sprintf(
		"%s/2/tweets/search/recent?query=%s&max_results=%d&sort_order=relevancy"+
			"&tweet.fields=created_at,author_id,public_metrics,text&expansions=author_id&user.fields=name,username",
		a.apiBase, url.QueryEscape(query), a.limit)

	var body xV2Response
	if err := a.client.GetJSON(ctx, u, map[string]string{"Authorization": "Bearer " + token}, &body); err != nil {
		return nil, err
	}

	users := make(map[string]struct{ name, username string }, len(body.Includes.Users))
	for _, u := range body.Includes.Users {
		users[u.ID] = struct{ name, username string }{u.Name, u.Username}
	}

	items := make([]models.RawItem, 0, len(body.Data))
	for _, t := range body.Data {
		author := "Unknown"
		username := "x"
		if u, ok := users[t.AuthorID]; ok {
			author = fmt.Sprintf("@%s (%s)", u.username, u.name)
			username = u.username
		}
		published, _ := time.Parse(time.RFC3339, t.CreatedAt)
		items = append(items, models.RawItem{
			Snippet:     stripTcoTail(t.Text),
			URL:         fmt.Sprintf("https://x.com/%s/status/%s", username, t.ID),
			SourceName:  "X",
			Author:      author,
			Engagement:  t.PublicMetrics.LikeCount + 2*t.PublicMetrics.RetweetCount,
			PublishedAt: published,
		})
	}
	return items, nil
}

type xV11Response struct {
	Statuses []struct {
		IDStr         string `json:"id_str"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		RetweetCount  int    `json:"retweet_count"`
		FavoriteCount int    `json:"favorite_count"`
		User          struct {
			ScreenName string `json:"screen_name"`
			Name       string `json:"name"`
		} `json:"user"`
	} `json:"statuses"`
}

func (a *XAdapter) searchV11(ctx context.Context, token, query string) ([]models.RawItem, error) {
	u := fmt.Sprintf("%s/1.1/search/tweets.json?q=%s&result_type=popular&count=%d",
		a.apiBase, url.QueryEscape(query), a.limit)

	var body xV11Response
	if err := a.client.GetJSON(ctx, u, map[string]string{"Authorization": "Bearer " + token}, &body); err != nil {
		return nil, err
	}

	items := make([]models.RawItem, 0, len(body.Statuses))
	for _, t := range body.Statuses {
		published, _ := time.Parse(time.RubyDate, t.CreatedAt)
		items = append(items, models.RawItem{
			Snippet:     stripTcoTail(t.Text),
			URL:         fmt.Sprintf("https://twitter.com/%s/status/%s", t.User.ScreenName, t.IDStr),
			SourceName:  "X",
			Author:      fmt.Sprintf("@%s (%s)", t.User.ScreenName, t.User.Name),
			Engagement:  t.FavoriteCount + 2*t.RetweetCount,
			PublishedAt: published,
		})
	}
	return items, nil
}

// stripTcoTail drops trailing shortened-link noise from tweet text.
func stripTcoTail(text string) string {
	return strings.TrimSpace(tcoTailRe.ReplaceAllString(text, ""))
}
