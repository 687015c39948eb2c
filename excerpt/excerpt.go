package excerpt

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"vocab-updated/config"
	"vocab-updated/models"
)

const (
	snippetMax   = 300
	maxBodyBytes = 2 << 20 // 2MiB cap on fetched pages
)

// Extractor backfills missing snippets by fetching an item's page and
// extracting its readable text. Strictly best effort: any failure leaves
// the item as it was.
type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Backfill fills the snippet of up to n leading items that have none.
// Items are expected to arrive ranked, so the spent fetches go to the
// entries most likely to be cited.
func (e *Extractor) Backfill(ctx context.Context, items []models.RawItem, n int) {
	filled := 0
	for i := range items {
		if filled >= n {
			return
		}
		if items[i].Snippet != "" || items[i].URL == "" {
			continue
		}
		text, err := e.fetchText(ctx, items[i].URL)
		if err != nil {
			config.Logger.Debugf("excerpt: %s: %v", items[i].URL, err)
			continue
		}
		// a fetched page with no readable text does not spend the budget
		if text == "" {
			continue
		}
		items[i].Snippet = truncate(text, snippetMax)
		filled++
	}
}

func (e *Extractor) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return ExtractText(string(body)), nil
}

// ExtractText pulls readable text out of an HTML document: readability
// first, trafilatura when readability comes back empty or errors.
func ExtractText(htmlStr string) string {
	if text := extractWithReadability(htmlStr); text != "" {
		return text
	}
	return extractWithTrafilatura(htmlStr)
}

func extractWithReadability(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func extractWithTrafilatura(htmlStr string) string {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.ContentText)
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
