package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vocab-updated/config"
)

func testCategory() config.CategoryConfig {
	return config.CategoryConfig{
		Key:      "intelligence",
		Name:     "Intelligence & Learning",
		XQueries: []string{"spaced repetition"},
	}
}

func newTestXAdapter(serverURL string) *XAdapter {
	return &XAdapter{
		client:       NewClient(5*time.Second, 0),
		apiBase:      serverURL,
		tokenURL:     serverURL + "/2/oauth2/token",
		limit:        15,
		staticBearer: "static-token",
	}
}

func TestXAdapterSkipsWithoutToken(t *testing.T) {
	a := &XAdapter{client: NewClient(time.Second, 0), limit: 10}

	items, err := a.Fetch(context.Background(), testCategory())
	if err != nil {
		t.Fatalf("missing credentials must not be an error, got %v", err)
	}
	if items != nil {
		t.Fatalf("expected no items without a token, got %+v", items)
	}
}

func TestXAdapterV2Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer static-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{
			"data": [
				{"id": "100", "text": "Anki just shipped FSRS by default https://t.co/abc123",
				 "author_id": "u1", "created_at": "2026-08-29T10:00:00Z",
				 "public_metrics": {"like_count": 10, "retweet_count": 5}}
			],
			"includes": {"users": [{"id": "u1", "name": "Memory Lab", "username": "memorylab"}]}
		}`))
	}))
	defer srv.Close()

	a := newTestXAdapter(srv.URL)
	items, err := a.Fetch(context.Background(), testCategory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Snippet != "Anki just shipped FSRS by default" {
		t.Fatalf("t.co tail not stripped: %q", item.Snippet)
	}
	if item.Engagement != 10+2*5 {
		t.Fatalf("expected engagement 20, got %d", item.Engagement)
	}
	if item.Author != "@memorylab (Memory Lab)" {
		t.Fatalf("unexpected author %q", item.Author)
	}
	if item.URL != "https://x.com/memorylab/status/100" {
		t.Fatalf("unexpected url %q", item.URL)
	}
	if item.SourceName != "X" {
		t.Fatalf("unexpected source %q", item.SourceName)
	}
}

func TestXAdapterFallsBackToV11(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/tweets/search/recent":
			w.WriteHeader(http.StatusForbidden)
		case "/1.1/search/tweets.json":
			w.Write([]byte(`{
				"statuses": [
					{"id_str": "200", "text": "neurofeedback results",
					 "created_at": "Sat Aug 29 10:00:00 +0000 2026",
					 "retweet_count": 3, "favorite_count": 4,
					 "user": {"screen_name": "hrvnerd", "name": "HRV Nerd"}}
				]
			}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newTestXAdapter(srv.URL)
	items, err := a.Fetch(context.Background(), testCategory())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item from v1.1 fallback, got %d", len(items))
	}
	if items[0].Engagement != 4+2*3 {
		t.Fatalf("expected engagement 10, got %d", items[0].Engagement)
	}
	if items[0].URL != "https://twitter.com/hrvnerd/status/200" {
		t.Fatalf("unexpected url %q", items[0].URL)
	}
}

func TestXAdapterTokenExchangeFallsBackToStaticBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2/oauth2/token" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	a := newTestXAdapter(srv.URL)
	a.consumerKey = "key"
	a.consumerSecret = "secret"

	if token := a.accessToken(context.Background()); token != "static-token" {
		t.Fatalf("expected static bearer fallback, got %q", token)
	}
}

func TestStripTcoTail(t *testing.T) {
	cases := map[string]string{
		"plain text":                              "plain text",
		"text https://t.co/one":                   "text",
		"text https://t.co/one https://t.co/two":  "text",
		"https://t.co/mid stays in the middle ok": "https://t.co/mid stays in the middle ok",
	}
	for in, want := range cases {
		if got := stripTcoTail(in); got != want {
			t.Fatalf("stripTcoTail(%q) = %q, want %q", in, got, want)
		}
	}
}
