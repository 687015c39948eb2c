package sources

import (
	"context"

	"vocab-updated/config"
	"vocab-updated/models"
)

// Adapter fetches raw items for one category from one upstream provider.
// Implementations apply their own request timeouts and must never panic;
// on failure they return an empty slice and a non-fatal error.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, cat config.CategoryConfig) ([]models.RawItem, error)
}

// tryFetch is a single fetch strategy inside an adapter's fallback chain.
type tryFetch func(ctx context.Context) ([]models.RawItem, error)

// runChain tries strategies in order and returns the first non-empty,
// non-error result. If every strategy fails or comes back empty, it returns
// an empty slice plus the last error seen (nil when upstreams merely had
// nothing to say).
func runChain(ctx context.Context, strategies []tryFetch) ([]models.RawItem, error) {
	var lastErr error
	for _, try := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items, err := try(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, lastErr
}

// ForCategoryOrder builds the configured adapter set in source priority
// order: X, Reddit, Hacker News. Merge order across sources is this order,
// which fixes dedup and rank tie-breaks.
func ForCategoryOrder(client *Client) []Adapter {
	cfg := config.GetConfig().Sources
	return []Adapter{
		NewXAdapter(client, cfg.PerSourceLimit),
		NewRedditAdapter(client, cfg.RedditUserAgent, cfg.PerSourceLimit),
		NewHNAdapter(client, cfg.PerSourceLimit),
	}
}
