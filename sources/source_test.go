package sources

import (
	"context"
	"errors"
	"testing"

	"vocab-updated/models"
)

func TestRunChainReturnsFirstNonEmptyResult(t *testing.T) {
	calls := []string{}
	items, err := runChain(context.Background(), []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) {
			calls = append(calls, "first")
			return nil, errors.New("boom")
		},
		func(ctx context.Context) ([]models.RawItem, error) {
			calls = append(calls, "second")
			return []models.RawItem{{Title: "hit"}}, nil
		},
		func(ctx context.Context) ([]models.RawItem, error) {
			calls = append(calls, "third")
			return []models.RawItem{{Title: "never"}}, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "hit" {
		t.Fatalf("expected result from second strategy, got %+v", items)
	}
	if len(calls) != 2 {
		t.Fatalf("expected third strategy to be skipped, calls: %v", calls)
	}
}

func TestRunChainSkipsEmptyResults(t *testing.T) {
	items, err := runChain(context.Background(), []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) { return nil, nil },
		func(ctx context.Context) ([]models.RawItem, error) {
			return []models.RawItem{{Title: "fallback"}}, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "fallback" {
		t.Fatalf("expected fallback result, got %+v", items)
	}
}

func TestRunChainReturnsLastErrorWhenAllFail(t *testing.T) {
	errFirst := errors.New("first")
	errLast := errors.New("last")
	items, err := runChain(context.Background(), []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) { return nil, errFirst },
		func(ctx context.Context) ([]models.RawItem, error) { return nil, errLast },
	})
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
	if !errors.Is(err, errLast) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestRunChainNilErrorWhenAllEmpty(t *testing.T) {
	items, err := runChain(context.Background(), []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) { return nil, nil },
		func(ctx context.Context) ([]models.RawItem, error) { return []models.RawItem{}, nil },
	})
	if err != nil {
		t.Fatalf("expected nil error for empty upstreams, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestRunChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := runChain(ctx, []tryFetch{
		func(ctx context.Context) ([]models.RawItem, error) {
			called = true
			return []models.RawItem{{Title: "x"}}, nil
		},
	})
	if err == nil {
		t.Fatalf("expected context error")
	}
	if called {
		t.Fatalf("strategy should not run after cancellation")
	}
}
