package aggregator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vocab-updated/config"
	"vocab-updated/events"
	"vocab-updated/kafka"
	"vocab-updated/models"
	"vocab-updated/sources"
)

// Store is the date-keyed cache the pipeline reads through.
type Store interface {
	GetByDate(ctx context.Context, date string) (*models.DailyNews, bool, error)
	UpsertByDate(ctx context.Context, d *models.DailyNews) (*models.DailyNews, error)
}

// Synthesizer turns a ranked item list into one category's brief.
type Synthesizer interface {
	Synthesize(ctx context.Context, cat config.CategoryConfig, items []models.RawItem) models.CategoryBrief
}

// SnippetFiller backfills missing snippets on ranked items (best effort).
type SnippetFiller interface {
	Backfill(ctx context.Context, items []models.RawItem, n int)
}

// Aggregator owns the cache-or-compute decision for a day's payload and
// drives fetch → dedupe → rank → synthesize per category.
type Aggregator struct {
	store    Store
	adapters []sources.Adapter
	synth    Synthesizer
	filler   SnippetFiller  // optional
	producer kafka.Producer // optional
	source   string         // event source tag: "api" or "aggregate"

	categories     []config.CategoryConfig
	sourceTimeout  time.Duration
	handlerTimeout time.Duration
	backfillN      int

	group singleflight.Group
}

func New(store Store, adapters []sources.Adapter, synth Synthesizer, filler SnippetFiller, producer kafka.Producer, source string) *Aggregator {
	cfg := config.GetConfig()
	return &Aggregator{
		store:          store,
		adapters:       adapters,
		synth:          synth,
		filler:         filler,
		producer:       producer,
		source:         source,
		categories:     cfg.Categories,
		sourceTimeout:  time.Duration(cfg.Timeouts.SourceSeconds) * time.Second,
		handlerTimeout: time.Duration(cfg.Timeouts.HandlerSeconds) * time.Second,
		backfillN:      cfg.Sources.ExcerptBackfill,
	}
}

// GetOrBuild returns the payload for a calendar day key, computing and
// caching it on the first miss of the day. Concurrent callers for the same
// date share a single in-flight build instead of each refetching.
func (a *Aggregator) GetOrBuild(ctx context.Context, date string) (*models.DailyNews, error) {
	stored, found, err := a.store.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if found && a.isComplete(stored) {
		return stored, nil
	}

	// The build runs on its own deadline, detached from the first caller's
	// context: waiters joining via singleflight must not have their shared
	// result cancelled by whoever happened to arrive first.
	v, err, _ := a.group.Do(date, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.Background(), a.handlerTimeout)
		defer cancel()
		return a.build(buildCtx, date)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyNews), nil
}

type categoryResult struct {
	brief     models.CategoryBrief
	itemCount int
	attempted bool // the full fetch ran to completion before the deadline
}

func (a *Aggregator) build(ctx context.Context, date string) (*models.DailyNews, error) {
	started := time.Now()
	a.publish(events.DailyBriefRequestedEvent{
		BaseEvent:   events.NewBase(events.DailyBriefRequested, a.source),
		Date:        date,
		RequestedBy: a.source,
	})

	results := make([]categoryResult, len(a.categories))
	var wg sync.WaitGroup
	for i, cat := range a.categories {
		wg.Add(1)
		go func(i int, cat config.CategoryConfig) {
			defer wg.Done()
			results[i] = a.buildCategory(ctx, cat)
		}(i, cat)
	}
	wg.Wait()

	briefs := make(map[string]models.CategoryBrief, len(a.categories))
	var emptyCats []string
	allAttempted := true
	for i, cat := range a.categories {
		briefs[cat.Key] = results[i].brief
		if results[i].itemCount == 0 {
			emptyCats = append(emptyCats, cat.Key)
		}
		if !results[i].attempted {
			allAttempted = false
		}
	}

	payload := &models.DailyNews{
		Date:      date,
		Briefs:    briefs,
		FetchedAt: time.Now(),
	}

	if !allAttempted {
		// The deadline cut at least one category short. Serve what we have
		// but leave the cache row unwritten so a later request can build the
		// day properly.
		config.Logger.Warnf("aggregator: build for %s truncated by deadline, not caching", date)
		return payload, nil
	}

	stored, err := a.store.UpsertByDate(ctx, payload)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, cat := range a.categories {
		keys = append(keys, cat.Key)
	}
	a.publish(events.DailyBriefGeneratedEvent{
		BaseEvent:       events.NewBase(events.DailyBriefGenerated, a.source),
		Date:            date,
		Categories:      keys,
		EmptyCategories: emptyCats,
	})

	config.Logger.Infof("aggregator: built %s in %s (categories=%d empty=%d)",
		date, time.Since(started).Round(time.Millisecond), len(a.categories), len(emptyCats))
	return stored, nil
}

// buildCategory fans out to every adapter, merges in source priority order,
// then runs dedupe → rank → snippet backfill → synthesize. Adapter failures
// stay inside the category boundary.
func (a *Aggregator) buildCategory(ctx context.Context, cat config.CategoryConfig) categoryResult {
	perSource := make([][]models.RawItem, len(a.adapters))
	var wg sync.WaitGroup
	for i, ad := range a.adapters {
		wg.Add(1)
		go func(i int, ad sources.Adapter) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()
			items, err := ad.Fetch(fetchCtx, cat)
			if err != nil {
				config.Logger.Warnf("aggregator: source %s failed (category=%s): %v", ad.Name(), cat.Key, err)
				return
			}
			perSource[i] = items
		}(i, ad)
	}
	wg.Wait()

	if ctx.Err() != nil {
		// Deadline hit mid-fetch: represent the category with an explicit
		// empty brief instead of letting it vanish from the payload.
		empty := a.synth.Synthesize(context.Background(), cat, nil)
		return categoryResult{brief: empty, attempted: false}
	}

	var merged []models.RawItem
	for _, items := range perSource {
		merged = append(merged, items...)
	}

	ranked := Rank(Dedupe(merged))
	if a.filler != nil && a.backfillN > 0 {
		a.filler.Backfill(ctx, ranked, a.backfillN)
	}

	config.Logger.Infof("aggregator: category %s merged=%d unique=%d", cat.Key, len(merged), len(ranked))
	return categoryResult{
		brief:     a.synth.Synthesize(ctx, cat, ranked),
		itemCount: len(ranked),
		attempted: true,
	}
}

// isComplete reports whether a stored payload can be served as the day's
// steady-state answer: every configured category is present and carries a
// recorded fetch attempt. Rows written by this process always qualify.
func (a *Aggregator) isComplete(d *models.DailyNews) bool {
	for _, cat := range a.categories {
		b, ok := d.Briefs[cat.Key]
		if !ok || b.FetchedAt.IsZero() {
			return false
		}
	}
	return true
}

func (a *Aggregator) publish(event interface{}) {
	if a.producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.producer.PublishEvent(ctx, kafka.TopicDailyEvents, event); err != nil {
		config.Logger.Warnf("aggregator: event publish failed: %v", err)
	}
}
