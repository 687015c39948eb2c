package main

import (
	"context"
	"log"
	"os"
	"time"

	"vocab-updated/aggregator"
	"vocab-updated/briefer"
	"vocab-updated/config"
	"vocab-updated/db"
	"vocab-updated/excerpt"
	"vocab-updated/kafka"
	"vocab-updated/models"
	"vocab-updated/repositories"
	"vocab-updated/sources"
)

// The aggregate binary warms the daily cache: one build at startup, then one
// build shortly after each UTC midnight. The API serves whatever it finds
// cached; requests that race this worker converge through the same
// upsert-by-date contract.
func main() {
	config.InitApp()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

	agg, closeFn := buildAggregator()
	defer closeFn()

	if err := runOnce(ctx, agg); err != nil {
		config.Logger.Errorf("aggregate runOnce error: %v", err)
	}

	for {
		now := time.Now().UTC()
		nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 5, 0, 0, time.UTC)
		sleepDur := time.Until(nextMidnight)
		if sleepDur <= 0 {
			sleepDur = time.Minute // fallback
		}
		config.Logger.Infof("aggregate sleeping until %s", nextMidnight.Format(time.RFC3339))
		time.Sleep(sleepDur)
		if err := runOnce(ctx, agg); err != nil {
			config.Logger.Errorf("aggregate runOnce error: %v", err)
		}
	}
}

// runOnce builds (or confirms) the payload for the current UTC day.
func runOnce(ctx context.Context, agg *aggregator.Aggregator) error {
	date := models.DateKey(time.Now().UTC())
	payload, err := agg.GetOrBuild(ctx, date)
	if err != nil {
		return err
	}
	config.Logger.Infof("aggregate completed for %s (categories=%d)", date, len(payload.Briefs))
	return nil
}

func buildAggregator() (*aggregator.Aggregator, func()) {
	cfg := config.GetConfig()
	sourceTimeout := time.Duration(cfg.Timeouts.SourceSeconds) * time.Second

	client := sources.NewClient(sourceTimeout, cfg.Sources.RequestsPerSecond)
	adapters := sources.ForCategoryOrder(client)

	newsRepo := repositories.NewDailyNewsRepository(db.Database())
	aiLogRepo := repositories.NewAILogRepository(db.Database())

	quota := briefer.NewQuotaLimiterFromConfig(cfg)
	synth := briefer.New(quota, aiLogRepo, newsRepo, time.Duration(cfg.Timeouts.LLMSeconds)*time.Second)
	extractor := excerpt.New(sourceTimeout)

	var producer kafka.Producer
	closeFn := func() {}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		if err := kafka.CreateTopicsIfNotExists(brokers); err != nil {
			config.Logger.Warnf("kafka topic setup failed: %v", err)
		}
		p, err := kafka.NewKafkaProducer(brokers)
		if err != nil {
			config.Logger.Warnf("kafka producer disabled: %v", err)
		} else {
			producer = p
			closeFn = p.Close
		}
	}

	return aggregator.New(newsRepo, adapters, synth, extractor, producer, "aggregate"), closeFn
}
