package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"

	"vocab-updated/aggregator"
	"vocab-updated/briefer"
	"vocab-updated/cmd/api/router"
	"vocab-updated/config"
	"vocab-updated/db"
	_ "vocab-updated/docs" // swag generated package
	"vocab-updated/excerpt"
	"vocab-updated/kafka"
	"vocab-updated/repositories"
	"vocab-updated/sources"
)

// @title           VocabUpdated Daily Content API
// @version         2.0
// @description     Daily multi-source content aggregation for the VocabUpdated app
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in               header
// @name             Authorization
func main() {
	config.InitApp()

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB:", err)
	}

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
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		if err := kafka.CreateTopicsIfNotExists(brokers); err != nil {
			config.Logger.Warnf("kafka topic setup failed: %v", err)
		}
		p, err := kafka.NewKafkaProducer(brokers)
		if err != nil {
			config.Logger.Warnf("kafka producer disabled: %v", err)
		} else {
			producer = p
			defer p.Close()
		}
	}

	agg := aggregator.New(newsRepo, adapters, synth, extractor, producer, "api")
	r := router.New(agg, newsRepo)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	srv := &http.Server{Addr: ":8080", Handler: handler}
	config.Logger.Info("api listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
