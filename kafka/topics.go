package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"vocab-updated/config"
)

const (
	// TopicDailyEvents carries daily.brief_requested / daily.brief_generated.
	TopicDailyEvents = "daily-events"
)

// CreateTopicsIfNotExists creates the daily events topic when missing.
func CreateTopicsIfNotExists(brokers string) error {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	topics := []kafka.TopicSpecification{
		{
			Topic:             TopicDailyEvents,
			NumPartitions:     3,
			ReplicationFactor: 1,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := adminClient.CreateTopics(ctx, topics)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			config.Logger.Errorf("failed to create topic %s: %v", result.Topic, result.Error)
		} else {
			config.Logger.Infof("topic %s is ready", result.Topic)
		}
	}

	return nil
}
