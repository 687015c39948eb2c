package kafka

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"vocab-updated/config"
	"vocab-updated/events"
)

// KafkaProducer is the confluent-kafka-go backed Producer implementation.
type KafkaProducer struct {
	producer *kafka.Producer
}

// NewKafkaProducer initializes the producer and starts the delivery-report
// drain goroutine.
func NewKafkaProducer(brokers string) (*KafkaProducer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.Logger.Errorf("message delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				config.Logger.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaProducer{producer: p}, nil
}

// PublishEvent serializes the event and waits for its delivery report.
func (k *KafkaProducer) PublishEvent(ctx context.Context, topic string, event interface{}) error {
	data, eventType, err := events.SerializeEvent(event)
	if err != nil {
		return err
	}

	// Buffered and never closed: if the context expires first, the late
	// delivery report still has somewhere to land and the channel is simply
	// collected. Closing it here would panic librdkafka's report goroutine.
	deliveryChan := make(chan kafka.Event, 1)

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(eventType),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m := ev.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("message delivery failed: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close flushes pending messages and shuts the producer down.
func (k *KafkaProducer) Close() {
	if k.producer != nil {
		if remaining := k.producer.Flush(5000); remaining > 0 {
			config.Logger.Warnf("%d messages still pending after flush", remaining)
		}
		k.producer.Close()
		config.Logger.Info("kafka producer closed")
	}
}
