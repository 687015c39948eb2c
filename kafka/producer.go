package kafka

import "context"

// Producer publishes pipeline events. The aggregator treats publishing as
// fire-and-forget; a nil Producer disables it.
type Producer interface {
	PublishEvent(ctx context.Context, topic string, event interface{}) error
	Close()
}
