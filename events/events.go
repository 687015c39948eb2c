package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the daily-pipeline events published to Kafka.
type EventType string

const (
	DailyBriefRequested EventType = "daily.brief_requested"
	DailyBriefGenerated EventType = "daily.brief_generated"
)

// BaseEvent carries the fields common to every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "api", "aggregate"
	Version   string    `json:"version"`
}

// NewBase fills the common envelope for a freshly created event.
func NewBase(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    source,
		Version:   "1.0",
	}
}

// DailyBriefRequestedEvent is published when a caller forces a refresh for
// a date (manual refresh or the midnight trigger).
type DailyBriefRequestedEvent struct {
	BaseEvent
	Date        string `json:"date"`
	RequestedBy string `json:"requested_by"`
}

// DailyBriefGeneratedEvent is published after a cache-miss build wrote a
// new payload. Downstream consumers (newsletter, notifications) key off it.
type DailyBriefGeneratedEvent struct {
	BaseEvent
	Date            string   `json:"date"`
	Categories      []string `json:"categories"`
	EmptyCategories []string `json:"empty_categories"`
}

// SerializeEvent marshals an event and returns its type tag.
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case DailyBriefRequestedEvent:
		eventType = e.Type
	case DailyBriefGeneratedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}

// DeserializeEvent unmarshals raw bytes into the struct for the type tag.
func DeserializeEvent(eventType EventType, data []byte) (interface{}, error) {
	var event interface{}

	switch eventType {
	case DailyBriefRequested:
		event = &DailyBriefRequestedEvent{}
	case DailyBriefGenerated:
		event = &DailyBriefGeneratedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}
