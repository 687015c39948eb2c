package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopSource is one cited item inside a CategoryBrief.
type TopSource struct {
	Title      string `bson:"title" json:"title"`
	URL        string `bson:"url" json:"url"`
	SourceName string `bson:"source" json:"source"`
	Author     string `bson:"author" json:"author"`
}

// CategoryBrief is the synthesized daily brief for one category.
// Immutable after construction; one per category per day.
type CategoryBrief struct {
	Summary    string      `bson:"summary" json:"summary"`
	Highlights []string    `bson:"highlights" json:"highlights"`
	Sources    []TopSource `bson:"sources" json:"sources"`
	FetchedAt  time.Time   `bson:"fetched_at" json:"fetched_at"`
}

// DailyNews is the full day's payload and the unit of caching.
// Collection: daily_news, unique on date (YYYY-MM-DD).
type DailyNews struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id,omitempty"`
	Date      string                   `bson:"date" json:"date"`
	Briefs    map[string]CategoryBrief `bson:"briefs" json:"briefs"`
	FetchedAt time.Time                `bson:"fetched_at" json:"fetched_at"`
	CreatedAt time.Time                `bson:"created_at" json:"created_at"`
}

// DateKey formats t as the calendar day key used by the cache.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
