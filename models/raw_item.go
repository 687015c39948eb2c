package models

import "time"

// RawItem is one normalized item from an upstream content source.
// Items live only inside a single aggregation run and are never persisted
// individually.
type RawItem struct {
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	URL         string    `json:"url"`
	SourceName  string    `json:"source"`
	Author      string    `json:"author"`
	Engagement  int       `json:"engagement"`
	PublishedAt time.Time `json:"published_at"`
}

// Text returns the title when present, otherwise the snippet. The dedup
// fingerprint and the extractive brief both key off this.
func (r RawItem) Text() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Snippet
}
