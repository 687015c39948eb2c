package briefer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocab-updated/config"
	"vocab-updated/models"
)

func testItems() []models.RawItem {
	return []models.RawItem{
		{Title: "FSRS scheduler lands in Anki", URL: "https://example.com/1", SourceName: "Hacker News", Author: "alice", Engagement: 300},
		{Snippet: "New dual n-back study replicates under preregistration", URL: "https://example.com/2", SourceName: "X", Author: "@lab (Lab)", Engagement: 120},
		{Title: "Vocabulary growth curves in adults", URL: "https://example.com/3", SourceName: "Reddit r/linguistics", Author: "u/phon", Engagement: 40},
	}
}

func testCat() config.CategoryConfig {
	return config.CategoryConfig{Key: "intelligence", Name: "Intelligence & Learning", BriefFocus: "learning science"}
}

func TestSynthesizeEmptyItemsUsesPlaceholder(t *testing.T) {
	b := &Briefer{model: "test"}

	brief := b.Synthesize(context.Background(), testCat(), nil)
	assert.Equal(t, "No significant Intelligence & Learning news found today.", brief.Summary)
	assert.Empty(t, brief.Highlights)
	assert.Empty(t, brief.Sources)
	assert.False(t, brief.FetchedAt.IsZero())
}

func TestSynthesizeWithoutAPIKeyIsExtractive(t *testing.T) {
	b := &Briefer{model: "test"}

	brief := b.Synthesize(context.Background(), testCat(), testItems())
	require.True(t, strings.HasPrefix(brief.Summary, "Today in Intelligence & Learning:"), "summary: %s", brief.Summary)
	assert.Contains(t, brief.Summary, "FSRS scheduler lands in Anki")
	require.Len(t, brief.Highlights, 3)
	assert.Equal(t, "1. FSRS scheduler lands in Anki [Hacker News]", brief.Highlights[0])
	assert.Contains(t, brief.Highlights[1], "dual n-back")
}

func TestSynthesizeTopSourcesComeFromRankedItems(t *testing.T) {
	b := &Briefer{model: "test"}

	brief := b.Synthesize(context.Background(), testCat(), testItems())
	require.Len(t, brief.Sources, 3)
	assert.Equal(t, "FSRS scheduler lands in Anki", brief.Sources[0].Title)
	// title falls back to the snippet when absent
	assert.Equal(t, "New dual n-back study replicates under preregistration", brief.Sources[1].Title)
	assert.Equal(t, "X", brief.Sources[1].SourceName)
}

func TestSynthesizeCapsTopSources(t *testing.T) {
	items := make([]models.RawItem, 0, 14)
	for i := 0; i < 14; i++ {
		items = append(items, models.RawItem{Title: strings.Repeat("t", i+1), SourceName: "X"})
	}

	b := &Briefer{model: "test"}
	brief := b.Synthesize(context.Background(), testCat(), items)
	assert.Len(t, brief.Sources, topSourcesMax)
}

func TestSynthesizeQuotaExhaustedFallsBackToExtractive(t *testing.T) {
	b := &Briefer{
		apiKey: "key-set-but-quota-gone",
		model:  "test",
		quota:  &QuotaLimiter{dailyLimit: 1, usedToday: 1, dayKey: time.Now().UTC().Format("2006-01-02")},
	}

	brief := b.Synthesize(context.Background(), testCat(), testItems())
	assert.True(t, strings.HasPrefix(brief.Summary, "Today in Intelligence & Learning:"))
	assert.NotEmpty(t, brief.Highlights)
}

func TestExtractiveBriefTruncatesLongHighlights(t *testing.T) {
	long := strings.Repeat("w", 500)
	_, highlights := extractiveBrief("Cat", []models.RawItem{{Title: long, SourceName: "X"}})
	require.Len(t, highlights, 1)
	assert.Contains(t, highlights[0], strings.Repeat("w", highlightTextMax))
	assert.NotContains(t, highlights[0], strings.Repeat("w", highlightTextMax+1))
}

func TestParseBriefJSON(t *testing.T) {
	parsed, err := ParseBriefJSON(`{"summary": "s", "highlights": ["a", "b"]}`)
	require.NoError(t, err)
	assert.Equal(t, "s", parsed.Summary)
	assert.Equal(t, []string{"a", "b"}, parsed.Highlights)

	_, err = ParseBriefJSON("not json at all")
	assert.Error(t, err)
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                          `{"a":1}`,
		"```json\n{\"a\":1}\n```":            `{"a":1}`,
		"```\n{\"a\":1}\n```":                `{"a":1}`,
		"  ```json\n{\"a\":1}\n```  ":        `{"a":1}`,
		"{\"a\":1} plain text with ``` tail": `{"a":1} plain text with ``` tail`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input: %q", in)
	}
}

func TestDigestFormat(t *testing.T) {
	out := digest(testItems()[:1])
	assert.Contains(t, out, "[1] (Hacker News) FSRS scheduler lands in Anki:")
	assert.Contains(t, out, "https://example.com/1")
}
