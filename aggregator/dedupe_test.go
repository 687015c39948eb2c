package aggregator

import (
	"strings"
	"testing"

	"vocab-updated/models"
)

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	items := []models.RawItem{
		{Title: "Spaced Repetition Works", SourceName: "X", Engagement: 5},
		{Title: "spaced repetition works", SourceName: "Reddit r/anki", Engagement: 99},
		{Title: "Something else", SourceName: "Hacker News"},
	}

	out := Dedupe(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique items, got %d", len(out))
	}
	if out[0].SourceName != "X" {
		t.Fatalf("first occurrence must win, got %q", out[0].SourceName)
	}
}

func TestDedupeComparesOnlyLeadingCharacters(t *testing.T) {
	base := strings.Repeat("a", fingerprintLen)
	items := []models.RawItem{
		{Title: base + " first tail"},
		{Title: base + " completely different tail"},
	}

	out := Dedupe(items)
	if len(out) != 1 {
		t.Fatalf("titles sharing the first %d characters must collapse, got %d items", fingerprintLen, len(out))
	}
}

func TestDedupeShortDistinctTitlesSurvive(t *testing.T) {
	items := []models.RawItem{
		{Title: "CRISPR"},
		{Title: "CRISPR base editing"},
	}
	if out := Dedupe(items); len(out) != 2 {
		t.Fatalf("distinct short titles must both survive, got %d", len(out))
	}
}

func TestDedupeUsesSnippetWhenTitleEmpty(t *testing.T) {
	items := []models.RawItem{
		{Snippet: "A tweet about neurofeedback"},
		{Snippet: "a TWEET about Neurofeedback"},
	}
	if out := Dedupe(items); len(out) != 1 {
		t.Fatalf("case-insensitive snippet fingerprints must collapse, got %d", len(out))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	items := []models.RawItem{
		{Title: "one"}, {Title: "one"}, {Title: "two"},
	}
	once := Dedupe(items)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("dedupe must be idempotent: %d vs %d", len(once), len(twice))
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	if out := Dedupe(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}
