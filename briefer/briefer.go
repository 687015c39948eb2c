package briefer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"vocab-updated/config"
	"vocab-updated/models"
	"vocab-updated/repositories"
)

const (
	digestMax        = 20
	digestSnippetMax = 300
	highlightsMax    = 5
	topSourcesMax    = 10
	extractiveTop    = 3
	highlightTextMax = 120

	recentDays          = 3
	recentHighlightsMax = 6
)

const systemInstructionFmt = `You are a concise tech news briefing writer. Topic focus: %s.
Write a daily brief from the sources provided. Be specific — mention names, products, numbers.
Return JSON: { "summary": "2-4 sentence overview paragraph", "highlights": ["bullet 1", "bullet 2", ...up to 5] }
Each highlight should be one impactful sentence. Reference which source platform (X, Reddit, HN) when relevant.
Only valid JSON, no markdown fences.`

// Briefer turns a ranked item list into a CategoryBrief. When a Gemini key
// is configured and the quota allows it, one LLM call is made per category;
// every failure path degrades to the deterministic extractive brief.
type Briefer struct {
	apiKey     string
	model      string
	quota      *QuotaLimiter
	aiLogs     *repositories.AILogRepository     // optional
	history    *repositories.DailyNewsRepository // optional, anti-repetition hint
	llmTimeout time.Duration
}

func New(quota *QuotaLimiter, aiLogs *repositories.AILogRepository, history *repositories.DailyNewsRepository, llmTimeout time.Duration) *Briefer {
	return &Briefer{
		apiKey:     os.Getenv("GEMINI_API_KEY"),
		model:      config.GetConfig().GeminiModel,
		quota:      quota,
		aiLogs:     aiLogs,
		history:    history,
		llmTimeout: llmTimeout,
	}
}

// Synthesize builds the brief for one category. Top sources come straight
// from the ranked items and never depend on the LLM output.
func (b *Briefer) Synthesize(ctx context.Context, cat config.CategoryConfig, items []models.RawItem) models.CategoryBrief {
	brief := models.CategoryBrief{
		Highlights: []string{},
		Sources:    topSources(items),
		FetchedAt:  time.Now(),
	}

	if len(items) == 0 {
		brief.Summary = fmt.Sprintf("No significant %s news found today.", cat.Name)
		return brief
	}

	if b.apiKey == "" {
		brief.Summary, brief.Highlights = extractiveBrief(cat.Name, items)
		return brief
	}

	if b.quota != nil {
		ok, err := b.quota.WaitAndReserve(ctx)
		if err != nil || !ok {
			if err != nil {
				config.Logger.Warnf("briefer: quota wait aborted (category=%s): %v", cat.Key, err)
			} else {
				config.Logger.Warnf("briefer: daily LLM quota exhausted, extractive brief (category=%s)", cat.Key)
			}
			brief.Summary, brief.Highlights = extractiveBrief(cat.Name, items)
			return brief
		}
	}

	summary, highlights, err := b.generate(ctx, cat, items)
	if err != nil {
		config.Logger.Warnf("briefer: LLM brief failed, extractive fallback (category=%s): %v", cat.Key, err)
		brief.Summary, brief.Highlights = extractiveBrief(cat.Name, items)
		return brief
	}

	brief.Summary = summary
	brief.Highlights = highlights
	return brief
}

// Brief is the JSON object the LLM is asked to return.
type Brief struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

func (b *Briefer) generate(ctx context.Context, cat config.CategoryConfig, items []models.RawItem) (string, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.llmTimeout)
	defer cancel()

	requestedAt := time.Now()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: b.apiKey})
	if err != nil {
		return "", nil, err
	}

	instruction := fmt.Sprintf(systemInstructionFmt, cat.BriefFocus)
	prompt := fmt.Sprintf("Today's raw sources for %s:\n\n%s", cat.Name, digest(items))
	if avoid := b.recentHighlights(ctx, cat.Key); len(avoid) > 0 {
		prompt += "\n\nRecently covered, avoid repeating: " + strings.Join(avoid, "; ")
	}

	result, err := client.Models.GenerateContent(
		ctx,
		b.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		},
	)
	if err != nil {
		b.logCall(cat.Key, requestedAt, "", err)
		return "", nil, err
	}

	text := result.Text()
	parsed, err := ParseBriefJSON(text)
	b.logCall(cat.Key, requestedAt, text, err)
	if err != nil {
		return "", nil, err
	}

	highlights := parsed.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	if len(highlights) > highlightsMax {
		highlights = highlights[:highlightsMax]
	}
	return parsed.Summary, highlights, nil
}

// ParseBriefJSON parses LLM output into a brief, tolerating markdown code
// fences the model was told not to emit but sometimes does anyway.
func ParseBriefJSON(text string) (Brief, error) {
	var parsed Brief
	cleaned := StripFences(text)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Brief{}, fmt.Errorf("unparseable brief JSON: %w", err)
	}
	return parsed, nil
}

// StripFences removes a wrapping ```json ... ``` (or bare ```) block.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// recentHighlights pulls highlight lines from the last few cached days so
// the model can steer away from stories it already covered. Best effort.
func (b *Briefer) recentHighlights(ctx context.Context, categoryKey string) []string {
	if b.history == nil {
		return nil
	}
	lookupCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	days, err := b.history.ListRecent(lookupCtx, recentDays)
	if err != nil {
		config.Logger.Debugf("briefer: recent lookup failed: %v", err)
		return nil
	}

	var out []string
	for _, day := range days {
		brief, ok := day.Briefs[categoryKey]
		if !ok {
			continue
		}
		for _, h := range brief.Highlights {
			out = append(out, truncate(h, 80))
			if len(out) >= recentHighlightsMax {
				return out
			}
		}
	}
	return out
}

// digest renders the top items as numbered source lines for the prompt.
func digest(items []models.RawItem) string {
	top := items
	if len(top) > digestMax {
		top = top[:digestMax]
	}

	var sb strings.Builder
	for i, item := range top {
		sb.WriteString(fmt.Sprintf("[%d] (%s) ", i+1, item.SourceName))
		if item.Title != "" {
			sb.WriteString(item.Title + ": ")
		}
		sb.WriteString(truncate(item.Snippet, digestSnippetMax))
		if item.URL != "" {
			sb.WriteString(" — " + item.URL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// extractiveBrief is the deterministic non-LLM path: summary from the top
// three items, highlights from the top five.
func extractiveBrief(categoryName string, items []models.RawItem) (string, []string) {
	lead := items
	if len(lead) > extractiveTop {
		lead = lead[:extractiveTop]
	}
	parts := make([]string, 0, len(lead))
	for _, item := range lead {
		parts = append(parts, truncate(item.Text(), 80))
	}
	summary := fmt.Sprintf("Today in %s: %s...", categoryName, strings.Join(parts, ". "))

	top := items
	if len(top) > highlightsMax {
		top = top[:highlightsMax]
	}
	highlights := make([]string, 0, len(top))
	for i, item := range top {
		highlights = append(highlights, fmt.Sprintf("%d. %s [%s]", i+1, truncate(item.Text(), highlightTextMax), item.SourceName))
	}
	return summary, highlights
}

func topSources(items []models.RawItem) []models.TopSource {
	top := items
	if len(top) > topSourcesMax {
		top = top[:topSourcesMax]
	}
	out := make([]models.TopSource, 0, len(top))
	for _, item := range top {
		title := item.Title
		if title == "" {
			title = truncate(item.Snippet, 100)
		}
		out = append(out, models.TopSource{
			Title:      title,
			URL:        item.URL,
			SourceName: item.SourceName,
			Author:     item.Author,
		})
	}
	return out
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
