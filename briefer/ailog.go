package briefer

import (
	"context"
	"time"

	"vocab-updated/config"
	"vocab-updated/models"
)

// logCall records one LLM attempt in ai_logs. Logging must never affect the
// request path, so it runs with its own short deadline and failures are
// only logged.
func (b *Briefer) logCall(categoryKey string, requestedAt time.Time, response string, callErr error) {
	if b.aiLogs == nil {
		return
	}

	completedAt := time.Now()
	log := models.AILog{
		CategoryKey:    categoryKey,
		ModelName:      b.model,
		DurationMs:     completedAt.Sub(requestedAt).Milliseconds(),
		Success:        callErr == nil,
		OutputResponse: truncate(response, 200),
		RequestedAt:    requestedAt,
		CompletedAt:    completedAt,
	}
	if callErr != nil {
		msg := callErr.Error()
		log.ErrorMessage = &msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := b.aiLogs.Insert(ctx, log); err != nil {
		config.Logger.Warnf("briefer: failed to insert ai_log: %v", err)
	}
}
