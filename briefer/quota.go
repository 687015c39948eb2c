package briefer

import (
	"context"
	"sync"
	"time"

	"vocab-updated/config"
)

// QuotaLimiter enforces per-minute and daily budgets for brief-generation
// LLM calls. In-memory, assuming a single process; counters reset on
// restart and at each UTC day rollover.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// NewQuotaLimiterFromConfig builds a QuotaLimiter from the llm_quota
// section. Values of 0 or below leave that direction unlimited.
func NewQuotaLimiterFromConfig(cfg config.AppConfig) *QuotaLimiter {
	q := cfg.LLMQuota

	requestsPerDay := q.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	requestsPerMinute := q.RequestsPerMinute
	if requestsPerMinute < 0 {
		requestsPerMinute = 0
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &QuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
	}
}

// WaitAndReserve applies both budgets before an LLM call.
//   - (false, nil): the daily budget is spent; the caller must skip the call.
//   - (false, err): the context ended while pacing; the caller decides.
//   - (true, nil): a slot was reserved.
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := time.Now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			nextAllowed := l.lastCall.Add(l.interval)
			delay = time.Until(nextAllowed)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		l.mu.Unlock()
		select {
		case <-time.After(delay):
			// re-evaluate under the lock
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
