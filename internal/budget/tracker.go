// Package budget enforces a process-wide daily spending ceiling on
// model-agent calls. The day boundary is UTC midnight.
package budget

import (
	"sync"
	"time"
)

// DefaultDailyLimitUSD is the ceiling applied when no limit is configured.
const DefaultDailyLimitUSD = 1.00

// Tracker accumulates spend for the current UTC day and answers whether
// further spend is allowed. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	limitUSD float64
	spentUSD float64
	day      string
	now      func() time.Time
}

// NewTracker creates a tracker with the given daily limit in dollars.
// A non-positive limit falls back to DefaultDailyLimitUSD.
func NewTracker(limitUSD float64) *Tracker {
	return NewTrackerWithClock(limitUSD, time.Now)
}

// NewTrackerWithClock creates a tracker with an injected clock (for testing).
func NewTrackerWithClock(limitUSD float64, now func() time.Time) *Tracker {
	if limitUSD <= 0 {
		limitUSD = DefaultDailyLimitUSD
	}
	return &Tracker{limitUSD: limitUSD, now: now}
}

// Status is a point-in-time snapshot of the tracker.
type Status struct {
	Date         string  `json:"date"`
	SpentUSD     float64 `json:"spent_usd"`
	LimitUSD     float64 `json:"limit_usd"`
	RemainingUSD float64 `json:"remaining_usd"`
	Exhausted    bool    `json:"exhausted"`
}

// Allow reports whether another agent call may be made right now.
func (t *Tracker) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.spentUSD < t.limitUSD
}

// Record adds the cost of a completed call to today's spend. Costs recorded
// after the ceiling is reached still accumulate; the ceiling gates future
// calls, not bookkeeping.
func (t *Tracker) Record(costUSD float64) {
	if costUSD <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	t.spentUSD += costUSD
}

// Snapshot returns the current spend state.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	remaining := t.limitUSD - t.spentUSD
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Date:         t.day,
		SpentUSD:     t.spentUSD,
		LimitUSD:     t.limitUSD,
		RemainingUSD: remaining,
		Exhausted:    t.spentUSD >= t.limitUSD,
	}
}

// rollover resets the accumulator when the UTC date changes.
// Callers must hold t.mu.
func (t *Tracker) rollover() {
	today := t.now().UTC().Format("2006-01-02")
	if t.day != today {
		t.day = today
		t.spentUSD = 0
	}
}
