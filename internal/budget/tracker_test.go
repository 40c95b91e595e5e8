package budget_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payfill/internal/agent"
	"payfill/internal/budget"
	"payfill/internal/domain"
	"payfill/internal/port"
	"payfill/mocks"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTracker_AllowUntilLimit(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tracker := budget.NewTrackerWithClock(1.00, fixedClock(now))

	assert.True(t, tracker.Allow())
	tracker.Record(0.99)
	assert.True(t, tracker.Allow())
	tracker.Record(0.02)
	assert.False(t, tracker.Allow())
}

func TestTracker_UTCDayRollover(t *testing.T) {
	current := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	tracker := budget.NewTrackerWithClock(1.00, clock)
	tracker.Record(1.50)
	assert.False(t, tracker.Allow())

	mu.Lock()
	current = time.Date(2026, 9, 2, 0, 1, 0, 0, time.UTC)
	mu.Unlock()

	assert.True(t, tracker.Allow())
	status := tracker.Snapshot()
	assert.Equal(t, "2026-09-02", status.Date)
	assert.Equal(t, 0.0, status.SpentUSD)
}

func TestTracker_DefaultLimit(t *testing.T) {
	tracker := budget.NewTrackerWithClock(0, fixedClock(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	status := tracker.Snapshot()
	assert.Equal(t, budget.DefaultDailyLimitUSD, status.LimitUSD)
}

func TestTracker_Snapshot(t *testing.T) {
	tracker := budget.NewTrackerWithClock(1.00, fixedClock(time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)))
	tracker.Record(0.25)

	status := tracker.Snapshot()
	assert.Equal(t, "2026-09-01", status.Date)
	assert.InDelta(t, 0.25, status.SpentUSD, 1e-9)
	assert.InDelta(t, 0.75, status.RemainingUSD, 1e-9)
	assert.False(t, status.Exhausted)
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := budget.NewTrackerWithClock(100.00, fixedClock(time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(0.01)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 0.50, tracker.Snapshot().SpentUSD, 1e-9)
}

func TestGuardedScoringAgent_RefusesWhenExhausted(t *testing.T) {
	tracker := budget.NewTrackerWithClock(0.01, fixedClock(time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)))
	tracker.Record(0.02)

	inner := new(mocks.MockScoringAgent)
	guarded := budget.NewGuardedScoringAgent(inner, tracker)

	_, err := guarded.Score(context.Background(), &domain.ExtractedFields{}, nil)
	require.Error(t, err)

	var agentErr *agent.Error
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, agent.KindBudgetExceeded, agentErr.Kind)
	inner.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardedScoringAgent_RecordsCostOnSuccess(t *testing.T) {
	tracker := budget.NewTrackerWithClock(1.00, fixedClock(time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)))

	inner := new(mocks.MockScoringAgent)
	inner.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{
			Scores: map[string]domain.ConfidenceScore{"vendor_name": {Confidence: 0.9}},
			Cost:   domain.CostRecord{TotalCost: 0.05},
		}, nil)

	guarded := budget.NewGuardedScoringAgent(inner, tracker)
	out, err := guarded.Score(context.Background(), &domain.ExtractedFields{}, nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.InDelta(t, 0.05, tracker.Snapshot().SpentUSD, 1e-9)
}

func TestGuardedScoringAgent_DoesNotRecordOnFailure(t *testing.T) {
	tracker := budget.NewTrackerWithClock(1.00, fixedClock(time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)))

	inner := new(mocks.MockScoringAgent)
	inner.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, agent.NewError(agent.KindServer, "claude", errors.New("503")))

	guarded := budget.NewGuardedScoringAgent(inner, tracker)
	_, err := guarded.Score(context.Background(), &domain.ExtractedFields{}, nil)
	require.Error(t, err)
	assert.Equal(t, 0.0, tracker.Snapshot().SpentUSD)
}
