package budget

import (
	"context"
	"fmt"

	"payfill/internal/agent"
	"payfill/internal/domain"
	"payfill/internal/port"
)

// GuardedScoringAgent wraps a scoring agent with a budget check. When the
// daily ceiling is reached the call is refused before any tokens are spent,
// with an error shaped like a provider rate limit so callers can reuse
// their existing fallback paths.
type GuardedScoringAgent struct {
	inner   port.ScoringAgent
	tracker *Tracker
}

// NewGuardedScoringAgent wraps inner with tracker.
func NewGuardedScoringAgent(inner port.ScoringAgent, tracker *Tracker) *GuardedScoringAgent {
	return &GuardedScoringAgent{inner: inner, tracker: tracker}
}

func (g *GuardedScoringAgent) Score(ctx context.Context, extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult) (*port.ScoreOutput, error) {
	if !g.tracker.Allow() {
		status := g.tracker.Snapshot()
		return nil, agent.NewError(agent.KindBudgetExceeded, "budget",
			fmt.Errorf("daily scoring budget exhausted: spent $%.4f of $%.2f", status.SpentUSD, status.LimitUSD))
	}

	out, err := g.inner.Score(ctx, extracted, validated)
	if err != nil {
		return nil, err
	}
	g.tracker.Record(out.Cost.TotalCost)
	return out, nil
}
