package port

import (
	"context"

	"payfill/internal/domain"
)

// ScoreOutput is the per-field confidence result of one scoring call.
type ScoreOutput struct {
	Scores map[string]domain.ConfidenceScore
	Cost   domain.CostRecord
}

// ScoringAgent abstracts the confidence-scoring collaborator.
type ScoringAgent interface {
	Score(ctx context.Context, extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult) (*ScoreOutput, error)
}
