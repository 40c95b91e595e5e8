package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payfill/internal/domain"
	"payfill/internal/port"
)

// MockScoringAgent is a mock implementation of port.ScoringAgent.
type MockScoringAgent struct {
	mock.Mock
}

func (m *MockScoringAgent) Score(ctx context.Context, extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult) (*port.ScoreOutput, error) {
	args := m.Called(ctx, extracted, validated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ScoreOutput), args.Error(1)
}
