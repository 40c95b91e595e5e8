package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"payfill/internal/domain"
)

// MockReviewNotifier is a mock implementation of port.ReviewNotifier.
type MockReviewNotifier struct {
	mock.Mock
}

func (m *MockReviewNotifier) NotifyReviewRequired(ctx context.Context, record *domain.DocumentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
