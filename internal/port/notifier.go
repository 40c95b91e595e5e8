package port

import (
	"context"

	"payfill/internal/domain"
)

// ReviewNotifier tells a human that a processed document carries fields
// below the review threshold. Delivery failures must never block the run.
type ReviewNotifier interface {
	NotifyReviewRequired(ctx context.Context, record *domain.DocumentRecord) error
}
