// Package noop is a ReviewNotifier that logs instead of sending email.
// Used in development and when no reviewer address is configured.
package noop

import (
	"context"
	"log"

	"payfill/internal/domain"
	"payfill/internal/port"
)

type notifier struct{}

// NewNotifier creates a logging-only ReviewNotifier.
func NewNotifier() port.ReviewNotifier {
	return notifier{}
}

func (notifier) NotifyReviewRequired(_ context.Context, record *domain.DocumentRecord) error {
	if record.Formatted == nil {
		return nil
	}
	log.Printf("noop.Notifier: document %s has %d field(s) requiring review (notification suppressed)",
		record.ID, len(record.Formatted.ReviewRequired))
	return nil
}
