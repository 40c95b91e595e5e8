// Package service hosts the pipeline: it validates uploads, runs the
// orchestrator, persists results, and manages the document lifecycle.
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"payfill/internal/domain"
	"payfill/internal/pipeline"
	"payfill/internal/port"
	"payfill/internal/validator"
)

// allowedContentTypes lists the upload types the extraction agent accepts.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// DocumentService ties the pipeline runner to persistence and notification.
type DocumentService struct {
	runner      *pipeline.Runner
	store       port.DocumentStore
	notifier    port.ReviewNotifier
	maxFileSize int64
	runTimeout  time.Duration
	now         func() time.Time
}

// Option configures a DocumentService.
type Option func(*DocumentService)

// WithClock injects a clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *DocumentService) { s.now = now }
}

// WithRunTimeout bounds one pipeline run. Zero disables the timeout.
func WithRunTimeout(d time.Duration) Option {
	return func(s *DocumentService) { s.runTimeout = d }
}

// WithMaxFileSize sets the upload ceiling in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(s *DocumentService) { s.maxFileSize = bytes }
}

// NewDocumentService creates a DocumentService with sensible defaults:
// 5 MB upload ceiling, 3 minute run timeout.
func NewDocumentService(runner *pipeline.Runner, store port.DocumentStore, notifier port.ReviewNotifier, opts ...Option) *DocumentService {
	s := &DocumentService{
		runner:      runner,
		store:       store,
		notifier:    notifier,
		maxFileSize: 5 * 1024 * 1024,
		runTimeout:  3 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessInput is one uploaded document.
type ProcessInput struct {
	FileName    string
	ContentType string
	ImageBytes  []byte
}

// Process runs the pipeline on an upload, persists the resulting record,
// and notifies a reviewer when review is required. The record is returned
// for both complete and failed runs; only upload validation and storage
// failures surface as errors.
func (s *DocumentService) Process(ctx context.Context, input ProcessInput, sink port.ProgressSink) (*domain.DocumentRecord, error) {
	if !allowedContentTypes[input.ContentType] {
		return nil, domain.ErrUnsupportedFileType
	}
	if int64(len(input.ImageBytes)) > s.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	runCtx := ctx
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	state := s.runner.Run(runCtx, pipeline.RunInput{
		ImageBytes:  input.ImageBytes,
		ContentType: input.ContentType,
		FileName:    input.FileName,
	}, sink)

	record := &domain.DocumentRecord{
		ID:         uuid.New(),
		UploadDate: s.now().UTC(),
		FileName:   input.FileName,
		Extracted:  state.Extracted,
		Validated:  state.Validated,
		Scored:     state.Scored,
		Formatted:  state.Formatted,
		Costs:      state.Costs,
		Errors:     state.Errors,
		Status:     initialStatus(state),
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}

	if record.Formatted != nil && len(record.Formatted.ReviewRequired) > 0 {
		// Notification failures never block the run.
		if err := s.notifier.NotifyReviewRequired(ctx, record); err != nil {
			log.Printf("service.DocumentService: review notification failed for %s: %v", record.ID, err)
		}
	}

	return record, nil
}

// initialStatus derives the payment lifecycle status of a fresh record from
// what the extraction agent reported.
func initialStatus(state *domain.PipelineState) domain.DocumentStatus {
	if state.Extracted != nil && state.Extracted.PaymentStatus == domain.PaymentStatusPaid {
		return domain.DocStatusPaid
	}
	return domain.DocStatusUnpaid
}

// Get fetches one record, deriving overdue status on read.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.deriveOverdue(record)
	return record, nil
}

// List returns all records, most recent first, with overdue derived.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		s.deriveOverdue(&records[i])
	}
	return records, nil
}

// MarkPaid transitions a record to paid with the current time.
func (s *DocumentService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status == domain.DocStatusPaid {
		return nil, domain.ErrAlreadyPaid
	}
	paidAt := s.now().UTC()
	record.Status = domain.DocStatusPaid
	record.PaidDate = &paidAt
	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyEdits records user corrections to formatted form fields. Edits are
// kept separately from the machine output so the original extraction stays
// auditable; known form fields are also overlaid onto FormFields.
func (s *DocumentService) ApplyEdits(ctx context.Context, id uuid.UUID, edits map[string]interface{}) (*domain.DocumentRecord, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Formatted == nil {
		return nil, domain.ErrInvalidEdit
	}

	knownFormFields := map[string]bool{
		"payee_name": true, "payment_amount": true, "reference_number": true,
		"payment_date": true, "transaction_date": true, "account_holder": true,
	}
	for field := range edits {
		if !knownFormFields[field] {
			return nil, domain.ErrInvalidEdit
		}
	}

	if record.UserEdits == nil {
		record.UserEdits = make(map[string]interface{}, len(edits))
	}
	for field, value := range edits {
		record.UserEdits[field] = value
		record.Formatted.FormFields[field] = value
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// deriveOverdue upgrades unpaid records whose due date has passed. Derived
// on read rather than persisted so no background sweep is needed.
func (s *DocumentService) deriveOverdue(record *domain.DocumentRecord) {
	if record.Status != domain.DocStatusUnpaid || record.Extracted == nil {
		return
	}
	due, err := validator.ParseDate(record.Extracted.PaymentDueDate)
	if err != nil {
		return
	}
	if s.now().UTC().After(due.AddDate(0, 0, 1)) {
		record.Status = domain.DocStatusOverdue
	}
}
