package port

import (
	"context"

	"github.com/google/uuid"

	"payfill/internal/domain"
)

// DocumentStore abstracts the flat key-value collaborator that persists
// processed document records. The pipeline core never touches it; only
// the document service does.
type DocumentStore interface {
	Put(ctx context.Context, record *domain.DocumentRecord) error
	Get(ctx context.Context, id uuid.UUID) (*domain.DocumentRecord, error)
	List(ctx context.Context) ([]domain.DocumentRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
