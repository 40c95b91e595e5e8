package port

import (
	"context"

	"payfill/internal/domain"
)

// ExtractInput carries the document image handed to the extraction agent.
type ExtractInput struct {
	ImageBytes  []byte
	ContentType string
	FileName    string
}

// ExtractOutput is the structured result of one extraction call.
type ExtractOutput struct {
	Fields domain.ExtractedFields
	Cost   domain.CostRecord
}

// ExtractionAgent abstracts the multimodal document-understanding collaborator.
type ExtractionAgent interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
