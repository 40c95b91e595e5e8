package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is a single item row extracted from the document.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   string  `json:"unit_price,omitempty"`
	Amount      string  `json:"amount"`
}

// ExtractedFields is the structured output of the extraction agent.
// Field values are raw strings as read from the document; parsing and
// normalization happen downstream in the validator and formatter.
type ExtractedFields struct {
	VendorName      string     `json:"vendor_name"`
	ReferenceNumber string     `json:"reference_number"`
	TransactionDate string     `json:"transaction_date"`
	PaymentDueDate  string     `json:"payment_due_date,omitempty"`
	TotalAmount     string     `json:"total_amount"`
	Currency        string     `json:"currency"`
	CustomerName    string     `json:"customer_name,omitempty"`
	CustomerAddress string     `json:"customer_address,omitempty"`
	LineItems       []LineItem `json:"line_items"`

	ExtractionQuality ExtractionQuality `json:"extraction_quality"`
	DocumentType      DocumentType      `json:"document_type"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	MissingFields     []string          `json:"missing_fields"`
}

// ValidationResult is the per-field verdict of the validation engine.
// Valid=false always carries Error; Valid=true may carry Warning
// ("usable but suspect"). At most one of Error/Warning is set.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	Error        string   `json:"error,omitempty"`
	Warning      string   `json:"warning,omitempty"`
	NumericValue *float64 `json:"numeric_value,omitempty"`
}

// ConfidenceScore is the per-field output of the scoring agent (or the
// fallback scorer). Confidence is always within [0,1]; fields that failed
// validation carry 0.
type ConfidenceScore struct {
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ReviewItem is a formatted field whose confidence fell below the review
// threshold and therefore needs a human look before autofill.
type ReviewItem struct {
	Field      string      `json:"field"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// FormattedOutput is the formatter's result: canonical payment-form fields
// plus the review list. ReadyToFill is true iff both ReviewRequired and
// Warnings are empty.
type FormattedOutput struct {
	FormFields     map[string]interface{} `json:"form_fields"`
	ReviewRequired []ReviewItem           `json:"review_required"`
	Warnings       []string               `json:"warnings"`
	ReadyToFill    bool                   `json:"ready_to_fill"`
}

// CostRecord is the token usage and dollar cost of one agent call.
type CostRecord struct {
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	TotalCost    float64       `json:"total_cost"`
	Breakdown    CostBreakdown `json:"breakdown"`
}

// CostBreakdown splits a call's cost into input and output portions.
type CostBreakdown struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// CostSummary accumulates cost across one pipeline run. Total only ever
// grows; per-stage records are added once per stage.
type CostSummary struct {
	Total     float64                     `json:"total"`
	Breakdown map[PipelineStep]CostRecord `json:"breakdown"`
}

// PipelineError is one recorded error or warning with the stage it came
// from. Fatal entries carry Error plus the user-facing Title/UserMessage;
// non-fatal entries carry only Warning.
type PipelineError struct {
	Step        PipelineStep `json:"step"`
	Error       string       `json:"error,omitempty"`
	Warning     string       `json:"warning,omitempty"`
	UserMessage string       `json:"user_message,omitempty"`
	Title       string       `json:"title,omitempty"`
}

// PipelineState is the working and result record of one pipeline run.
// It is owned by exactly one run, mutated in place at stage boundaries,
// and treated as immutable once Status reaches a terminal value.
type PipelineState struct {
	Status    PipelineStatus                `json:"status"`
	Extracted *ExtractedFields              `json:"extracted,omitempty"`
	Validated map[string]ValidationResult   `json:"validated,omitempty"`
	Scored    map[string]ConfidenceScore    `json:"scored,omitempty"`
	Formatted *FormattedOutput              `json:"formatted,omitempty"`
	Errors    []PipelineError               `json:"errors"`
	Costs     CostSummary                   `json:"costs"`
}

// Warnings returns the non-fatal entries recorded during the run.
func (s *PipelineState) Warnings() []PipelineError {
	var out []PipelineError
	for _, e := range s.Errors {
		if e.Warning != "" {
			out = append(out, e)
		}
	}
	return out
}

// DocumentRecord is the persisted shape of a processed document. The
// pipeline never reads or writes the store itself; the document service
// persists this record after a run.
type DocumentRecord struct {
	ID         uuid.UUID                   `json:"id"`
	UploadDate time.Time                   `json:"upload_date"`
	FileName   string                      `json:"file_name"`
	Extracted  *ExtractedFields            `json:"extracted,omitempty"`
	Validated  map[string]ValidationResult `json:"validated,omitempty"`
	Scored     map[string]ConfidenceScore  `json:"scored,omitempty"`
	Formatted  *FormattedOutput            `json:"formatted,omitempty"`
	Costs      CostSummary                 `json:"costs"`
	Errors     []PipelineError             `json:"errors"`
	Status     DocumentStatus              `json:"status"`
	PaidDate   *time.Time                  `json:"paid_date,omitempty"`
	UserEdits  map[string]interface{}      `json:"user_edits,omitempty"`
}
