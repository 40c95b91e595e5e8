package domain

// DocumentType classifies the kind of financial document that was extracted.
type DocumentType string

const (
	DocTypeInvoice           DocumentType = "invoice"
	DocTypeReceipt           DocumentType = "receipt"
	DocTypeBill              DocumentType = "bill"
	DocTypeStatement         DocumentType = "statement"
	DocTypeOrderConfirmation DocumentType = "order_confirmation"
	DocTypeUnknown           DocumentType = "unknown"
)

// AcceptedDocumentTypes lists the document types the pipeline will process.
// Anything else, including "unknown", fails the run at the extraction boundary.
var AcceptedDocumentTypes = map[DocumentType]bool{
	DocTypeInvoice:           true,
	DocTypeReceipt:           true,
	DocTypeBill:              true,
	DocTypeStatement:         true,
	DocTypeOrderConfirmation: true,
}

// ExtractionQuality grades how legible the source document was.
type ExtractionQuality string

const (
	QualityHigh   ExtractionQuality = "high"
	QualityMedium ExtractionQuality = "medium"
	QualityLow    ExtractionQuality = "low"
)

// PaymentStatus is the payment state reported by the extraction agent.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusUnknown PaymentStatus = "unknown"
)

// PipelineStatus is the in-flight or terminal status of one pipeline run.
type PipelineStatus string

const (
	PipelineStatusProcessing PipelineStatus = "processing"
	PipelineStatusComplete   PipelineStatus = "complete"
	PipelineStatusFailed     PipelineStatus = "failed"
	PipelineStatusCanceled   PipelineStatus = "canceled"
)

// PipelineStep names stage boundaries for progress events and error records.
type PipelineStep string

const (
	StepExtracting PipelineStep = "extracting"
	StepExtracted  PipelineStep = "extracted"
	StepValidating PipelineStep = "validating"
	StepValidated  PipelineStep = "validated"
	StepScoring    PipelineStep = "scoring"
	StepScored     PipelineStep = "scored"
	StepFormatting PipelineStep = "formatting"
	StepFormatted  PipelineStep = "formatted"
	StepComplete   PipelineStep = "complete"
	StepFailed     PipelineStep = "failed"
	StepCanceled   PipelineStep = "canceled"

	// Error-record steps: which stage produced an error or warning entry.
	StepExtract      PipelineStep = "extract"
	StepValidate     PipelineStep = "validate"
	StepScore        PipelineStep = "score"
	StepFormat       PipelineStep = "format"
	StepOrchestrator PipelineStep = "orchestrator"
)

// DocumentStatus is the payment lifecycle of a persisted document record.
type DocumentStatus string

const (
	DocStatusUnpaid  DocumentStatus = "unpaid"
	DocStatusPaid    DocumentStatus = "paid"
	DocStatusOverdue DocumentStatus = "overdue"
)
