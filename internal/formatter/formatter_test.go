package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payfill/internal/domain"
	"payfill/internal/formatter"
	"payfill/internal/validator"
)

func extracted() *domain.ExtractedFields {
	return &domain.ExtractedFields{
		VendorName:      "  Acme Utilities  ",
		ReferenceNumber: "INV  2024\t0042",
		TransactionDate: "2024-03-01",
		PaymentDueDate:  "2024-03-31",
		TotalAmount:     "1,200.50",
		Currency:        "USD",
		CustomerName:    "Jordan Smith",
		DocumentType:    domain.DocTypeInvoice,
	}
}

func allScored(confidence float64) map[string]domain.ConfidenceScore {
	scores := make(map[string]domain.ConfidenceScore)
	for _, f := range domain.RecognizedFields {
		scores[f] = domain.ConfidenceScore{Confidence: confidence, Reasoning: "clear"}
	}
	return scores
}

func TestFormat_AmountIsNumeric(t *testing.T) {
	ext := extracted()
	validated := validator.Validate(ext)
	out := formatter.Format(ext, validated, allScored(0.95))

	amount, ok := out.FormFields["payment_amount"].(float64)
	require.True(t, ok, "payment_amount must be numeric, got %T", out.FormFields["payment_amount"])
	assert.InDelta(t, 1200.50, amount, 0.001)
}

func TestFormat_ValueNormalization(t *testing.T) {
	ext := extracted()
	validated := validator.Validate(ext)
	out := formatter.Format(ext, validated, allScored(0.95))

	assert.Equal(t, "Acme Utilities", out.FormFields["payee_name"])
	assert.Equal(t, "INV 2024 0042", out.FormFields["reference_number"])
	assert.Equal(t, "2024-03-01", out.FormFields["transaction_date"])
	assert.Equal(t, "2024-03-31", out.FormFields["payment_date"])
	assert.Equal(t, "Jordan Smith", out.FormFields["account_holder"])
}

func TestFormat_MissingFieldWarning(t *testing.T) {
	ext := extracted()
	ext.CustomerName = ""
	validated := validator.Validate(ext)
	out := formatter.Format(ext, validated, allScored(0.95))

	assert.NotContains(t, out.FormFields, "account_holder")
	assert.Contains(t, out.Warnings, "account_holder: Missing or invalid data")
	assert.False(t, out.ReadyToFill)
}

func TestFormat_ReviewThresholdStrict(t *testing.T) {
	ext := extracted()
	validated := validator.Validate(ext)

	t.Run("below_threshold_flagged", func(t *testing.T) {
		scores := allScored(0.95)
		scores[domain.FieldTotalAmount] = domain.ConfidenceScore{Confidence: 0.69, Reasoning: "blurry digits"}
		out := formatter.Format(ext, validated, scores)
		require.Len(t, out.ReviewRequired, 1)
		assert.Equal(t, "payment_amount", out.ReviewRequired[0].Field)
		assert.Equal(t, 0.69, out.ReviewRequired[0].Confidence)
		assert.Equal(t, "blurry digits", out.ReviewRequired[0].Reasoning)
		assert.False(t, out.ReadyToFill)
	})

	t.Run("exactly_at_threshold_not_flagged", func(t *testing.T) {
		scores := allScored(0.95)
		scores[domain.FieldTotalAmount] = domain.ConfidenceScore{Confidence: 0.70, Reasoning: "ok"}
		out := formatter.Format(ext, validated, scores)
		assert.Empty(t, out.ReviewRequired)
		assert.True(t, out.ReadyToFill)
	})
}

func TestFormat_ReviewOnlyForIncludableFields(t *testing.T) {
	ext := extracted()
	ext.VendorName = ""
	validated := validator.Validate(ext)
	scores := allScored(0.95)
	scores[domain.FieldVendorName] = domain.ConfidenceScore{Confidence: 0.10, Reasoning: "missing"}

	out := formatter.Format(ext, validated, scores)
	for _, item := range out.ReviewRequired {
		assert.NotEqual(t, "payee_name", item.Field, "dropped fields must not appear in review list")
	}
}

func TestFormat_ReadyToFillDefinition(t *testing.T) {
	ext := extracted()
	validated := validator.Validate(ext)
	out := formatter.Format(ext, validated, allScored(0.95))
	assert.Equal(t, len(out.ReviewRequired) == 0 && len(out.Warnings) == 0, out.ReadyToFill)
	assert.True(t, out.ReadyToFill)
}

func TestFormat_Idempotent(t *testing.T) {
	ext := extracted()
	validated := validator.Validate(ext)
	scores := allScored(0.65)

	first := formatter.Format(ext, validated, scores)
	second := formatter.Format(ext, validated, scores)
	assert.Equal(t, first, second)
}
