package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payfill/internal/domain"
	"payfill/internal/validator"
)

func validExtracted() *domain.ExtractedFields {
	return &domain.ExtractedFields{
		VendorName:      "Acme Utilities",
		ReferenceNumber: "INV-2024-0042",
		TransactionDate: "2024-03-01",
		PaymentDueDate:  "2024-03-31",
		TotalAmount:     "1,200.50",
		Currency:        "USD",
		CustomerName:    "Jordan Smith",
		LineItems: []domain.LineItem{
			{Description: "Service plan", Amount: "1000.00"},
			{Description: "Usage", Amount: "200.50"},
		},
		ExtractionQuality: domain.QualityHigh,
		DocumentType:      domain.DocTypeInvoice,
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}
}

func TestValidate_OneResultPerRecognizedField(t *testing.T) {
	results := validator.Validate(validExtracted())
	require.Len(t, results, len(domain.RecognizedFields))
	for _, field := range domain.RecognizedFields {
		assert.Contains(t, results, field)
	}
}

func TestValidate_AllValid(t *testing.T) {
	results := validator.Validate(validExtracted())
	for field, r := range results {
		assert.True(t, r.Valid, "field %s should be valid: %s", field, r.Error)
		assert.Empty(t, r.Warning, "field %s should carry no warning", field)
	}
}

func TestValidate_InvalidAlwaysHasError(t *testing.T) {
	results := validator.Validate(&domain.ExtractedFields{})
	for field, r := range results {
		require.False(t, r.Valid, "field %s on empty input", field)
		assert.NotEmpty(t, r.Error, "invalid field %s must carry an error", field)
	}
}

func TestValidate_MissingField(t *testing.T) {
	extracted := validExtracted()
	extracted.CustomerName = ""
	results := validator.Validate(extracted)

	r := results[domain.FieldCustomerName]
	assert.False(t, r.Valid)
	assert.Equal(t, "missing", r.Error)
}

func TestValidate_Amount(t *testing.T) {
	t.Run("parses_with_separators", func(t *testing.T) {
		extracted := validExtracted()
		extracted.TotalAmount = "$1,200.50"
		extracted.LineItems = nil
		r := validator.Validate(extracted)[domain.FieldTotalAmount]
		require.True(t, r.Valid)
		require.NotNil(t, r.NumericValue)
		assert.InDelta(t, 1200.50, *r.NumericValue, 0.001)
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		extracted := validExtracted()
		extracted.TotalAmount = "about twelve"
		r := validator.Validate(extracted)[domain.FieldTotalAmount]
		assert.False(t, r.Valid)
		assert.NotEmpty(t, r.Error)
	})

	t.Run("rejects_negative", func(t *testing.T) {
		extracted := validExtracted()
		extracted.TotalAmount = "-50.00"
		r := validator.Validate(extracted)[domain.FieldTotalAmount]
		assert.False(t, r.Valid)
	})
}

func TestValidate_Dates(t *testing.T) {
	t.Run("iso_format", func(t *testing.T) {
		r := validator.Validate(validExtracted())[domain.FieldTransactionDate]
		assert.True(t, r.Valid)
	})

	t.Run("unparseable", func(t *testing.T) {
		extracted := validExtracted()
		extracted.TransactionDate = "sometime in March"
		r := validator.Validate(extracted)[domain.FieldTransactionDate]
		assert.False(t, r.Valid)
		assert.NotEmpty(t, r.Error)
	})
}

func TestValidate_CurrencyWarning(t *testing.T) {
	extracted := validExtracted()
	extracted.Currency = "XYZ"
	r := validator.Validate(extracted)[domain.FieldCurrency]
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warning)
}

func TestValidate_DueDateBeforeTransactionWarns(t *testing.T) {
	extracted := validExtracted()
	extracted.TransactionDate = "2024-03-31"
	extracted.PaymentDueDate = "2024-03-01"
	r := validator.Validate(extracted)[domain.FieldPaymentDueDate]
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warning)
}

func TestValidate_LineItemMismatchWarns(t *testing.T) {
	extracted := validExtracted()
	extracted.LineItems = []domain.LineItem{
		{Description: "Service plan", Amount: "900.00"},
	}
	r := validator.Validate(extracted)[domain.FieldTotalAmount]
	assert.True(t, r.Valid)
	assert.Contains(t, r.Warning, "line items")
}

func TestValidate_AtMostOneOfErrorWarning(t *testing.T) {
	extracted := validExtracted()
	extracted.Currency = "XYZ"
	extracted.TotalAmount = "junk"
	for field, r := range validator.Validate(extracted) {
		if r.Error != "" {
			assert.Empty(t, r.Warning, "field %s has both error and warning", field)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1200.50", 1200.50, true},
		{"1,200.50", 1200.50, true},
		{"$99", 99, true},
		{"€ 1.234", 1.234, true},
		{"₹5,00,000", 500000, true},
		{"", 0, false},
		{"N/A", 0, false},
	}
	for _, tc := range cases {
		got, err := validator.ParseAmount(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			assert.InDelta(t, tc.want, got, 0.001, "input %q", tc.in)
		} else {
			assert.Error(t, err, "input %q", tc.in)
		}
	}
}

func TestParseDate_Formats(t *testing.T) {
	for _, in := range []string{"2024-03-01", "01/03/2024", "2 Mar 2024", "Mar 02, 2024"} {
		_, err := validator.ParseDate(in)
		assert.NoError(t, err, "input %q", in)
	}
	_, err := validator.ParseDate("not a date")
	assert.Error(t, err)
}
