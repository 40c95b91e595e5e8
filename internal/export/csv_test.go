package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payfill/internal/domain"
)

func sampleRecord() domain.DocumentRecord {
	paid := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	return domain.DocumentRecord{
		ID:         uuid.New(),
		UploadDate: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		FileName:   "invoice.jpg",
		Extracted: &domain.ExtractedFields{
			VendorName:      "Acme Utilities",
			ReferenceNumber: "INV-2024-0042",
			TransactionDate: "2024-03-01",
			PaymentDueDate:  "2024-03-31",
			TotalAmount:     "1200.50",
			Currency:        "USD",
			DocumentType:    domain.DocTypeInvoice,
		},
		Formatted: &domain.FormattedOutput{
			FormFields:     map[string]interface{}{"payee_name": "Acme Utilities"},
			ReviewRequired: []domain.ReviewItem{{Field: "payment_amount", Confidence: 0.55}},
			Warnings:       []string{"account_holder: Missing or invalid data"},
			ReadyToFill:    false,
		},
		Costs:    domain.CostSummary{Total: 0.0125},
		Status:   domain.DocStatusPaid,
		PaidDate: &paid,
	}
}

func TestWriter_HeaderAndRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecords([]domain.DocumentRecord{sampleRecord()}))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, columns, rows[0])

	row := rows[1]
	assert.Equal(t, "invoice.jpg", row[0])
	assert.Equal(t, "2024-03-15T10:00:00Z", row[1])
	assert.Equal(t, "paid", row[2])
	assert.Equal(t, "invoice", row[3])
	assert.Equal(t, "Acme Utilities", row[4])
	assert.Equal(t, "INV-2024-0042", row[5])
	assert.Equal(t, "1200.50", row[8])
	assert.Equal(t, "USD", row[9])
	assert.Equal(t, "No", row[10])
	assert.Equal(t, "1", row[11])
	assert.Equal(t, "1", row[12])
	assert.Equal(t, "2024-04-02T09:30:00Z", row[13])
	assert.Equal(t, "0.0125", row[14])
}

func TestRecordToRow_FailedRunLeavesExtractionColumnsEmpty(t *testing.T) {
	record := domain.DocumentRecord{
		FileName:   "blurry.png",
		UploadDate: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		Status:     domain.DocStatusUnpaid,
	}
	row := recordToRow(&record)
	assert.Equal(t, "blurry.png", row[0])
	for i := 3; i <= 12; i++ {
		assert.Empty(t, row[i], "column %d", i)
	}
	assert.Empty(t, row[13])
	assert.Equal(t, "0.0000", row[14])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "invoice_2024_Q1", SanitizeFilename("invoice 2024/Q1"))
	assert.Equal(t, "receipt", SanitizeFilename("  receipt!!  "))
	assert.Equal(t, "a_b", SanitizeFilename("a???b"))

	long := strings.Repeat("x", 150)
	assert.Len(t, SanitizeFilename(long), 100)
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("payment history", "csv")
	assert.True(t, strings.HasPrefix(name, "payment_history_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	date := time.Now().Format("2006-01-02")
	assert.Equal(t, "payment_history_"+date+".csv", name)
}
