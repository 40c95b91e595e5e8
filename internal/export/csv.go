// Package export renders processed document history as CSV or XLSX for
// download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"payfill/internal/domain"
)

// BOM is the UTF-8 byte order mark, written ahead of CSV output for Excel
// compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"File Name",
	"Upload Date",
	"Status",
	"Document Type",
	"Vendor",
	"Reference Number",
	"Transaction Date",
	"Payment Due Date",
	"Total Amount",
	"Currency",
	"Ready To Fill",
	"Fields Requiring Review",
	"Warnings",
	"Paid Date",
	"Processing Cost",
}

// Writer wraps csv.Writer for exporting document records.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts a batch of document records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.DocumentRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// recordToRow converts a single record to a row matching columns. Metadata
// columns are always filled; extraction columns stay empty when the run
// failed before producing fields.
func recordToRow(record *domain.DocumentRecord) []string {
	row := make([]string, len(columns))

	row[0] = record.FileName
	row[1] = record.UploadDate.Format(time.RFC3339)
	row[2] = string(record.Status)
	row[13] = formatTime(record.PaidDate)
	row[14] = formatMoney(record.Costs.Total)

	if record.Extracted != nil {
		row[3] = string(record.Extracted.DocumentType)
		row[4] = record.Extracted.VendorName
		row[5] = record.Extracted.ReferenceNumber
		row[6] = record.Extracted.TransactionDate
		row[7] = record.Extracted.PaymentDueDate
		row[8] = record.Extracted.TotalAmount
		row[9] = record.Extracted.Currency
	}
	if record.Formatted != nil {
		row[10] = formatBool(record.Formatted.ReadyToFill)
		row[11] = strconv.Itoa(len(record.Formatted.ReviewRequired))
		row[12] = strconv.Itoa(len(record.Formatted.Warnings))
	}

	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
