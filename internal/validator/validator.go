// Package validator applies deterministic format and plausibility rules to
// extracted document fields. It is a pure function layer: no external calls,
// no clock, no randomness.
package validator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"payfill/internal/domain"
)

// Known ISO 4217 currency codes (common subset).
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "INR": true,
	"AUD": true, "CAD": true, "CHF": true, "CNY": true, "SGD": true,
	"AED": true, "SAR": true, "HKD": true, "MYR": true, "THB": true,
	"NZD": true, "SEK": true, "NOK": true, "DKK": true, "ZAR": true,
	"MXN": true, "BRL": true, "KRW": true, "PLN": true, "TRY": true,
}

var amountStripper = regexp.MustCompile(`[$€£₹,\s]`)

// Validate checks each recognized field of extracted and returns exactly one
// ValidationResult per recognized field. Absent fields come back invalid
// with error "missing". Cross-field checks attach warnings, never errors.
func Validate(extracted *domain.ExtractedFields) map[string]domain.ValidationResult {
	results := make(map[string]domain.ValidationResult, len(domain.RecognizedFields))

	for _, field := range domain.RecognizedFields {
		value, ok := extracted.Field(field)
		if !ok || strings.TrimSpace(value) == "" {
			results[field] = domain.ValidationResult{Valid: false, Error: "missing"}
			continue
		}
		switch field {
		case domain.FieldTransactionDate, domain.FieldPaymentDueDate:
			results[field] = checkDate(value)
		case domain.FieldTotalAmount:
			results[field] = checkAmount(value)
		case domain.FieldCurrency:
			results[field] = checkCurrency(value)
		default:
			// Identifier and name fields need only a non-empty value.
			results[field] = domain.ValidationResult{Valid: true}
		}
	}

	applyCrossFieldChecks(extracted, results)
	return results
}

// Summary counts failures and warnings in a result map.
func Summary(results map[string]domain.ValidationResult) (invalid, warnings int) {
	for _, r := range results {
		if !r.Valid {
			invalid++
		} else if r.Warning != "" {
			warnings++
		}
	}
	return invalid, warnings
}

func checkDate(value string) domain.ValidationResult {
	if _, err := ParseDate(value); err != nil {
		return domain.ValidationResult{Valid: false, Error: fmt.Sprintf("not a parseable date: %q", value)}
	}
	return domain.ValidationResult{Valid: true}
}

func checkAmount(value string) domain.ValidationResult {
	n, err := ParseAmount(value)
	if err != nil {
		return domain.ValidationResult{Valid: false, Error: fmt.Sprintf("not a parseable amount: %q", value)}
	}
	if n < 0 {
		return domain.ValidationResult{Valid: false, Error: fmt.Sprintf("amount is negative: %v", n)}
	}
	return domain.ValidationResult{Valid: true, NumericValue: &n}
}

func checkCurrency(value string) domain.ValidationResult {
	code := strings.ToUpper(strings.TrimSpace(value))
	if !knownCurrencies[code] {
		return domain.ValidationResult{
			Valid:   true,
			Warning: fmt.Sprintf("unrecognized currency code: %q", code),
		}
	}
	return domain.ValidationResult{Valid: true}
}

// applyCrossFieldChecks attaches plausibility warnings to already-valid
// fields. Either side of a cross-field pair may legitimately be partial, so
// these never downgrade a field to invalid.
func applyCrossFieldChecks(extracted *domain.ExtractedFields, results map[string]domain.ValidationResult) {
	// Due date should not precede the transaction date.
	if r, ok := results[domain.FieldPaymentDueDate]; ok && r.Valid && r.Warning == "" {
		due, dueErr := ParseDate(extracted.PaymentDueDate)
		txn, txnErr := ParseDate(extracted.TransactionDate)
		if dueErr == nil && txnErr == nil && due.Before(txn) {
			r.Warning = fmt.Sprintf("due date %s is before transaction date %s",
				due.Format("2006-01-02"), txn.Format("2006-01-02"))
			results[domain.FieldPaymentDueDate] = r
		}
	}

	// Line items should roughly sum to the total.
	if r, ok := results[domain.FieldTotalAmount]; ok && r.Valid && r.Warning == "" && r.NumericValue != nil && len(extracted.LineItems) > 0 {
		var sum float64
		complete := true
		for _, item := range extracted.LineItems {
			n, err := ParseAmount(item.Amount)
			if err != nil {
				complete = false
				break
			}
			sum += n
		}
		if complete && math.Abs(sum-*r.NumericValue) > 0.01 {
			r.Warning = fmt.Sprintf("line items sum to %.2f but total is %.2f", sum, *r.NumericValue)
			results[domain.FieldTotalAmount] = r
		}
	}
}

// ParseDate tries common date formats.
func ParseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02-01-2006",
		"02/01/2006",
		"01-02-2006",
		"01/02/2006",
		"2006/01/02",
		"02 Jan 2006",
		"2 Jan 2006",
		"Jan 02, 2006",
		"January 02, 2006",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

// ParseAmount strips currency symbols, thousands separators, and whitespace
// before parsing a decimal number.
func ParseAmount(s string) (float64, error) {
	cleaned := amountStripper.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount: %s", s)
	}
	return n, nil
}
