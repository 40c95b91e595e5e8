// Package formatter maps extracted, validated, and scored document fields
// onto canonical payment-form fields. It is pure and deterministic: the
// same inputs always produce the same output.
package formatter

import (
	"strings"

	"payfill/internal/domain"
	"payfill/internal/validator"
)

// ReviewThreshold is the single policy gate between "autofill safely" and
// "must be reviewed by a human". Strictly-below comparison, applied
// uniformly whether the score came from the live collaborator or the
// fallback scorer.
const ReviewThreshold = 0.70

// formMapping pairs one payment-form field with its source document field.
type formMapping struct {
	FormField   string
	SourceField string
}

// fieldMap is the fixed canonical mapping, in output order.
var fieldMap = []formMapping{
	{FormField: "payee_name", SourceField: domain.FieldVendorName},
	{FormField: "payment_amount", SourceField: domain.FieldTotalAmount},
	{FormField: "reference_number", SourceField: domain.FieldReferenceNumber},
	{FormField: "payment_date", SourceField: domain.FieldPaymentDueDate},
	{FormField: "transaction_date", SourceField: domain.FieldTransactionDate},
	{FormField: "account_holder", SourceField: domain.FieldCustomerName},
}

// Format builds the form-ready output. Fields that are absent or failed
// validation are dropped with a warning; fields whose confidence is below
// ReviewThreshold are flagged for human review.
func Format(extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult, scored map[string]domain.ConfidenceScore) *domain.FormattedOutput {
	out := &domain.FormattedOutput{
		FormFields:     make(map[string]interface{}),
		ReviewRequired: []domain.ReviewItem{},
		Warnings:       []string{},
	}

	for _, m := range fieldMap {
		value, ok := extracted.Field(m.SourceField)
		validation, hasValidation := validated[m.SourceField]
		if !ok || strings.TrimSpace(value) == "" || !hasValidation || !validation.Valid {
			out.Warnings = append(out.Warnings, m.FormField+": Missing or invalid data")
			continue
		}

		formatted := formatValue(m.SourceField, value, validation)
		out.FormFields[m.FormField] = formatted

		if score, ok := scored[m.SourceField]; ok && score.Confidence < ReviewThreshold {
			out.ReviewRequired = append(out.ReviewRequired, domain.ReviewItem{
				Field:      m.FormField,
				Value:      formatted,
				Confidence: score.Confidence,
				Reasoning:  score.Reasoning,
			})
		}
	}

	out.ReadyToFill = len(out.ReviewRequired) == 0 && len(out.Warnings) == 0
	return out
}

var spaceCollapser = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// formatValue normalizes one value per its semantic type. Amounts become
// numbers, dates pass through verbatim, names are trimmed, and reference
// numbers get internal whitespace collapsed.
func formatValue(sourceField, value string, validation domain.ValidationResult) interface{} {
	switch sourceField {
	case domain.FieldTotalAmount:
		if validation.NumericValue != nil {
			return *validation.NumericValue
		}
		if n, err := validator.ParseAmount(value); err == nil {
			return n
		}
		return value
	case domain.FieldTransactionDate, domain.FieldPaymentDueDate:
		return value
	case domain.FieldReferenceNumber:
		collapsed := spaceCollapser.Replace(strings.TrimSpace(value))
		return strings.Join(strings.Fields(collapsed), " ")
	default:
		return strings.TrimSpace(value)
	}
}
