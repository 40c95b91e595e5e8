package domain

// Canonical extracted-field names. Downstream maps (validation results,
// confidence scores) are keyed by these.
const (
	FieldVendorName      = "vendor_name"
	FieldReferenceNumber = "reference_number"
	FieldTransactionDate = "transaction_date"
	FieldPaymentDueDate  = "payment_due_date"
	FieldTotalAmount     = "total_amount"
	FieldCurrency        = "currency"
	FieldCustomerName    = "customer_name"
)

// RecognizedFields is the ordered set of fields the validation engine
// reports on, exactly one ValidationResult per entry.
var RecognizedFields = []string{
	FieldVendorName,
	FieldReferenceNumber,
	FieldTransactionDate,
	FieldPaymentDueDate,
	FieldTotalAmount,
	FieldCurrency,
	FieldCustomerName,
}

// fieldAliases maps legacy consumer names to canonical field names. The
// canonical value is the single source of truth; aliases are resolved on
// read so the two views can never diverge.
var fieldAliases = map[string]string{
	"invoice_number": FieldReferenceNumber,
	"invoice_date":   FieldTransactionDate,
	"amount_due":     FieldTotalAmount,
	"due_date":       FieldPaymentDueDate,
}

// CanonicalFieldName resolves a field name that may be an alias to its
// canonical name. Unknown names are returned unchanged.
func CanonicalFieldName(name string) string {
	if canonical, ok := fieldAliases[name]; ok {
		return canonical
	}
	return name
}

// FieldAliases returns a copy of the alias → canonical mapping.
func FieldAliases() map[string]string {
	out := make(map[string]string, len(fieldAliases))
	for k, v := range fieldAliases {
		out[k] = v
	}
	return out
}

// Field returns the raw value of a canonical (or aliased) field name,
// and whether the name is a recognized scalar field.
func (f *ExtractedFields) Field(name string) (string, bool) {
	switch CanonicalFieldName(name) {
	case FieldVendorName:
		return f.VendorName, true
	case FieldReferenceNumber:
		return f.ReferenceNumber, true
	case FieldTransactionDate:
		return f.TransactionDate, true
	case FieldPaymentDueDate:
		return f.PaymentDueDate, true
	case FieldTotalAmount:
		return f.TotalAmount, true
	case FieldCurrency:
		return f.Currency, true
	case FieldCustomerName:
		return f.CustomerName, true
	default:
		return "", false
	}
}
