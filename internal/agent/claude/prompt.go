package claude

import (
	"encoding/json"
	"fmt"

	"payfill/internal/domain"
)

// extractionPrompt instructs the multimodal model to identify the document
// type first and then apply type-specific reference-number rules. Returned
// JSON must match the extraction schema exactly.
const extractionPrompt = `You are a financial document data extraction assistant. Extract payment-relevant information from invoices, receipts, bills, and statements.

STEP 1: Identify the document type first by analyzing the content and structure.

STEP 2: Apply document-type-specific extraction rules.

Required fields:
- vendor_name: Business/company name that provided goods or services
- reference_number: Primary document identifier (see document-specific rules below)
- transaction_date: Primary date on document - when issued, purchased, or billed (YYYY-MM-DD format)
- total_amount: Final amount - whether paid, due, or charged (numeric only, no currency symbols)
- currency: Currency code (USD, EUR, etc.) - default USD if not specified

Optional fields:
- payment_due_date: Only if explicitly shown and payment is still owed (YYYY-MM-DD format)
- customer_name: Name of payer/customer/patient/account holder
- customer_address: Billing or service address
- line_items: Array of items with description and amount - extract ALL visible line items

DOCUMENT-TYPE-SPECIFIC EXTRACTION RULES:

RETAIL RECEIPTS (completed purchases at stores/online):
  - Indicators: Shows "RECEIPT", "PAID", "APPROVED", payment method (Visa/MC), or transaction timestamp
  - reference_number priority: (1) "Order #" or "Order Number", (2) "Receipt #", (3) "Transaction ID" or "Trans ID", (4) Long alphanumeric codes near order/receipt labels
  - IGNORE: "Invoice No" (often internal tracking), Member IDs, Profile numbers, Seat numbers
  - document_type: "receipt"
  - payment_status: "paid"

INVOICES (payment requested, not yet paid):
  - Indicators: Shows "INVOICE" header, "Amount Due", "Payment Due Date", "Please Pay"
  - reference_number priority: (1) "Invoice #" or "Invoice Number" or "Invoice No", (2) "Reference #"
  - document_type: "invoice"
  - payment_status: "unpaid"

UTILITY/SERVICE BILLS (recurring charges):
  - Indicators: Electric/gas/water/phone company, "Account Number", service period
  - reference_number priority: (1) "Account #" or "Account Number", (2) "Bill #" or "Statement #"
  - document_type: "bill"
  - payment_status: "unpaid" unless shows "PAID" stamp

MEDICAL/HEALTHCARE DOCUMENTS:
  - Indicators: Hospital/clinic/pharmacy, patient info, procedure codes, insurance details
  - reference_number priority: (1) "Account #" or "Patient Account", (2) "Statement #", (3) "Visit #"
  - IGNORE: NPI numbers, Provider IDs, Member IDs
  - document_type: "bill"

STATEMENTS (account summaries):
  - Indicators: Shows balance, previous charges, "Statement Date", "Account Summary"
  - reference_number priority: (1) "Statement #", (2) "Account #"
  - document_type: "statement"

ORDER CONFIRMATIONS:
  - Indicators: "Order Confirmed", "Confirmation #", usually sent after online purchase
  - reference_number priority: (1) "Order #" or "Confirmation #", (2) "Reference #"
  - document_type: "order_confirmation"
  - payment_status: "paid" (if payment processed) or "unpaid" (if pending)

GENERAL RULES:
- Look for labels like "#", "No.", "Number", "ID" near reference numbers
- Prefer longer alphanumeric codes (6+ characters) over short numeric sequences
- ALWAYS ignore: Member IDs, Loyalty numbers, Customer IDs (unless no other reference exists)
- When multiple reference numbers exist, choose the most prominent/important one based on document type

Line item format:
{
  "description": "item or service description",
  "quantity": number or null,
  "unit_price": "numeric string or null",
  "amount": "numeric string (required)"
}

Metadata:
- extraction_quality: "high" (clear, legible), "medium" (some ambiguity), "low" (significant quality issues)
- document_type: "invoice" | "receipt" | "bill" | "statement" | "order_confirmation" | "unknown"
- payment_status: "paid" | "unpaid" | "unknown"
- missing_fields: Array of required field names that could not be extracted

Return ONLY valid JSON:
{
  "vendor_name": "value or null",
  "reference_number": "value or null",
  "transaction_date": "YYYY-MM-DD or null",
  "payment_due_date": "YYYY-MM-DD or null",
  "total_amount": "numeric string or null",
  "currency": "USD",
  "customer_name": "value or null",
  "customer_address": "value or null",
  "line_items": [],
  "extraction_quality": "high|medium|low",
  "document_type": "invoice|receipt|bill|statement|order_confirmation|unknown",
  "payment_status": "paid|unpaid|unknown",
  "missing_fields": []
}

Return ONLY the JSON object, no markdown formatting or explanation.`

// buildScoringPrompt serializes the extracted fields and validation results
// into the scoring instruction for the cheaper model tier.
func buildScoringPrompt(extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult) (string, error) {
	extractedJSON, err := json.MarshalIndent(extracted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling extracted fields: %w", err)
	}
	validatedJSON, err := json.MarshalIndent(validated, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling validation results: %w", err)
	}

	return fmt.Sprintf(`You are a confidence scoring agent. Analyze this extracted document data and validation results to generate confidence scores.

Extracted Data:
%s

Validation Results:
%s

For each field, provide:
1. Confidence score (0.0 to 1.0)
2. Brief reasoning explaining the score

Consider these factors:
- Extraction quality metadata
- Validation pass/fail status
- Cross-field consistency
- Typical field locations and patterns

Return ONLY a valid JSON object with this structure:
{
  "vendor_name": {
    "confidence": 0.95,
    "reasoning": "Clear text, standard location"
  },
  "reference_number": {
    "confidence": 0.90,
    "reasoning": "Standard format, clearly visible"
  },
  "transaction_date": {
    "confidence": 0.85,
    "reasoning": "Valid format, consistent with other dates"
  },
  "payment_due_date": {
    "confidence": 0.80,
    "reasoning": "Valid but unusual spacing from transaction date"
  },
  "total_amount": {
    "confidence": 0.70,
    "reasoning": "Value clear but validation warning on line item mismatch"
  }
}

Include all fields that were extracted. Use 0.0 confidence for fields that failed validation.
Threshold: <0.7 confidence requires mandatory human review.

Return ONLY the JSON object, no markdown or explanation.`, extractedJSON, validatedJSON), nil
}
