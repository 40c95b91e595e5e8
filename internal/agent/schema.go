package agent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractionSchema returns the JSON Schema (draft 2020-12 subset) that
// extraction agent output must satisfy before it is accepted.
func ExtractionSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vendor_name":      nullableString,
			"reference_number": nullableString,
			"transaction_date": nullableString,
			"payment_due_date": nullableString,
			"total_amount":     nullableString,
			"currency":         nullableString,
			"customer_name":    nullableString,
			"customer_address": nullableString,
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": nullableString,
						"quantity":    map[string]any{"type": []string{"number", "null"}},
						"unit_price":  nullableString,
						"amount":      nullableString,
					},
					"required": []string{"description", "amount"},
				},
			},
			"extraction_quality": map[string]any{
				"type": "string",
				"enum": []string{"high", "medium", "low"},
			},
			"document_type": map[string]any{
				"type": "string",
				"enum": []string{"invoice", "receipt", "bill", "statement", "order_confirmation", "unknown"},
			},
			"payment_status": map[string]any{
				"type": "string",
				"enum": []string{"paid", "unpaid", "unknown"},
			},
			"missing_fields": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"extraction_quality", "document_type", "payment_status"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ExtractJSONBlock finds the first top-level JSON object in an LLM text
// response, tolerating surrounding prose or markdown fences.
func ExtractJSONBlock(text string) ([]byte, error) {
	start := bytes.IndexByte([]byte(text), '{')
	end := bytes.LastIndexByte([]byte(text), '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	return []byte(text)[start : end+1], nil
}
