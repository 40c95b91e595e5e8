// Package scorer provides the deterministic fallback used when the scoring
// collaborator is unavailable. Confidence degrades predictably, never
// silently, so the formatter's review-threshold logic applies unchanged.
package scorer

import "payfill/internal/domain"

const (
	confidenceValid   = 0.80
	confidenceWarning = 0.65
	confidenceInvalid = 0.00
)

// FallbackScore derives per-field confidence scores from validation results
// alone. Fields that failed validation carry confidence 0 and the error text
// as reasoning; fields with a warning carry the warning text.
func FallbackScore(validated map[string]domain.ValidationResult) map[string]domain.ConfidenceScore {
	scores := make(map[string]domain.ConfidenceScore, len(validated))
	for field, result := range validated {
		switch {
		case !result.Valid:
			scores[field] = domain.ConfidenceScore{
				Confidence: confidenceInvalid,
				Reasoning:  result.Error,
			}
		case result.Warning != "":
			scores[field] = domain.ConfidenceScore{
				Confidence: confidenceWarning,
				Reasoning:  result.Warning,
			}
		default:
			scores[field] = domain.ConfidenceScore{
				Confidence: confidenceValid,
				Reasoning:  "passed validation",
			}
		}
	}
	return scores
}
