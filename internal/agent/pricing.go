package agent

import "payfill/internal/domain"

// Rates are published dollar prices per million tokens for one model tier.
type Rates struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Default published rates: a costlier multimodal tier for extraction and
// a cheaper tier for scoring.
var (
	ExtractionRates = Rates{InputPerMTok: 3.00, OutputPerMTok: 15.00}
	ScoringRates    = Rates{InputPerMTok: 0.80, OutputPerMTok: 4.00}
)

// Cost converts token usage into a CostRecord at these rates.
func (r Rates) Cost(inputTokens, outputTokens int) domain.CostRecord {
	inputCost := float64(inputTokens) / 1_000_000 * r.InputPerMTok
	outputCost := float64(outputTokens) / 1_000_000 * r.OutputPerMTok
	return domain.CostRecord{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalCost:    inputCost + outputCost,
		Breakdown: domain.CostBreakdown{
			Input:  inputCost,
			Output: outputCost,
		},
	}
}
