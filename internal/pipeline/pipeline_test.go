package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"payfill/internal/agent"
	"payfill/internal/domain"
	"payfill/internal/pipeline"
	"payfill/internal/port"
	"payfill/mocks"
)

func goodFields() domain.ExtractedFields {
	return domain.ExtractedFields{
		VendorName:        "Acme Utilities",
		ReferenceNumber:   "INV-2024-0042",
		TransactionDate:   "2024-03-01",
		PaymentDueDate:    "2024-03-31",
		TotalAmount:       "1,200.50",
		Currency:          "USD",
		CustomerName:      "Jordan Smith",
		ExtractionQuality: domain.QualityHigh,
		DocumentType:      domain.DocTypeInvoice,
		PaymentStatus:     domain.PaymentStatusUnpaid,
	}
}

func extractCost() domain.CostRecord {
	return domain.CostRecord{InputTokens: 1000, OutputTokens: 500, TotalCost: 0.0105}
}

func confidentScores() map[string]domain.ConfidenceScore {
	scores := make(map[string]domain.ConfidenceScore)
	for _, f := range domain.RecognizedFields {
		scores[f] = domain.ConfidenceScore{Confidence: 0.9, Reasoning: "clear"}
	}
	return scores
}

func run(t *testing.T, extraction *mocks.MockExtractionAgent, scoring *mocks.MockScoringAgent) (*domain.PipelineState, *pipeline.Recorder) {
	t.Helper()
	recorder := pipeline.NewRecorder()
	runner := pipeline.NewRunner(extraction, scoring)
	state := runner.Run(context.Background(), pipeline.RunInput{
		ImageBytes:  []byte("image"),
		ContentType: "image/jpeg",
		FileName:    "invoice.jpg",
	}, recorder)
	return state, recorder
}

func TestRun_HappyPath(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: goodFields(), Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores(), Cost: domain.CostRecord{TotalCost: 0.001}}, nil)

	state, recorder := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusComplete, state.Status)
	require.NotNil(t, state.Formatted)
	assert.True(t, state.Formatted.ReadyToFill)
	assert.Empty(t, state.Errors)

	assert.Equal(t, []string{
		"extracting", "extracted",
		"validating", "validated",
		"scoring", "scored",
		"formatting", "formatted",
		"complete",
	}, recorder.Steps())
}

// Scenario: extraction reports an unknown document type.
func TestRun_UnknownDocumentTypeFails(t *testing.T) {
	fields := goodFields()
	fields.DocumentType = domain.DocTypeUnknown

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: fields, Cost: extractCost()}, nil)

	state, _ := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusFailed, state.Status)
	require.Len(t, state.Errors, 1)
	assert.Equal(t, domain.StepExtract, state.Errors[0].Step)
	assert.NotEmpty(t, state.Errors[0].UserMessage)
	assert.NotEmpty(t, state.Errors[0].Title)
	assert.Nil(t, state.Validated)
	assert.Nil(t, state.Scored)
	assert.Nil(t, state.Formatted)
	scoring.AssertNotCalled(t, "Score", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_ExtractionFailureIsFatal(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(nil, agent.NewRateLimitError("claude", errors.New("too many requests"), 30))

	state, recorder := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusFailed, state.Status)
	require.Len(t, state.Errors, 1)
	assert.Equal(t, domain.StepExtract, state.Errors[0].Step)
	assert.Equal(t, "Rate Limit Exceeded", state.Errors[0].Title)

	steps := recorder.Steps()
	assert.Equal(t, "failed", steps[len(steps)-1])
}

// Scenario: parsed amount flows through to the form as a number.
func TestRun_AmountCoercedToNumber(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: goodFields(), Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores()}, nil)

	state, _ := run(t, extraction, scoring)

	require.NotNil(t, state.Formatted)
	amount, ok := state.Formatted.FormFields["payment_amount"].(float64)
	require.True(t, ok, "payment_amount must be numeric")
	assert.InDelta(t, 1200.50, amount, 0.001)
	require.NotNil(t, state.Validated["total_amount"].NumericValue)
	assert.InDelta(t, 1200.50, *state.Validated["total_amount"].NumericValue, 0.001)
}

// Scenario: scoring fails and the fallback scorer routes a warned field to review.
func TestRun_ScoringFailureDegradesToFallback(t *testing.T) {
	fields := goodFields()
	fields.TransactionDate = "2024-03-31"
	fields.PaymentDueDate = "2024-03-01" // triggers a cross-field warning

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: fields, Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, agent.NewError(agent.KindServer, "claude", errors.New("503")))

	state, _ := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusComplete, state.Status)

	warning := state.Validated[domain.FieldPaymentDueDate].Warning
	require.NotEmpty(t, warning)
	assert.Equal(t, 0.65, state.Scored[domain.FieldPaymentDueDate].Confidence)
	assert.Equal(t, warning, state.Scored[domain.FieldPaymentDueDate].Reasoning)

	var reviewed *domain.ReviewItem
	for i := range state.Formatted.ReviewRequired {
		if state.Formatted.ReviewRequired[i].Field == "payment_date" {
			reviewed = &state.Formatted.ReviewRequired[i]
		}
	}
	require.NotNil(t, reviewed, "warned field must appear in review list")
	assert.Equal(t, warning, reviewed.Reasoning)

	// Degraded scoring is recorded, and its cost is not.
	var sawDegraded bool
	for _, e := range state.Errors {
		if e.Step == domain.StepScore && e.Warning != "" {
			sawDegraded = true
		}
	}
	assert.True(t, sawDegraded)
	assert.NotContains(t, state.Costs.Breakdown, domain.StepScore)
}

func TestRun_LowQualityWarnsButContinues(t *testing.T) {
	fields := goodFields()
	fields.ExtractionQuality = domain.QualityLow

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: fields, Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores()}, nil)

	state, _ := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusComplete, state.Status)
	require.Len(t, state.Warnings(), 1)
	assert.Equal(t, domain.StepExtract, state.Warnings()[0].Step)
}

func TestRun_InvalidFieldsWarnButContinue(t *testing.T) {
	fields := goodFields()
	fields.TotalAmount = "not a number"

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: fields, Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores()}, nil)

	state, _ := run(t, extraction, scoring)

	assert.Equal(t, domain.PipelineStatusComplete, state.Status)
	var sawValidateWarning bool
	for _, e := range state.Errors {
		if e.Step == domain.StepValidate {
			sawValidateWarning = true
			assert.Contains(t, e.Warning, "1 validation error(s)")
		}
	}
	assert.True(t, sawValidateWarning)
	// Invalid field dropped from the form with a warning.
	assert.NotContains(t, state.Formatted.FormFields, "payment_amount")
}

func TestRun_ScoreInvariantsEnforced(t *testing.T) {
	fields := goodFields()
	fields.TotalAmount = "junk" // invalid after validation

	scores := confidentScores()
	scores[domain.FieldTotalAmount] = domain.ConfidenceScore{Confidence: 0.9, Reasoning: "looks fine"}
	scores[domain.FieldVendorName] = domain.ConfidenceScore{Confidence: 1.7, Reasoning: "overconfident"}

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: fields, Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: scores}, nil)

	state, _ := run(t, extraction, scoring)

	assert.Equal(t, 0.0, state.Scored[domain.FieldTotalAmount].Confidence,
		"invalid fields must carry zero confidence")
	assert.Equal(t, 1.0, state.Scored[domain.FieldVendorName].Confidence,
		"confidence must be clamped to [0,1]")
}

func TestRun_CostAccumulationMonotonic(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: goodFields(), Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores(), Cost: domain.CostRecord{TotalCost: 0.002}}, nil)

	var totals []float64
	sink := port.ProgressFunc(func(event port.ProgressEvent) {
		totals = append(totals, event.State.Costs.Total)
	})

	runner := pipeline.NewRunner(extraction, scoring)
	state := runner.Run(context.Background(), pipeline.RunInput{ImageBytes: []byte("x"), ContentType: "image/png"}, sink)

	for i := 1; i < len(totals); i++ {
		assert.GreaterOrEqual(t, totals[i], totals[i-1], "cost must never decrease")
	}
	assert.InDelta(t, 0.0125, state.Costs.Total, 1e-9)
	assert.Contains(t, state.Costs.Breakdown, domain.StepExtract)
	assert.Contains(t, state.Costs.Breakdown, domain.StepScore)
}

func TestRun_PanicRecovered(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: goodFields(), Cost: extractCost()}, nil)

	runner := pipeline.NewRunner(extraction, scoring)
	sink := port.ProgressFunc(func(event port.ProgressEvent) {
		if event.Step == domain.StepScoring {
			panic("sink exploded")
		}
	})

	var state *domain.PipelineState
	require.NotPanics(t, func() {
		state = runner.Run(context.Background(), pipeline.RunInput{ImageBytes: []byte("x"), ContentType: "image/png"}, sink)
	})

	assert.Equal(t, domain.PipelineStatusFailed, state.Status)
	var found bool
	for _, e := range state.Errors {
		if e.Step == domain.StepOrchestrator {
			found = true
			assert.NotEmpty(t, e.UserMessage)
		}
	}
	assert.True(t, found, "panic must be recorded against the orchestrator step")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)

	runner := pipeline.NewRunner(extraction, scoring)
	state := runner.Run(ctx, pipeline.RunInput{ImageBytes: []byte("x"), ContentType: "image/png"}, nil)

	assert.Equal(t, domain.PipelineStatusCanceled, state.Status)
	extraction.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestRun_IndependentRuns(t *testing.T) {
	extraction := new(mocks.MockExtractionAgent)
	scoring := new(mocks.MockScoringAgent)
	extraction.On("Extract", mock.Anything, mock.Anything).
		Return(&port.ExtractOutput{Fields: goodFields(), Cost: extractCost()}, nil)
	scoring.On("Score", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.ScoreOutput{Scores: confidentScores()}, nil)

	runner := pipeline.NewRunner(extraction, scoring)
	first := runner.Run(context.Background(), pipeline.RunInput{ImageBytes: []byte("a"), ContentType: "image/png"}, nil)
	second := runner.Run(context.Background(), pipeline.RunInput{ImageBytes: []byte("b"), ContentType: "image/png"}, nil)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Status, second.Status)
}
