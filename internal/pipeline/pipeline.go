// Package pipeline orchestrates the extraction, validation, scoring, and
// formatting stages for one document. Run never returns an error: every
// outcome, including panics, is folded into the returned PipelineState.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"payfill/internal/domain"
	"payfill/internal/formatter"
	"payfill/internal/port"
	"payfill/internal/scorer"
	"payfill/internal/validator"
)

// RunInput carries the document handed to one pipeline run.
type RunInput struct {
	ImageBytes  []byte
	ContentType string
	FileName    string
}

// Runner sequences the four pipeline stages against the two agent
// collaborators. Safe for concurrent use; each run owns its own state.
type Runner struct {
	extraction port.ExtractionAgent
	scoring    port.ScoringAgent
}

// NewRunner creates a Runner with the given collaborators.
func NewRunner(extraction port.ExtractionAgent, scoring port.ScoringAgent) *Runner {
	return &Runner{extraction: extraction, scoring: scoring}
}

// Run executes the full pipeline for one document. The sink is invoked
// synchronously at every stage boundary with a reference to the live state.
// The returned state is terminal: complete, failed, or canceled.
func (r *Runner) Run(ctx context.Context, input RunInput, sink port.ProgressSink) (state *domain.PipelineState) {
	state = &domain.PipelineState{
		Status: domain.PipelineStatusProcessing,
		Errors: []domain.PipelineError{},
		Costs: domain.CostSummary{
			Breakdown: make(map[domain.PipelineStep]domain.CostRecord),
		},
	}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("internal error: %v", rec)
			log.Printf("pipeline.Runner: recovered from panic: %v", rec)
			friendly := classify(err)
			state.Errors = append(state.Errors, domain.PipelineError{
				Step:        domain.StepOrchestrator,
				Error:       err.Error(),
				UserMessage: friendly.Message,
				Title:       friendly.Title,
			})
			state.Status = domain.PipelineStatusFailed
			emit(sink, domain.StepFailed, friendly.Message, state)
		}
	}()

	// Extract
	emit(sink, domain.StepExtracting, "Extracting document data...", state)
	if canceled(ctx, state, sink) {
		return state
	}

	extractOut, err := r.extraction.Extract(ctx, port.ExtractInput{
		ImageBytes:  input.ImageBytes,
		ContentType: input.ContentType,
		FileName:    input.FileName,
	})
	if err != nil {
		if ctx.Err() != nil && canceled(ctx, state, sink) {
			return state
		}
		friendly := classify(err)
		log.Printf("pipeline.Runner: extraction failed: %v", err)
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:        domain.StepExtract,
			Error:       err.Error(),
			UserMessage: friendly.Message,
			Title:       friendly.Title,
		})
		state.Status = domain.PipelineStatusFailed
		emit(sink, domain.StepFailed, friendly.Message, state)
		return state
	}

	state.Extracted = &extractOut.Fields
	addCost(state, domain.StepExtract, extractOut.Cost)

	if !domain.AcceptedDocumentTypes[state.Extracted.DocumentType] {
		friendly := classifyUnknownDocument()
		log.Printf("pipeline.Runner: unaccepted document type: %s", state.Extracted.DocumentType)
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:        domain.StepExtract,
			Error:       fmt.Sprintf("unable to identify document type (detected: %s)", state.Extracted.DocumentType),
			UserMessage: friendly.Message,
			Title:       friendly.Title,
		})
		state.Status = domain.PipelineStatusFailed
		emit(sink, domain.StepFailed, friendly.Message, state)
		return state
	}

	if state.Extracted.ExtractionQuality == domain.QualityLow {
		friendly := classifyLowQuality()
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:    domain.StepExtract,
			Warning: friendly.Message,
		})
	}

	emit(sink, domain.StepExtracted, "Extraction complete", state)

	// Validate
	emit(sink, domain.StepValidating, "Validating data...", state)
	state.Validated = validator.Validate(state.Extracted)
	if invalid, _ := validator.Summary(state.Validated); invalid > 0 {
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:    domain.StepValidate,
			Warning: fmt.Sprintf("%d validation error(s) found", invalid),
		})
	}
	emit(sink, domain.StepValidated, "Validation complete", state)

	// Score
	emit(sink, domain.StepScoring, "Calculating confidence scores...", state)
	if canceled(ctx, state, sink) {
		return state
	}

	scoreOut, err := r.scoring.Score(ctx, state.Extracted, state.Validated)
	if err != nil {
		if ctx.Err() != nil && canceled(ctx, state, sink) {
			return state
		}
		log.Printf("pipeline.Runner: scoring failed, using fallback: %v", err)
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:    domain.StepScore,
			Warning: "Confidence scoring failed, using validation results as proxy",
		})
		state.Scored = scorer.FallbackScore(state.Validated)
	} else {
		state.Scored = normalizeScores(scoreOut.Scores, state.Validated)
		addCost(state, domain.StepScore, scoreOut.Cost)
	}
	emit(sink, domain.StepScored, "Scoring complete", state)

	// Format
	emit(sink, domain.StepFormatting, "Preparing form data...", state)
	state.Formatted = formatter.Format(state.Extracted, state.Validated, state.Scored)
	if n := len(state.Formatted.ReviewRequired); n > 0 {
		state.Errors = append(state.Errors, domain.PipelineError{
			Step:    domain.StepFormat,
			Warning: fmt.Sprintf("%d field(s) require review (confidence < %.2f)", n, formatter.ReviewThreshold),
		})
	}
	emit(sink, domain.StepFormatted, "Format complete", state)

	state.Status = domain.PipelineStatusComplete
	emit(sink, domain.StepComplete, "Processing complete", state)
	return state
}

// canceled checks the context at a suspension point and, if the run was
// canceled, moves the state to its canceled terminal status.
func canceled(ctx context.Context, state *domain.PipelineState, sink port.ProgressSink) bool {
	if ctx.Err() == nil {
		return false
	}
	state.Errors = append(state.Errors, domain.PipelineError{
		Step:  domain.StepOrchestrator,
		Error: ctx.Err().Error(),
	})
	state.Status = domain.PipelineStatusCanceled
	emit(sink, domain.StepCanceled, "Processing canceled", state)
	return true
}

func emit(sink port.ProgressSink, step domain.PipelineStep, message string, state *domain.PipelineState) {
	if sink == nil {
		return
	}
	sink.Publish(port.ProgressEvent{Step: step, Message: message, State: state})
}

func addCost(state *domain.PipelineState, step domain.PipelineStep, cost domain.CostRecord) {
	state.Costs.Breakdown[step] = cost
	state.Costs.Total += cost.TotalCost
}

// normalizeScores enforces the score invariants on collaborator output:
// confidence clamped to [0,1], zeroed for fields that failed validation,
// and every validated field present (missing entries get a fallback score).
func normalizeScores(scores map[string]domain.ConfidenceScore, validated map[string]domain.ValidationResult) map[string]domain.ConfidenceScore {
	out := make(map[string]domain.ConfidenceScore, len(validated))
	fallback := scorer.FallbackScore(validated)
	for field, result := range validated {
		score, ok := scores[field]
		if !ok {
			out[field] = fallback[field]
			continue
		}
		if !result.Valid {
			score.Confidence = 0
		} else if score.Confidence < 0 {
			score.Confidence = 0
		} else if score.Confidence > 1 {
			score.Confidence = 1
		}
		out[field] = score
	}
	return out
}
