package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payfill/internal/agent"
	"payfill/internal/config"
	"payfill/internal/domain"
	"payfill/internal/port"
)

// ScoreAgent implements port.ScoringAgent using the Anthropic Messages API
// on a cheaper model tier than extraction.
type ScoreAgent struct {
	apiKey   string
	model    string
	endpoint string
	rates    agent.Rates
	client   *http.Client
}

// NewScoreAgent creates a Claude-based scoring agent from a provider config.
func NewScoreAgent(cfg *config.AgentProviderConfig) *ScoreAgent {
	return newScoreAgent(cfg, apiURL)
}

// NewScoreAgentWithEndpoint creates a scoring agent pointing at a custom
// API endpoint (for testing).
func NewScoreAgentWithEndpoint(cfg *config.AgentProviderConfig, endpoint string) *ScoreAgent {
	return newScoreAgent(cfg, endpoint)
}

func newScoreAgent(cfg *config.AgentProviderConfig, endpoint string) *ScoreAgent {
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	rates := agent.Rates{InputPerMTok: cfg.InputPerMTok, OutputPerMTok: cfg.OutputPerMTok}
	if rates.InputPerMTok == 0 && rates.OutputPerMTok == 0 {
		rates = agent.ScoringRates
	}
	return &ScoreAgent{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		rates:    rates,
		client:   &http.Client{Timeout: timeout},
	}
}

// Score asks the model to rate each extracted field and returns per-field
// confidence scores with reasoning, plus the cost of the call.
func (a *ScoreAgent) Score(ctx context.Context, extracted *domain.ExtractedFields, validated map[string]domain.ValidationResult) (*port.ScoreOutput, error) {
	prompt, err := buildScoringPrompt(extracted, validated)
	if err != nil {
		return nil, agent.NewError(agent.KindUnknown, providerName, err)
	}

	reqBody := map[string]interface{}{
		"model":      a.model,
		"max_tokens": 1000,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	text, usage, err := doMessages(ctx, a.client, a.endpoint, a.apiKey, reqBody)
	if err != nil {
		return nil, err
	}

	raw, err := agent.ExtractJSONBlock(text)
	if err != nil {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName, err)
	}

	var scores map[string]domain.ConfidenceScore
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("parsing scoring output: %w", err))
	}
	if len(scores) == 0 {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("scoring response contained no fields"))
	}

	return &port.ScoreOutput{
		Scores: scores,
		Cost:   a.rates.Cost(usage.InputTokens, usage.OutputTokens),
	}, nil
}
