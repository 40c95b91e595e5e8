package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"payfill/internal/agent"
	"payfill/internal/config"
	"payfill/internal/domain"
	"payfill/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	providerName = "claude"
)

// ExtractAgent implements port.ExtractionAgent using the Anthropic Messages API.
type ExtractAgent struct {
	apiKey   string
	model    string
	endpoint string
	rates    agent.Rates
	client   *http.Client
}

// NewExtractAgent creates a Claude-based extraction agent from a provider config.
func NewExtractAgent(cfg *config.AgentProviderConfig) *ExtractAgent {
	return newExtractAgent(cfg, apiURL)
}

// NewExtractAgentWithEndpoint creates an extraction agent pointing at a
// custom API endpoint (for testing).
func NewExtractAgentWithEndpoint(cfg *config.AgentProviderConfig, endpoint string) *ExtractAgent {
	return newExtractAgent(cfg, endpoint)
}

func newExtractAgent(cfg *config.AgentProviderConfig, endpoint string) *ExtractAgent {
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	rates := agent.Rates{InputPerMTok: cfg.InputPerMTok, OutputPerMTok: cfg.OutputPerMTok}
	if rates.InputPerMTok == 0 && rates.OutputPerMTok == 0 {
		rates = agent.ExtractionRates
	}
	return &ExtractAgent{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		rates:    rates,
		client:   &http.Client{Timeout: timeout},
	}
}

// Extract sends the document to the model and returns validated extracted
// fields together with the cost of the call.
func (a *ExtractAgent) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	contentBlocks, err := buildContentBlocks(input)
	if err != nil {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName, err)
	}

	reqBody := map[string]interface{}{
		"model":      a.model,
		"max_tokens": 2000,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": contentBlocks,
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
	if err := agent.ValidateAgainstSchema(agent.ExtractionSchema(), raw); err != nil {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName, err)
	}

	var fields domain.ExtractedFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("parsing extraction output: %w", err))
	}

	return &port.ExtractOutput{
		Fields: fields,
		Cost:   a.rates.Cost(usage.InputTokens, usage.OutputTokens),
	}, nil
}

func buildContentBlocks(input port.ExtractInput) ([]map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(input.ImageBytes)
	var blocks []map[string]interface{}

	switch input.ContentType {
	case "application/pdf":
		blocks = append(blocks, map[string]interface{}{
			"type": "document",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": "application/pdf",
				"data":       encoded,
			},
		})
	case "image/jpeg", "image/png", "image/webp":
		blocks = append(blocks, map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": input.ContentType,
				"data":       encoded,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": extractionPrompt,
	})

	return blocks, nil
}

// apiUsage models the usage block of the Anthropic Messages API response.
type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string   `json:"stop_reason"`
	Usage      apiUsage `json:"usage"`
}

// doMessages issues a Messages API call and returns the first text block
// plus token usage. Failures come back as classified agent errors.
func doMessages(ctx context.Context, client *http.Client, endpoint, apiKey string, reqBody map[string]interface{}) (string, apiUsage, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", apiUsage{}, agent.NewError(agent.KindUnknown, providerName,
			fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", apiUsage{}, agent.NewError(agent.KindUnknown, providerName,
			fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := client.Do(req)
	if err != nil {
		kind := agent.KindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = agent.KindTimeout
		}
		return "", apiUsage{}, agent.NewError(kind, providerName,
			fmt.Errorf("calling anthropic API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apiUsage{}, agent.NewError(agent.KindNetwork, providerName,
			fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := agent.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", apiUsage{}, agent.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return "", apiUsage{}, agent.NewError(agent.ClassifyStatus(resp.StatusCode), providerName, baseErr)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apiUsage{}, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("unmarshaling response: %w", err))
	}
	if len(parsed.Content) == 0 {
		return "", apiUsage{}, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("empty response from API"))
	}
	if parsed.StopReason == "max_tokens" {
		return "", apiUsage{}, agent.NewError(agent.KindInvalidResponse, providerName,
			fmt.Errorf("output truncated (stop_reason: max_tokens)"))
	}

	return parsed.Content[0].Text, parsed.Usage, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
