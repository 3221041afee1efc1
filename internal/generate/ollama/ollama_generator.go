package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"firescribe/internal/config"
	"firescribe/internal/domain"
	"firescribe/internal/generate"
	"firescribe/internal/port"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "qwen2.5:7b"
)

// Generator implements port.Generator against a local Ollama server.
type Generator struct {
	model       string
	maxTokens   int
	temperature float64
	endpoint    string
	client      *http.Client
}

// NewGenerator creates an Ollama-backed generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	return newGenerator(cfg, "")
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	return newGenerator(cfg, endpoint)
}

func newGenerator(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if endpoint == "" {
		base := cfg.BaseURL
		if base == "" {
			base = defaultBaseURL
		}
		endpoint = strings.TrimRight(base, "/") + "/api/generate"
	}
	return &Generator{
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	reqBody := map[string]interface{}{
		"model":  g.model,
		"system": input.System,
		"prompt": input.User,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": g.temperature,
			"num_predict": g.maxTokens,
		},
	}
	if input.JSONMode {
		reqBody["format"] = "json"
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, generate.ClassifyTransportError("ollama", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generate.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generate.NewRateLimitError("ollama", baseErr, retryAfter)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, baseErr)
	}

	return parseResponse(respBody, g.model)
}

// apiResponse models the Ollama /api/generate non-streaming response.
type apiResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling ollama response: %v", domain.ErrBackendUnavailable, err)
	}

	return &port.GenerateOutput{
		Text:     resp.Response,
		Provider: "ollama",
		Model:    model,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
