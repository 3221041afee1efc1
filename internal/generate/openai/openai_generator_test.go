package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firescribe/internal/config"
	"firescribe/internal/domain"
	"firescribe/internal/generate"
	"firescribe/internal/generate/openai"
	"firescribe/internal/port"
)

func newOpenAITestGenerator(serverURL string) *openai.Generator {
	cfg := &config.GeneratorProviderConfig{
		Provider:     "openai",
		APIKey:       "test-openai-key",
		DefaultModel: "gpt-4o-mini",
		MaxTokens:    4096,
		Temperature:  0,
		TimeoutSecs:  30,
	}
	return openai.NewGeneratorWithEndpoint(cfg, serverURL)
}

func openaiSuccessResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestOpenAIGenerator_Generate_Success(t *testing.T) {
	llmJSON := `{"incident_type": "vehicle fire"}`

	var capturedReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		err := json.NewDecoder(r.Body).Decode(&capturedReq)
		assert.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(llmJSON))
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{
		System:   "You are an extraction system.",
		User:     "Extract fields.",
		JSONMode: true,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, llmJSON, result.Text)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "gpt-4o-mini", result.Model)

	// Verify top-level structure
	assert.Equal(t, "gpt-4o-mini", capturedReq["model"])
	assert.Equal(t, float64(4096), capturedReq["max_tokens"])
	assert.Equal(t, float64(0), capturedReq["temperature"])

	// Verify response_format
	respFmt := capturedReq["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", respFmt["type"])

	// Verify messages structure
	messages := capturedReq["messages"].([]interface{})
	require.Len(t, messages, 2)

	sysMsg := messages[0].(map[string]interface{})
	assert.Equal(t, "system", sysMsg["role"])
	assert.Equal(t, "You are an extraction system.", sysMsg["content"])

	userMsg := messages[1].(map[string]interface{})
	assert.Equal(t, "user", userMsg["role"])
	assert.Equal(t, "Extract fields.", userMsg["content"])
}

func TestOpenAIGenerator_Generate_JSONModeOff(t *testing.T) {
	var capturedReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&capturedReq)
		assert.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(`{}`))
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	_, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	require.NoError(t, err)
	assert.NotContains(t, capturedReq, "response_format")
}

func TestOpenAIGenerator_Generate_NoAPIKey_OmitsAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Self-hosted vLLM deployments run without auth.
		assert.Empty(t, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(openaiSuccessResponse(`{}`))
	}))
	defer server.Close()

	cfg := &config.GeneratorProviderConfig{
		Provider:     "openai",
		DefaultModel: "Qwen/Qwen2.5-7B-Instruct",
		TimeoutSecs:  30,
	}
	g := openai.NewGeneratorWithEndpoint(cfg, server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	require.NoError(t, err)
	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", result.Model)
}

func TestOpenAIGenerator_Generate_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	assert.Nil(t, result)
	assert.Error(t, err)

	var rlErr *generate.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
	assert.Contains(t, rlErr.Err.Error(), "openai API error (status 429)")
}

func TestOpenAIGenerator_Generate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Internal server error","type":"server_error"}}`))
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "openai API error (status 500)")

	var rlErr *generate.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestOpenAIGenerator_Generate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIGenerator_Generate_TruncatedOutputStillReturned(t *testing.T) {
	truncated := `{"incident_type": "fire", "city": "Oak`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]interface{}{"role": "assistant", "content": truncated},
					"finish_reason": "length",
				},
			},
		})
	}))
	defer server.Close()

	g := newOpenAITestGenerator(server.URL)

	result, err := g.Generate(context.Background(), port.GenerateInput{System: "s", User: "u"})

	require.NoError(t, err)
	assert.Equal(t, truncated, result.Text)
}
