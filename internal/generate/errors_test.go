package generate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"firescribe/internal/domain"
	"firescribe/internal/generate"
)

func TestRateLimitError_ErrorString(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	rlErr := generate.NewRateLimitError("claude", underlying, 30)

	assert.Contains(t, rlErr.Error(), "claude")
	assert.Contains(t, rlErr.Error(), "rate limited")
	assert.Contains(t, rlErr.Error(), "30s")
}

func TestRateLimitError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	rlErr := generate.NewRateLimitError("gemini", underlying, 60)

	assert.Equal(t, underlying, errors.Unwrap(rlErr))
}

func TestRateLimitError_ErrorsAs(t *testing.T) {
	underlying := fmt.Errorf("rate limited")
	rlErr := generate.NewRateLimitError("claude", underlying, 30)

	// Wrap it further
	wrapped := fmt.Errorf("generate failed: %w", rlErr)

	var target *generate.RateLimitError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "claude", target.Provider)
	assert.Equal(t, 30*time.Second, target.RetryAfter)
}

func TestNewRateLimitError_DefaultRetryAfter(t *testing.T) {
	rlErr := generate.NewRateLimitError("openai", fmt.Errorf("err"), 0)

	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestNewRateLimitError_CustomRetryAfter(t *testing.T) {
	rlErr := generate.NewRateLimitError("openai", fmt.Errorf("err"), 30)

	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, generate.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, generate.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, generate.ParseRetryAfterHeader("invalid"))
	assert.Equal(t, 120, generate.ParseRetryAfterHeader("120"))
}

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "fake net error" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassifyTransportError_DeadlineExceeded(t *testing.T) {
	err := generate.ClassifyTransportError("ollama", fmt.Errorf("request: %w", context.DeadlineExceeded))

	assert.True(t, errors.Is(err, domain.ErrBackendTimeout))
	assert.Contains(t, err.Error(), "ollama")
}

func TestClassifyTransportError_ClientTimeout(t *testing.T) {
	err := generate.ClassifyTransportError("openai", &fakeNetError{timeout: true})

	assert.True(t, errors.Is(err, domain.ErrBackendTimeout))
}

func TestClassifyTransportError_ConnectionRefused(t *testing.T) {
	err := generate.ClassifyTransportError("ollama", fmt.Errorf("dial tcp: connection refused"))

	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
	assert.False(t, errors.Is(err, domain.ErrBackendTimeout))
	assert.Contains(t, err.Error(), "ollama")
}

func TestClassifyTransportError_NonTimeoutNetError(t *testing.T) {
	err := generate.ClassifyTransportError("gemini", &fakeNetError{timeout: false})

	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
}
