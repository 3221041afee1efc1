package generate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"firescribe/internal/config"
	"firescribe/internal/generate"
	"firescribe/internal/port"
)

func TestFactory_RegisterAndCreate(t *testing.T) {
	generate.RegisterProvider("test-provider", func(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
		return &stubGenerator{model: cfg.DefaultModel}, nil
	})

	g, err := generate.NewGenerator(&config.GeneratorProviderConfig{
		Provider:     "test-provider",
		DefaultModel: "test-model",
	})

	assert.NoError(t, err)
	assert.NotNil(t, g)
}

func TestFactory_UnknownProvider(t *testing.T) {
	g, err := generate.NewGenerator(&config.GeneratorProviderConfig{
		Provider: "nonexistent-provider-xyz",
	})

	assert.Nil(t, g)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generation provider")
}

// stubGenerator is a minimal Generator for testing the factory.
type stubGenerator struct {
	model string
}

func (s *stubGenerator) Generate(_ context.Context, _ port.GenerateInput) (*port.GenerateOutput, error) {
	return &port.GenerateOutput{Model: s.model}, nil
}
