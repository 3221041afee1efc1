package port

import "context"

// GenerateInput carries one prompt for the generation backend. JSONMode asks
// the backend for strict-JSON output where the provider supports it; it is
// advisory only and downstream parsing never assumes it held.
type GenerateInput struct {
	System   string
	User     string
	JSONMode bool
}

// GenerateOutput is the backend's raw reply plus provenance for the record.
type GenerateOutput struct {
	Text     string
	Provider string
	Model    string
}

// Generator abstracts a text-generation backend. Implementations make one
// outbound call per Generate and honor context cancellation.
type Generator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
