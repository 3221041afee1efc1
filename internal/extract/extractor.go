package extract

import (
	"context"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// Result is one finished extraction before record assembly.
type Result struct {
	Fields   []domain.FieldValue
	Provider string
	Model    string
	Stage    RecoveryStage
}

// Extractor drives the pipeline for one narrative: build the prompt, invoke
// the generation backend, recover a JSON object from its output, and
// normalize it against the requested fields. It holds no mutable state, so a
// single instance serves concurrent requests.
type Extractor struct {
	generator port.Generator
	jsonMode  bool
}

// New creates an Extractor on the given backend. jsonMode requests the
// backend's strict-JSON response mode where supported.
func New(generator port.Generator, jsonMode bool) *Extractor {
	return &Extractor{generator: generator, jsonMode: jsonMode}
}

// Extract runs the pipeline. It fails with domain.ErrNoFieldsRequested or
// domain.ErrDuplicateField on a bad field list, passes backend errors
// through, and fails with an *UnrecoverableOutputError when no recovery
// stage can parse the model's output. The context deadline bounds the
// backend call; cancellation aborts it.
func (e *Extractor) Extract(ctx context.Context, transcript string, fields []string) (*Result, error) {
	system, user, err := BuildPrompt(transcript, fields)
	if err != nil {
		return nil, err
	}

	out, err := e.generator.Generate(ctx, port.GenerateInput{
		System:   system,
		User:     user,
		JSONMode: e.jsonMode,
	})
	if err != nil {
		return nil, err
	}

	parsed, stage, err := Recover(out.Text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Fields:   Normalize(parsed, fields),
		Provider: out.Provider,
		Model:    out.Model,
		Stage:    stage,
	}, nil
}
