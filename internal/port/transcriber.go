package port

import "context"

// TranscribeInput carries raw audio for speech-to-text.
type TranscribeInput struct {
	Audio       []byte
	ContentType string
	FileName    string
}

// TranscribeOutput is the recognized narrative text.
type TranscribeOutput struct {
	Text string
}

// Transcriber abstracts the speech-to-text collaborator. Potentially slow;
// implementations honor context cancellation.
type Transcriber interface {
	Transcribe(ctx context.Context, input TranscribeInput) (*TranscribeOutput, error)
}
