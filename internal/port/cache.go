package port

import "context"

// TranscriptCache stores finished transcripts keyed by a digest of the audio
// bytes so identical uploads skip the transcriber.
type TranscriptCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, transcript string) error
}
