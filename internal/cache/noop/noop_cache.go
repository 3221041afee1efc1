package noop

import (
	"context"

	"firescribe/internal/port"
)

type noopCache struct{}

// NewNoopCache creates a TranscriptCache that never hits. Used when no Redis
// address is configured.
func NewNoopCache() port.TranscriptCache {
	return &noopCache{}
}

func (c *noopCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (c *noopCache) Set(_ context.Context, _, _ string) error {
	return nil
}
