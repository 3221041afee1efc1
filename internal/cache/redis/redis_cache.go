// Package redis caches finished transcripts so identical audio uploads skip
// the transcriber.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"firescribe/internal/config"
	"firescribe/internal/port"
)

const keyPrefix = "firescribe:transcript:"

type transcriptCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTranscriptCache connects to Redis and pings it once, so a bad address
// fails at boot instead of on the first upload.
func NewTranscriptCache(cfg *config.RedisConfig) (port.TranscriptCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &transcriptCache{client: client, ttl: cfg.TTL}, nil
}

func (c *transcriptCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *transcriptCache) Set(ctx context.Context, key, transcript string) error {
	if err := c.client.Set(ctx, keyPrefix+key, transcript, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
