// Package whisper implements transcription against an OpenAI-compatible
// /v1/audio/transcriptions endpoint. Both the hosted OpenAI API and
// self-hosted whisper servers (faster-whisper-server, speaches) speak this
// protocol.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"firescribe/internal/config"
	"firescribe/internal/domain"
	"firescribe/internal/port"
)

const (
	defaultBaseURL = "http://localhost:9000"
	defaultModel   = "whisper-1"
)

// Transcriber implements port.Transcriber over the whisper HTTP API.
type Transcriber struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewTranscriber creates a whisper-backed transcriber from config.
func NewTranscriber(cfg *config.TranscribeConfig) *Transcriber {
	return newTranscriber(cfg, "")
}

// NewTranscriberWithEndpoint creates a transcriber pointing at a custom API endpoint (for testing).
func NewTranscriberWithEndpoint(cfg *config.TranscribeConfig, endpoint string) *Transcriber {
	return newTranscriber(cfg, endpoint)
}

func newTranscriber(cfg *config.TranscribeConfig, endpoint string) *Transcriber {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	if endpoint == "" {
		base := cfg.BaseURL
		if base == "" {
			base = defaultBaseURL
		}
		endpoint = strings.TrimRight(base, "/") + "/v1/audio/transcriptions"
	}
	return &Transcriber{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, input port.TranscribeInput) (*port.TranscribeOutput, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fileName := input.FileName
	if fileName == "" {
		fileName = "audio" + domain.ExtensionForAudioType(input.ContentType)
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(input.Audio); err != nil {
		return nil, fmt.Errorf("writing audio part: %w", err)
	}
	if err := mw.WriteField("model", t.model); err != nil {
		return nil, fmt.Errorf("writing model field: %w", err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("writing response_format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: whisper API error (status %d): %s",
			domain.ErrTranscriptionFailed, resp.StatusCode, truncate(string(respBody), 500))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling whisper response: %v", domain.ErrTranscriptionFailed, err)
	}

	return &port.TranscribeOutput{Text: parsed.Text}, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: whisper request timed out: %v", domain.ErrTranscriptionFailed, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: whisper request timed out: %v", domain.ErrTranscriptionFailed, err)
	}
	return fmt.Errorf("%w: calling whisper API: %v", domain.ErrTranscriptionFailed, err)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
