package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"firescribe/internal/domain"
)

// RecoveryStage identifies which cascade stage produced a usable object.
type RecoveryStage string

const (
	StageDirect   RecoveryStage = "direct"
	StageFenced   RecoveryStage = "fenced"
	StageBoundary RecoveryStage = "boundary"
)

// UnrecoverableOutputError carries the raw model output when no recovery
// stage could parse a JSON object out of it.
type UnrecoverableOutputError struct {
	Raw string
}

func (e *UnrecoverableOutputError) Error() string {
	return fmt.Sprintf("%v (raw: %s)", domain.ErrUnrecoverableOutput, truncate(e.Raw, 500))
}

func (e *UnrecoverableOutputError) Unwrap() error {
	return domain.ErrUnrecoverableOutput
}

// Recover parses noisy model output into a JSON object. Backends routinely
// wrap valid JSON in code fences or surround it with prose, so a single parse
// attempt is too brittle; Recover applies an ordered cascade and stops at the
// first stage that yields a JSON object:
//
//  1. direct parse of the whole text
//  2. parse of the first fenced code block, if any
//  3. parse of the substring between the first "{" and the last "}"
//
// A stage that parses valid JSON which is not an object, or extracts a
// substring that does not parse, fails silently and the cascade continues.
// When every stage fails, Recover returns an *UnrecoverableOutputError
// wrapping domain.ErrUnrecoverableOutput.
func Recover(raw string) (map[string]json.RawMessage, RecoveryStage, error) {
	trimmed := strings.TrimSpace(raw)

	if obj, ok := tryParseObject(trimmed); ok {
		return obj, StageDirect, nil
	}

	if inner, found := fencedContent(trimmed); found {
		if obj, ok := tryParseObject(inner); ok {
			return obj, StageFenced, nil
		}
	}

	if inner, found := braceBounds(trimmed); found {
		if obj, ok := tryParseObject(inner); ok {
			return obj, StageBoundary, nil
		}
	}

	return nil, "", &UnrecoverableOutputError{Raw: raw}
}

// tryParseObject parses s strictly as a single JSON object. Arrays, scalars,
// null, and text with trailing content all fail.
func tryParseObject(s string) (map[string]json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// fencedContent extracts the body of the first triple-backtick code block.
// An unterminated fence runs to the end of the text. A leading "json" tag on
// the block is stripped.
func fencedContent(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	body := s[start+3:]
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	body = strings.TrimSpace(body)
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimSpace(body[4:])
	}
	return body, true
}

// braceBounds extracts the substring from the first "{" through the last "}".
func braceBounds(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
