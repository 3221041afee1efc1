package extract

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"firescribe/internal/domain"
)

// Normalize reconciles a parsed object against the requested field list and
// always produces a complete record: every requested field is present, in
// request order, with a string value; keys the model invented are dropped.
// It never fails, whatever the model produced.
//
// Values may arrive bare (a JSON scalar) or wrapped in the prompt's
// {"value": ..., "confidence": ...} envelope; both are accepted. Bare values
// carry confidence 0. Coercion: strings pass through, numbers and booleans
// keep their literal text, null and absent become "", other objects and
// arrays become their compact JSON text.
func Normalize(parsed map[string]json.RawMessage, fields []string) []domain.FieldValue {
	record := make([]domain.FieldValue, 0, len(fields))
	for _, name := range fields {
		raw, ok := parsed[name]
		if !ok {
			record = append(record, domain.FieldValue{Name: name})
			continue
		}
		value, confidence := coerceEntry(raw)
		record = append(record, domain.FieldValue{Name: name, Value: value, Confidence: confidence})
	}
	return record
}

// coerceEntry turns one raw field entry into (value, confidence). An object
// with a "value" member is the confidence envelope; anything else is coerced
// directly with confidence 0.
func coerceEntry(raw json.RawMessage) (string, float64) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope != nil {
		if inner, ok := envelope["value"]; ok {
			value := coerceScalar(inner)
			return value, clampConfidence(envelope["confidence"], value)
		}
	}
	return coerceScalar(raw), 0
}

// coerceScalar renders any JSON value as a string per the coercion rules.
func coerceScalar(raw json.RawMessage) string {
	t := strings.TrimSpace(string(raw))
	if t == "" || t == "null" {
		return ""
	}
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(t), &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(t)); err != nil {
			return ""
		}
		return buf.String()
	default:
		// Numbers and booleans keep their literal JSON text.
		return t
	}
}

// clampConfidence reads the envelope's confidence member as a number in
// [0,1]. Non-numeric, absent, or NaN confidence is 0, as is any confidence
// attached to an empty value.
func clampConfidence(raw json.RawMessage, value string) float64 {
	if value == "" || len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		// The model sometimes quotes the number.
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
