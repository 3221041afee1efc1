// Package extract implements the field-extraction core: prompt construction,
// recovery parsing of model output, and normalization of the parsed result
// against the requested field list.
package extract

import (
	"fmt"
	"strings"

	"firescribe/internal/domain"
)

const systemInstruction = `You are an incident records system that converts fire and EMS dispatch narratives into structured data. You respond with a single JSON object and nothing else: no prose, no explanations, no markdown fences.`

// BuildPrompt constructs the system and user instructions for one extraction.
// It enumerates the requested field names verbatim and mandates an object with
// exactly those keys, string values, and pure JSON output. The mandate is
// advisory: downstream stages never assume the model honored it.
// Deterministic and side-effect free.
func BuildPrompt(transcript string, fields []string) (system, user string, err error) {
	if err := domain.ValidateFieldRequest(fields); err != nil {
		return "", "", err
	}

	var b strings.Builder
	b.WriteString("Extract the following fields from the incident narrative below.\n\n")
	b.WriteString("Fields to extract:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString(`
Rules:
- Return a single JSON object whose keys are exactly the field names listed above: no more, no fewer.
- Each field maps to an object of the form {"value": "...", "confidence": 0.0}.
- "value" is always a string. Write numeric or yes/no answers as strings, for example "3" or "true".
- If the narrative does not mention a field, use an empty string "" with confidence 0.
- "confidence" is a number between 0 and 1 reflecting how certain you are about the value.
- Return ONLY the JSON object, with no markdown fences and no commentary before or after it.

Narrative:
`)
	b.WriteString(transcript)

	return systemInstruction, b.String(), nil
}
