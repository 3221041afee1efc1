package domain

import (
	"time"

	"github.com/google/uuid"
)

// FieldValue is one extracted field: the schema name, the string value the
// model produced for it (possibly empty), and the model's self-reported
// confidence clamped to [0,1].
type FieldValue struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Incident is the durable unit produced by one successful extraction.
// Fields is total and closed with respect to the requested field list and
// preserves its order. Incidents are immutable once assembled.
type Incident struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	CapturedAt   time.Time      `db:"captured_at" json:"captured_at"`
	Source       IncidentSource `db:"source" json:"source"`
	Narrative    string         `db:"narrative" json:"narrative"`
	AudioKey     string         `db:"audio_key" json:"audio_key,omitempty"`
	Provider     string         `db:"provider" json:"provider"`
	Model        string         `db:"model" json:"model"`
	Fields       []FieldValue   `db:"-" json:"fields"`
	Completeness float64        `db:"completeness" json:"completeness"`
}

// FieldNames returns the field names in record order.
func (in *Incident) FieldNames() []string {
	names := make([]string, len(in.Fields))
	for i, f := range in.Fields {
		names[i] = f.Name
	}
	return names
}

// Value returns the value for a field name, or "" if the record does not
// contain it.
func (in *Incident) Value(name string) string {
	for _, f := range in.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// MissingFields returns the names of requested fields whose value is empty.
func (in *Incident) MissingFields() []string {
	var missing []string
	for _, f := range in.Fields {
		if f.Value == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// FieldProfile is a named, ordered field list operators can select instead of
// spelling out fields per request.
type FieldProfile struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}
