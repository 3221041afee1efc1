package domain

// CompletenessScore converts a missing-field count into a [0,1] audit score.
// Each missing field subtracts penalty from a perfect 1.
func CompletenessScore(missing int, penalty float64) float64 {
	score := 1 - float64(missing)*penalty
	if score < 0 {
		return 0
	}
	return score
}

// MissingPlaceholder marks an absent field value in report output. Stored
// records never contain it.
func MissingPlaceholder(field string) string {
	return "<MISSING: " + field + ">"
}

// AnnotatedValues returns the incident's field mapping with placeholders
// substituted for empty values, in record order.
func AnnotatedValues(inc *Incident) map[string]string {
	out := make(map[string]string, len(inc.Fields))
	for _, f := range inc.Fields {
		if f.Value == "" {
			out[f.Name] = MissingPlaceholder(f.Name)
			continue
		}
		out[f.Name] = f.Value
	}
	return out
}
