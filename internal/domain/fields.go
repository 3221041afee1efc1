package domain

// ValidateFieldRequest checks a requested field list: it must be non-empty
// and free of blank or duplicate names.
func ValidateFieldRequest(fields []string) error {
	if len(fields) == 0 {
		return ErrNoFieldsRequested
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			return ErrNoFieldsRequested
		}
		if _, dup := seen[f]; dup {
			return ErrDuplicateField
		}
		seen[f] = struct{}{}
	}
	return nil
}
