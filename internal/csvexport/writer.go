package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"firescribe/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// metaColumns are the fixed record columns preceding the field columns.
var metaColumns = []string{
	"id",
	"captured_at",
	"source",
	"provider",
	"model",
	"completeness",
	"narrative",
}

// Header returns the column row for a field profile: fixed record metadata
// followed by the profile's field names verbatim.
func Header(fields []string) []string {
	header := make([]string, 0, len(metaColumns)+len(fields))
	header = append(header, metaColumns...)
	header = append(header, fields...)
	return header
}

// Writer wraps csv.Writer for exporting incident records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row for the given field profile.
func (w *Writer) WriteHeader(fields []string) error {
	return w.csv.Write(Header(fields))
}

// WriteIncidents converts a batch of incidents to CSV rows and writes them.
// Field columns follow the profile order; fields an incident does not carry
// are written empty.
func (w *Writer) WriteIncidents(incidents []domain.Incident, fields []string) error {
	for i := range incidents {
		if err := w.csv.Write(incidentRow(&incidents[i], fields)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// incidentRow converts a single incident to a row matching Header(fields).
// Every cell passes through SanitizeCell before it reaches the file.
func incidentRow(inc *domain.Incident, fields []string) []string {
	row := make([]string, 0, len(metaColumns)+len(fields))
	row = append(row,
		inc.ID.String(),
		inc.CapturedAt.UTC().Format(time.RFC3339),
		string(inc.Source),
		inc.Provider,
		inc.Model,
		strconv.FormatFloat(inc.Completeness, 'f', 2, 64),
		inc.Narrative,
	)
	for _, name := range fields {
		row = append(row, inc.Value(name))
	}
	for i := range row {
		row[i] = SanitizeCell(row[i])
	}
	return row
}

// SanitizeCell neutralizes spreadsheet formula injection. Cells beginning
// with =, +, - or @ are prefixed with a single quote so spreadsheet
// applications treat them as text, not formulas.
func SanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans an export name prefix for use in filenames and
// Content-Disposition. Replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized timestamped export filename.
// Format: {sanitized_prefix}_{YYYYMMDD}T{HHMMSS}Z.{ext}
func BuildFilename(prefix, ext string) string {
	sanitized := SanitizeFilename(prefix)
	stamp := time.Now().UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s_%s.%s", sanitized, stamp, ext)
}
