package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"firescribe/internal/domain"
)

// Store is an append-only CSV record sink implementing port.IncidentAppender.
// The file is created with a BOM and header row on first append; the field
// column set is fixed at construction so every row matches the header.
type Store struct {
	mu     sync.Mutex
	path   string
	fields []string
}

// NewStore creates a Store writing to path with the given field columns.
func NewStore(path string, fields []string) *Store {
	return &Store{
		path:   path,
		fields: fields,
	}
}

// Path returns the CSV file location.
func (s *Store) Path() string {
	return s.path
}

// Append writes one incident row, creating the file and header if needed.
// Appends are serialized; concurrent extractions never interleave rows.
func (s *Store) Append(_ context.Context, incident *domain.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening record file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat record file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if _, err := f.Write(BOM); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
		if err := w.Write(Header(s.fields)); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := w.Write(incidentRow(incident, s.fields)); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing record: %w", err)
	}
	return nil
}
