// Command backfill rebuilds the incident history table from the append-only
// capture CSV, for standing up a fresh database next to an existing capture
// file. Rows whose id already exists are skipped. Confidence scores and audio
// keys live only in the database, so rebuilt rows carry neither.
// Usage: go run ./cmd/backfill [-csv records/incidents.csv]
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"firescribe/internal/config"
	"firescribe/internal/csvexport"
	"firescribe/internal/domain"
	"firescribe/internal/repository/sqldb"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "Capture CSV to read (default from config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *csvPath == "" {
		*csvPath = cfg.CSV.Path
	}

	db, err := sqldb.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := sqldb.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	repo := sqldb.NewIncidentRepo(db)

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("opening capture file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(skipBOM(f))
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	fields, err := fieldColumns(header)
	if err != nil {
		return err
	}

	inserted := 0
	skipped := 0
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("reading row at line %d: %w", line, err)
		}

		inc, err := parseRow(row, fields)
		if err != nil {
			log.Printf("WARN: skipping line %d: %v", line, err)
			continue
		}

		if _, err := repo.GetByID(ctx, inc.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("checking incident %s: %w", inc.ID, err)
		}

		if err := repo.Create(ctx, inc); err != nil {
			return fmt.Errorf("inserting incident %s: %w", inc.ID, err)
		}
		inserted++
	}

	log.Printf("Backfill complete: %d inserted, %d already present", inserted, skipped)
	return nil
}

// skipBOM discards the UTF-8 BOM the capture file starts with.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(csvexport.BOM))
	if err == nil && bytes.Equal(head, csvexport.BOM) {
		_, _ = br.Discard(len(csvexport.BOM))
	}
	return br
}

// fieldColumns validates the fixed metadata columns and returns the field
// names that follow them.
func fieldColumns(header []string) ([]string, error) {
	meta := csvexport.Header(nil)
	if len(header) < len(meta) {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(header), len(meta))
	}
	for i, want := range meta {
		if header[i] != want {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, header[i], want)
		}
	}
	return header[len(meta):], nil
}

// parseRow converts one capture row back into an incident. Cells pass through
// desanitizeCell; every field column becomes a field entry so the rebuilt
// record stays total with respect to the capture header.
func parseRow(row []string, fields []string) (*domain.Incident, error) {
	meta := csvexport.Header(nil)
	if len(row) != len(meta)+len(fields) {
		return nil, fmt.Errorf("row has %d columns, want %d", len(row), len(meta)+len(fields))
	}
	for i := range row {
		row[i] = desanitizeCell(row[i])
	}

	id, err := uuid.Parse(row[0])
	if err != nil {
		return nil, fmt.Errorf("bad id %q: %w", row[0], err)
	}
	capturedAt, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return nil, fmt.Errorf("bad captured_at %q: %w", row[1], err)
	}
	completeness, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return nil, fmt.Errorf("bad completeness %q: %w", row[5], err)
	}

	fieldValues := make([]domain.FieldValue, len(fields))
	for i, name := range fields {
		fieldValues[i] = domain.FieldValue{Name: name, Value: row[len(meta)+i]}
	}

	return &domain.Incident{
		ID:           id,
		CapturedAt:   capturedAt,
		Source:       domain.IncidentSource(row[2]),
		Provider:     row[3],
		Model:        row[4],
		Completeness: completeness,
		Narrative:    row[6],
		Fields:       fieldValues,
	}, nil
}

// desanitizeCell reverses the formula-injection quote prefix the capture
// writer adds. A value that itself began with a quote followed by a formula
// character is indistinguishable from a sanitized one and loses the quote.
func desanitizeCell(s string) string {
	if len(s) >= 2 && s[0] == '\'' {
		switch s[1] {
		case '=', '+', '-', '@':
			return s[1:]
		}
	}
	return s
}
