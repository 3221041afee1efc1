// Package xlsxexport renders incident batches as Excel workbooks: an
// Incidents sheet mirroring the CSV export columns and a Summary sheet with
// per-field fill counts.
package xlsxexport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"firescribe/internal/csvexport"
	"firescribe/internal/domain"
)

const (
	incidentsSheet = "Incidents"
	summarySheet   = "Summary"
)

// Write renders incidents into an XLSX workbook on w. String cells pass
// through the same formula sanitization as the CSV surface.
func Write(w io.Writer, incidents []domain.Incident, fields []string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", incidentsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := toCellRow(csvexport.Header(fields))
	if err := f.SetSheetRow(incidentsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range incidents {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		row := incidentRow(&incidents[i], fields)
		if err := f.SetSheetRow(incidentsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := writeSummary(f, incidents, fields); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func incidentRow(inc *domain.Incident, fields []string) []interface{} {
	row := []interface{}{
		inc.ID.String(),
		inc.CapturedAt.UTC().Format(time.RFC3339),
		string(inc.Source),
		csvexport.SanitizeCell(inc.Provider),
		csvexport.SanitizeCell(inc.Model),
		inc.Completeness,
		csvexport.SanitizeCell(inc.Narrative),
	}
	for _, name := range fields {
		row = append(row, csvexport.SanitizeCell(inc.Value(name)))
	}
	return row
}

func writeSummary(f *excelize.File, incidents []domain.Incident, fields []string) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	filled := make(map[string]int, len(fields))
	var completenessSum float64
	for i := range incidents {
		completenessSum += incidents[i].Completeness
		for _, name := range fields {
			if incidents[i].Value(name) != "" {
				filled[name]++
			}
		}
	}

	avg := 0.0
	if len(incidents) > 0 {
		avg = completenessSum / float64(len(incidents))
	}

	rows := [][]interface{}{
		{"Total Records", len(incidents)},
		{"Average Completeness", avg},
		{},
		{"Field", "Filled", "Fill Rate"},
	}
	for _, name := range fields {
		rate := 0.0
		if len(incidents) > 0 {
			rate = float64(filled[name]) / float64(len(incidents))
		}
		rows = append(rows, []interface{}{name, filled[name], rate})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing summary cell name: %w", err)
		}
		r := row
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}
	return nil
}

func toCellRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
