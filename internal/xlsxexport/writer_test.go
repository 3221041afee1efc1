package xlsxexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"firescribe/internal/domain"
)

func exportIncidents() []domain.Incident {
	capturedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return []domain.Incident{
		{
			ID:         uuid.MustParse("7a9f3c21-5b7e-4c1d-9f2a-08d4e6a71b55"),
			CapturedAt: capturedAt,
			Source:     domain.SourceText,
			Narrative:  "Engine 4 responded to a kitchen fire.",
			Provider:   "ollama",
			Model:      "qwen2.5:7b",
			Fields: []domain.FieldValue{
				{Name: "incident_type", Value: "structure fire"},
				{Name: "city", Value: "Springfield"},
			},
			Completeness: 1,
		},
		{
			ID:         uuid.MustParse("2b1de0b4-9c3f-47a6-8e51-3f0a9cc4d7e8"),
			CapturedAt: capturedAt.Add(time.Minute),
			Source:     domain.SourceAudio,
			Narrative:  "=HYPERLINK(\"http://evil\")",
			Provider:   "ollama",
			Model:      "qwen2.5:7b",
			Fields: []domain.FieldValue{
				{Name: "incident_type", Value: "+vehicle fire"},
				{Name: "city", Value: ""},
			},
			Completeness: 0.5,
		},
	}
}

func TestWrite_SheetLayout(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, exportIncidents(), []string{"incident_type", "city"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Incidents", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Incidents")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"id", "captured_at", "source", "provider", "model",
		"completeness", "narrative", "incident_type", "city",
	}, rows[0])
}

func TestWrite_RecordCells(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, exportIncidents(), []string{"incident_type", "city"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	id, err := f.GetCellValue("Incidents", "A2")
	require.NoError(t, err)
	assert.Equal(t, "7a9f3c21-5b7e-4c1d-9f2a-08d4e6a71b55", id)

	capturedAt, err := f.GetCellValue("Incidents", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T09:26:53Z", capturedAt)

	incidentType, err := f.GetCellValue("Incidents", "H2")
	require.NoError(t, err)
	assert.Equal(t, "structure fire", incidentType)

	completeness, err := f.GetCellValue("Incidents", "F3")
	require.NoError(t, err)
	assert.Equal(t, "0.5", completeness)
}

func TestWrite_SanitizesFormulaPrefixedValues(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, exportIncidents(), []string{"incident_type", "city"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	narrative, err := f.GetCellValue("Incidents", "G3")
	require.NoError(t, err)
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", narrative)

	incidentType, err := f.GetCellValue("Incidents", "H3")
	require.NoError(t, err)
	assert.Equal(t, "'+vehicle fire", incidentType)
}

func TestWrite_SummarySheet(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, exportIncidents(), []string{"incident_type", "city"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	avg, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0.75", avg)

	// incident_type is filled in both records, city in one.
	name, err := f.GetCellValue("Summary", "A5")
	require.NoError(t, err)
	assert.Equal(t, "incident_type", name)
	filled, err := f.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "2", filled)

	cityFilled, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "1", cityFilled)
	cityRate, err := f.GetCellValue("Summary", "C6")
	require.NoError(t, err)
	assert.Equal(t, "0.5", cityRate)
}

func TestWrite_EmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, nil, []string{"incident_type"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Incidents")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	total, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "0", total)
}
