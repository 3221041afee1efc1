package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"firescribe/internal/domain"
	"firescribe/internal/service"
	"firescribe/mocks"
)

func reportIncident(completeness float64, fields []domain.FieldValue) domain.Incident {
	return domain.Incident{
		ID:           uuid.New(),
		CapturedAt:   time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Source:       domain.SourceText,
		Narrative:    "test narrative",
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Fields:       fields,
		Completeness: completeness,
	}
}

func TestReportService_CompletenessReport_AggregatesFieldGaps(t *testing.T) {
	repo := new(mocks.MockIncidentRepo)
	svc := service.NewReportService(repo)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	incidents := []domain.Incident{
		reportIncident(1.0, []domain.FieldValue{
			{Name: "city", Value: "Oakland", Confidence: 0.9},
			{Name: "units", Value: "E12, T3", Confidence: 0.8},
		}),
		reportIncident(0.9, []domain.FieldValue{
			{Name: "city", Value: "Fresno", Confidence: 0.7},
			{Name: "units", Value: "", Confidence: 0},
		}),
		reportIncident(0.8, []domain.FieldValue{
			{Name: "city", Value: "", Confidence: 0},
			{Name: "acres", Value: "120", Confidence: 0.6},
		}),
	}
	repo.On("ListSince", mock.Anything, since).Return(incidents, nil)

	report, err := svc.CompletenessReport(context.Background(), since)

	assert.NoError(t, err)
	assert.Equal(t, since, report.Since)
	assert.Equal(t, 3, report.TotalIncidents)
	assert.InDelta(t, 0.9, report.AverageCompleteness, 1e-9)

	// Field order follows first appearance across the incident stream.
	assert.Len(t, report.Fields, 3)
	assert.Equal(t, "city", report.Fields[0].Name)
	assert.Equal(t, "units", report.Fields[1].Name)
	assert.Equal(t, "acres", report.Fields[2].Name)

	city := report.Fields[0]
	assert.Equal(t, 3, city.Requested)
	assert.Equal(t, 1, city.Missing)
	assert.InDelta(t, 2.0/3.0, city.FillRate, 1e-9)

	units := report.Fields[1]
	assert.Equal(t, 2, units.Requested)
	assert.Equal(t, 1, units.Missing)
	assert.InDelta(t, 0.5, units.FillRate, 1e-9)

	acres := report.Fields[2]
	assert.Equal(t, 1, acres.Requested)
	assert.Equal(t, 0, acres.Missing)
	assert.InDelta(t, 1.0, acres.FillRate, 1e-9)
}

func TestReportService_CompletenessReport_Empty(t *testing.T) {
	repo := new(mocks.MockIncidentRepo)
	svc := service.NewReportService(repo)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	repo.On("ListSince", mock.Anything, since).Return([]domain.Incident{}, nil)

	report, err := svc.CompletenessReport(context.Background(), since)

	assert.NoError(t, err)
	assert.Equal(t, 0, report.TotalIncidents)
	assert.Zero(t, report.AverageCompleteness)
	assert.NotNil(t, report.Fields)
	assert.Empty(t, report.Fields)
}

func TestReportService_CompletenessReport_RepoError(t *testing.T) {
	repo := new(mocks.MockIncidentRepo)
	svc := service.NewReportService(repo)

	repo.On("ListSince", mock.Anything, mock.Anything).
		Return(nil, errors.New("db connection error"))

	report, err := svc.CompletenessReport(context.Background(), time.Time{})

	assert.Nil(t, report)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "listing incidents for report")
}
