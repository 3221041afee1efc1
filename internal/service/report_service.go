package service

import (
	"context"
	"fmt"
	"time"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// ReportService provides extraction-quality reporting over stored incidents.
type ReportService interface {
	CompletenessReport(ctx context.Context, since time.Time) (*domain.CompletenessReport, error)
}

type reportService struct {
	repo port.IncidentRepository
}

func NewReportService(repo port.IncidentRepository) ReportService {
	return &reportService{repo: repo}
}

func (s *reportService) CompletenessReport(ctx context.Context, since time.Time) (*domain.CompletenessReport, error) {
	incidents, err := s.repo.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("listing incidents for report: %w", err)
	}

	report := &domain.CompletenessReport{
		Since:          since.UTC(),
		TotalIncidents: len(incidents),
		Fields:         []domain.FieldGap{},
	}
	if len(incidents) == 0 {
		return report, nil
	}

	var order []string
	requested := make(map[string]int)
	missing := make(map[string]int)
	var sum float64

	for i := range incidents {
		sum += incidents[i].Completeness
		for _, f := range incidents[i].Fields {
			if _, ok := requested[f.Name]; !ok {
				order = append(order, f.Name)
			}
			requested[f.Name]++
			if f.Value == "" {
				missing[f.Name]++
			}
		}
	}

	report.AverageCompleteness = sum / float64(len(incidents))
	for _, name := range order {
		report.Fields = append(report.Fields, domain.FieldGap{
			Name:      name,
			Requested: requested[name],
			Missing:   missing[name],
			FillRate:  1 - float64(missing[name])/float64(requested[name]),
		})
	}
	return report, nil
}
