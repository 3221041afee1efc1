package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"firescribe/internal/domain"
	"firescribe/internal/port"
)

// storedTimeLayout is RFC 3339 with a fixed-width fraction. RFC3339Nano
// trims trailing zeros, which would break the lexicographic ordering the
// captured_at comparisons depend on.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// incidentRow is the storage shape of an incident. Timestamps are RFC 3339
// UTC text and the field list is one JSON document, which keeps the row
// identical under both drivers.
type incidentRow struct {
	ID           uuid.UUID `db:"id"`
	CapturedAt   string    `db:"captured_at"`
	Source       string    `db:"source"`
	Narrative    string    `db:"narrative"`
	AudioKey     string    `db:"audio_key"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Fields       string    `db:"fields"`
	Completeness float64   `db:"completeness"`
}

func toRow(inc *domain.Incident) (*incidentRow, error) {
	fields, err := json.Marshal(inc.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return &incidentRow{
		ID:           inc.ID,
		CapturedAt:   inc.CapturedAt.UTC().Format(storedTimeLayout),
		Source:       string(inc.Source),
		Narrative:    inc.Narrative,
		AudioKey:     inc.AudioKey,
		Provider:     inc.Provider,
		Model:        inc.Model,
		Fields:       string(fields),
		Completeness: inc.Completeness,
	}, nil
}

func fromRow(row *incidentRow) (*domain.Incident, error) {
	capturedAt, err := time.Parse(time.RFC3339Nano, row.CapturedAt)
	if err != nil {
		return nil, fmt.Errorf("decoding captured_at: %w", err)
	}
	var fields []domain.FieldValue
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	return &domain.Incident{
		ID:           row.ID,
		CapturedAt:   capturedAt,
		Source:       domain.IncidentSource(row.Source),
		Narrative:    row.Narrative,
		AudioKey:     row.AudioKey,
		Provider:     row.Provider,
		Model:        row.Model,
		Fields:       fields,
		Completeness: row.Completeness,
	}, nil
}

type incidentRepo struct {
	db *sqlx.DB
}

// NewIncidentRepo creates a SQL-backed IncidentRepository.
func NewIncidentRepo(db *sqlx.DB) port.IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	row, err := toRow(incident)
	if err != nil {
		return fmt.Errorf("incidentRepo.Create: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO incidents (
		id, captured_at, source, narrative, audio_key,
		provider, model, fields, completeness
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.CapturedAt, row.Source, row.Narrative, row.AudioKey,
		row.Provider, row.Model, row.Fields, row.Completeness)
	if err != nil {
		return fmt.Errorf("incidentRepo.Create: %w", err)
	}
	return nil
}

func (r *incidentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	var row incidentRow
	err := r.db.GetContext(ctx, &row,
		r.db.Rebind("SELECT * FROM incidents WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("incidentRepo.GetByID: %w", err)
	}
	return fromRow(&row)
}

func (r *incidentRepo) List(ctx context.Context, offset, limit int) ([]domain.Incident, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM incidents")
	if err != nil {
		return nil, 0, fmt.Errorf("incidentRepo.List count: %w", err)
	}

	var rows []incidentRow
	err = r.db.SelectContext(ctx, &rows,
		r.db.Rebind("SELECT * FROM incidents ORDER BY captured_at DESC LIMIT ? OFFSET ?"),
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("incidentRepo.List: %w", err)
	}

	incidents := make([]domain.Incident, 0, len(rows))
	for i := range rows {
		inc, err := fromRow(&rows[i])
		if err != nil {
			return nil, 0, fmt.Errorf("incidentRepo.List: %w", err)
		}
		incidents = append(incidents, *inc)
	}
	return incidents, total, nil
}

func (r *incidentRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Incident, error) {
	// Fixed-width RFC 3339 UTC strings order lexicographically, so the
	// comparison stays in SQL.
	var rows []incidentRow
	err := r.db.SelectContext(ctx, &rows,
		r.db.Rebind("SELECT * FROM incidents WHERE captured_at >= ? ORDER BY captured_at ASC"),
		since.UTC().Format(storedTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("incidentRepo.ListSince: %w", err)
	}

	incidents := make([]domain.Incident, 0, len(rows))
	for i := range rows {
		inc, err := fromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("incidentRepo.ListSince: %w", err)
		}
		incidents = append(incidents, *inc)
	}
	return incidents, nil
}

func (r *incidentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Rebind("DELETE FROM incidents WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("incidentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
