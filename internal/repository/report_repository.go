package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/velihant/financehub-api/internal/models"
)

// ReportRepository persists report schedules. Every operation is scoped to
// the owning user; a foreign id is indistinguishable from a missing one.
type ReportRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduledReport, error)
	Create(ctx context.Context, params CreateReportParams) (models.ScheduledReport, error)
	SetActive(ctx context.Context, ownerID, id string, active bool) (models.ScheduledReport, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type CreateReportParams struct {
	OwnerID    string
	Name       string
	Frequency  models.ReportFrequency
	Email      string
	ReportType string
	NextRun    time.Time
}

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = "id, owner_id, name, frequency, email, report_type, active, next_run, created_at"

func (r *reportRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduledReport, error) {
	const query = `
		SELECT ` + reportColumns + `
		FROM app.scheduled_reports
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(ownerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.ScheduledReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) Create(ctx context.Context, params CreateReportParams) (models.ScheduledReport, error) {
	const query = `
		INSERT INTO app.scheduled_reports (owner_id, name, frequency, email, report_type, next_run)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + reportColumns

	row := r.db.QueryRowContext(ctx, query,
		strings.TrimSpace(params.OwnerID), strings.TrimSpace(params.Name), params.Frequency,
		strings.TrimSpace(params.Email), params.ReportType, params.NextRun)
	return scanReport(row)
}

func (r *reportRepository) SetActive(ctx context.Context, ownerID, id string, active bool) (models.ScheduledReport, error) {
	const query = `
		UPDATE app.scheduled_reports
		SET active = $1
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + reportColumns

	row := r.db.QueryRowContext(ctx, query, active, strings.TrimSpace(id), strings.TrimSpace(ownerID))
	return scanReport(row)
}

func (r *reportRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `
		DELETE FROM app.scheduled_reports
		WHERE id = $1 AND owner_id = $2
		RETURNING id
	`
	var deleted string
	return r.db.QueryRowContext(ctx, query, strings.TrimSpace(id), strings.TrimSpace(ownerID)).Scan(&deleted)
}

func scanReport(scanner interface {
	Scan(dest ...interface{}) error
}) (models.ScheduledReport, error) {
	var report models.ScheduledReport
	if err := scanner.Scan(
		&report.ID,
		&report.OwnerID,
		&report.Name,
		&report.Frequency,
		&report.Email,
		&report.ReportType,
		&report.Active,
		&report.NextRun,
		&report.CreatedAt,
	); err != nil {
		return models.ScheduledReport{}, err
	}
	return report, nil
}
