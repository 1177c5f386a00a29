package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

type pgReportRepository struct {
	db Querier
}

func NewPgReportRepository(db Querier) repository.ReportRepository {
	return &pgReportRepository{db: db}
}

const reportColumns = `id, user_id, license_plate, spot_id, zone_id, report_type, description, timestamp, status`

func scanReport(row interface{ Scan(...any) error }) (*domain.Report, error) {
	rep := &domain.Report{}
	err := row.Scan(
		&rep.ID, &rep.UserID, &rep.LicensePlate, &rep.SpotID, &rep.ZoneID,
		&rep.ReportType, &rep.Description, &rep.Timestamp, &rep.Status,
	)
	if err != nil {
		return nil, err
	}
	rep.Timestamp = rep.Timestamp.In(time.UTC)
	return rep, nil
}

func (r *pgReportRepository) Create(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	query := `INSERT INTO reports (user_id, license_plate, spot_id, zone_id, report_type, description, timestamp, status)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rep.UserID, rep.LicensePlate, rep.SpotID, rep.ZoneID,
		rep.ReportType, rep.Description, rep.Timestamp, rep.Status,
	).Scan(&rep.ID)
	if err != nil {
		return nil, fmt.Errorf("ReportRepository.Create: %w", err)
	}
	return rep, nil
}

func (r *pgReportRepository) FindByID(ctx context.Context, id int) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReportRepository.FindByID: %w", err)
	}
	return rep, nil
}

func (r *pgReportRepository) FindAll(ctx context.Context) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("ReportRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("ReportRepository.FindAll (scanning row): %w", err)
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReportRepository.FindAll (rows error): %w", err)
	}
	return reports, nil
}

func (r *pgReportRepository) Update(ctx context.Context, rep *domain.Report) (*domain.Report, error) {
	query := `UPDATE reports
	           SET status = $1, description = $2
	           WHERE id = $3
	           RETURNING ` + reportColumns
	row := r.db.QueryRowContext(ctx, query, rep.Status, rep.Description, rep.ID)
	updated, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReportRepository.Update: %w", err)
	}
	return updated, nil
}
