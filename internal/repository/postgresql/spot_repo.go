package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"

	"github.com/lib/pq"
)

type pgParkingSpotRepository struct {
	db Querier
}

func NewPgParkingSpotRepository(db Querier) repository.ParkingSpotRepository {
	return &pgParkingSpotRepository{db: db}
}

const spotColumns = `id, spot_number, lot_name, is_vip, spot_type, status, zone_id, created_at, updated_at`

func scanSpot(row interface{ Scan(...any) error }) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	err := row.Scan(
		&spot.ID, &spot.SpotNumber, &spot.LotName, &spot.IsVip, &spot.SpotType,
		&spot.Status, &spot.ZoneID, &spot.CreatedAt, &spot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	query := `INSERT INTO parking_spots (spot_number, lot_name, is_vip, spot_type, status, zone_id, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		spot.SpotNumber, spot.LotName, spot.IsVip, spot.SpotType, spot.Status, spot.ZoneID,
	).Scan(&spot.ID, &spot.CreatedAt, &spot.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "parking_spots_zone_id_spot_number_key" {
				return nil, fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong zone %d", repository.ErrDuplicateEntry, spot.SpotNumber, spot.ZoneID)
			}
		}
		return nil, fmt.Errorf("ParkingSpotRepository.Create: %w", err)
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM parking_spots WHERE id = $1`, id)
	spot, err := scanSpot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindByID: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByZoneID(ctx context.Context, zoneID int) ([]domain.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+spotColumns+` FROM parking_spots WHERE zone_id = $1 ORDER BY spot_number`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByZoneID: %w", err)
	}
	return collectSpots(rows, "FindByZoneID")
}

func (r *pgParkingSpotRepository) FindAll(ctx context.Context) ([]domain.ParkingSpot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+spotColumns+` FROM parking_spots ORDER BY lot_name, spot_number`)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindAll: %w", err)
	}
	return collectSpots(rows, "FindAll")
}

func collectSpots(rows *sql.Rows, method string) ([]domain.ParkingSpot, error) {
	defer rows.Close()
	var spots []domain.ParkingSpot
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.%s (scanning row): %w", method, err)
		}
		spots = append(spots, *spot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.%s (rows error): %w", method, err)
	}
	return spots, nil
}

func (r *pgParkingSpotRepository) Update(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error) {
	query := `UPDATE parking_spots
	           SET spot_number = $1, lot_name = $2, is_vip = $3, spot_type = $4, status = $5, zone_id = $6, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $7
	           RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		spot.SpotNumber, spot.LotName, spot.IsVip, spot.SpotType, spot.Status, spot.ZoneID, spot.ID,
	).Scan(&spot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong zone %d", repository.ErrDuplicateEntry, spot.SpotNumber, spot.ZoneID)
		}
		return nil, fmt.Errorf("ParkingSpotRepository.Update: %w", err)
	}
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	return spot, nil
}

func (r *pgParkingSpotRepository) UpdateStatus(ctx context.Context, id int, status domain.SpotStatus, source string) error {
	query := `UPDATE parking_spots SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus (source %s): %w", source, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSpotRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// availableSpotFilter loại các chỗ đỗ có phiên đang mở, có reservation
// active/pending phủ thời điểm $1, hoặc status occupied/under_maintenance.
const availableSpotFilter = `
	   id NOT IN (SELECT spot_id FROM parking_sessions WHERE check_out_time IS NULL)
	   AND id NOT IN (SELECT spot_id FROM reservations
	                   WHERE status IN ('active', 'pending')
	                     AND start_time <= $1 AND end_time > $1)
	   AND status NOT IN ('occupied', 'under_maintenance')`

func (r *pgParkingSpotRepository) FindAvailable(ctx context.Context, at time.Time) ([]domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE` + availableSpotFilter + ` ORDER BY lot_name, spot_number`
	rows, err := r.db.QueryContext(ctx, query, at)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindAvailable: %w", err)
	}
	return collectSpots(rows, "FindAvailable")
}

func (r *pgParkingSpotRepository) CountAvailable(ctx context.Context, at time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spots WHERE` + availableSpotFilter
	if err := r.db.QueryRowContext(ctx, query, at).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingSpotRepository.CountAvailable: %w", err)
	}
	return count, nil
}
