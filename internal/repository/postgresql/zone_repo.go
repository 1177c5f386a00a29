package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"

	"github.com/lib/pq"
)

type pgParkingZoneRepository struct {
	db Querier
}

func NewPgParkingZoneRepository(db Querier) repository.ParkingZoneRepository {
	return &pgParkingZoneRepository{db: db}
}

func (r *pgParkingZoneRepository) Create(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error) {
	query := `INSERT INTO parking_zones (name, zone_type) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, zone.Name, zone.ZoneType).Scan(&zone.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: zone '%s' đã tồn tại", repository.ErrDuplicateEntry, zone.Name)
		}
		return nil, fmt.Errorf("ParkingZoneRepository.Create: %w", err)
	}
	return zone, nil
}

func (r *pgParkingZoneRepository) FindByID(ctx context.Context, id int) (*domain.ParkingZone, error) {
	zone := &domain.ParkingZone{}
	query := `SELECT id, name, zone_type FROM parking_zones WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&zone.ID, &zone.Name, &zone.ZoneType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingZoneRepository.FindByID: %w", err)
	}
	return zone, nil
}

func (r *pgParkingZoneRepository) FindByName(ctx context.Context, name string) (*domain.ParkingZone, error) {
	zone := &domain.ParkingZone{}
	query := `SELECT id, name, zone_type FROM parking_zones WHERE name = $1`
	err := r.db.QueryRowContext(ctx, query, name).Scan(&zone.ID, &zone.Name, &zone.ZoneType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingZoneRepository.FindByName: %w", err)
	}
	return zone, nil
}

func (r *pgParkingZoneRepository) FindAll(ctx context.Context) ([]domain.ParkingZone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, zone_type FROM parking_zones ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ParkingZoneRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var zones []domain.ParkingZone
	for rows.Next() {
		var zone domain.ParkingZone
		if err := rows.Scan(&zone.ID, &zone.Name, &zone.ZoneType); err != nil {
			return nil, fmt.Errorf("ParkingZoneRepository.FindAll (scanning row): %w", err)
		}
		zones = append(zones, zone)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingZoneRepository.FindAll (rows error): %w", err)
	}
	return zones, nil
}

func (r *pgParkingZoneRepository) Update(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error) {
	query := `UPDATE parking_zones SET name = $1, zone_type = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, zone.Name, zone.ZoneType, zone.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: zone '%s' đã tồn tại", repository.ErrDuplicateEntry, zone.Name)
		}
		return nil, fmt.Errorf("ParkingZoneRepository.Update: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ParkingZoneRepository.Update (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return zone, nil
}

func (r *pgParkingZoneRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingZoneRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingZoneRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingZoneRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_zones`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingZoneRepository.Count: %w", err)
	}
	return count, nil
}
