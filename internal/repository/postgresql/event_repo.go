package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

type pgEventRepository struct {
	db Querier
}

func NewPgEventRepository(db Querier) repository.EventRepository {
	return &pgEventRepository{db: db}
}

const eventColumns = `id, name, description, date, start_time, end_time, event_location, latitude, longitude, allowed_parking_lots, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	ev := &domain.Event{}
	var lots pq.StringArray
	err := row.Scan(
		&ev.ID, &ev.Name, &ev.Description, &ev.Date, &ev.StartTime, &ev.EndTime,
		&ev.EventLocation, &ev.Latitude, &ev.Longitude, &lots,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ev.AllowedParkingLots = []string(lots)
	ev.Date = ev.Date.In(time.UTC)
	if ev.StartTime.Valid {
		ev.StartTime.Time = ev.StartTime.Time.In(time.UTC)
	}
	if ev.EndTime.Valid {
		ev.EndTime.Time = ev.EndTime.Time.In(time.UTC)
	}
	ev.CreatedAt = ev.CreatedAt.In(time.UTC)
	ev.UpdatedAt = ev.UpdatedAt.In(time.UTC)
	return ev, nil
}

func (r *pgEventRepository) Create(ctx context.Context, ev *domain.Event) (*domain.Event, error) {
	query := `INSERT INTO events (name, description, date, start_time, end_time, event_location, latitude, longitude, allowed_parking_lots, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		ev.Name, ev.Description, ev.Date, ev.StartTime, ev.EndTime,
		ev.EventLocation, ev.Latitude, ev.Longitude, pq.StringArray(ev.AllowedParkingLots),
	).Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("EventRepository.Create: %w", err)
	}
	ev.CreatedAt = ev.CreatedAt.In(time.UTC)
	ev.UpdatedAt = ev.UpdatedAt.In(time.UTC)
	return ev, nil
}

func (r *pgEventRepository) FindByID(ctx context.Context, id int) (*domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("EventRepository.FindByID: %w", err)
	}
	return ev, nil
}

func (r *pgEventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date DESC, start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("EventRepository.FindAll: %w", err)
	}
	return collectEvents(rows, "FindAll")
}

func (r *pgEventRepository) FindByDate(ctx context.Context, day time.Time) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE date::date = $1::date ORDER BY start_time`, day)
	if err != nil {
		return nil, fmt.Errorf("EventRepository.FindByDate: %w", err)
	}
	return collectEvents(rows, "FindByDate")
}

func collectEvents(rows *sql.Rows, method string) ([]domain.Event, error) {
	defer rows.Close()
	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("EventRepository.%s (scanning row): %w", method, err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EventRepository.%s (rows error): %w", method, err)
	}
	return events, nil
}

func (r *pgEventRepository) CountByDate(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE date::date = $1::date`, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("EventRepository.CountByDate: %w", err)
	}
	return count, nil
}

func (r *pgEventRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("EventRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("EventRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
