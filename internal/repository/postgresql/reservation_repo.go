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

type pgReservationRepository struct {
	db Querier
}

func NewPgReservationRepository(db Querier) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

const reservationColumns = `id, user_id, spot_id, event_id, start_time, end_time, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	err := row.Scan(
		&res.ID, &res.UserID, &res.SpotID, &res.EventID,
		&res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.StartTime = res.StartTime.In(time.UTC)
	res.EndTime = res.EndTime.In(time.UTC)
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	query := `INSERT INTO reservations (user_id, spot_id, event_id, start_time, end_time, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	var eventID sql.NullInt64
	if res.EventID.Valid {
		eventID = sql.NullInt64{Int64: res.EventID.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		res.UserID, res.SpotID, eventID, res.StartTime, res.EndTime, res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create: %w", err)
	}
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	res.UpdatedAt = res.UpdatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindByUserID: %w", err)
	}
	return collectReservations(rows, "FindByUserID")
}

func (r *pgReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindAll: %w", err)
	}
	return collectReservations(rows, "FindAll")
}

func collectReservations(rows *sql.Rows, method string) ([]domain.Reservation, error) {
	defer rows.Close()
	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("ReservationRepository.%s (scanning row): %w", method, err)
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.%s (rows error): %w", method, err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ReservationRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgReservationRepository) FindOverlapping(ctx context.Context, spotID int, start, end time.Time) (*domain.Reservation, error) {
	// Phép thử giao khoảng nửa mở: existing.start < new.end AND existing.end > new.start.
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE spot_id = $1 AND status IN ('active', 'pending')
	             AND start_time < $3 AND end_time > $2
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, spotID, start, end)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindOverlapping: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindLiveByUser(ctx context.Context, userID int) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE user_id = $1 AND status IN ('active', 'pending')
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindLiveByUser: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindActiveForUserAndSpot(ctx context.Context, userID, spotID int, at time.Time) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE user_id = $1 AND spot_id = $2 AND status = 'active'
	             AND start_time <= $3 AND end_time > $3
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID, spotID, at)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindActiveForUserAndSpot: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindActiveCovering(ctx context.Context, spotID int, at time.Time) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE spot_id = $1 AND status = 'active'
	             AND start_time <= $2 AND end_time > $2
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, spotID, at)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindActiveCovering: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindOtherLive(ctx context.Context, spotID, excludeID int, after time.Time) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE spot_id = $1 AND id <> $2 AND status IN ('active', 'pending')
	             AND end_time > $3
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, spotID, excludeID, after)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindOtherLive: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) UpdateStatus(ctx context.Context, id int, status domain.ReservationStatus) error {
	query := `UPDATE reservations SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.UpdateStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ReservationRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgReservationRepository) ActivateDue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `UPDATE reservations SET status = 'active', updated_at = CURRENT_TIMESTAMP
	           WHERE status = 'pending' AND start_time <= $1 AND end_time > $1
	           RETURNING ` + reservationColumns
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.ActivateDue: %w", err)
	}
	return collectReservations(rows, "ActivateDue")
}

func (r *pgReservationRepository) CompleteExpired(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `UPDATE reservations SET status = 'completed', updated_at = CURRENT_TIMESTAMP
	           WHERE status IN ('active', 'pending') AND end_time <= $1
	           RETURNING ` + reservationColumns
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.CompleteExpired: %w", err)
	}
	return collectReservations(rows, "CompleteExpired")
}
