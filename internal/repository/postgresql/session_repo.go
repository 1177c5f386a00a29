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

type pgParkingSessionRepository struct {
	db Querier
}

func NewPgParkingSessionRepository(db Querier) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

const sessionColumns = `id, user_id, spot_id, check_in_time, check_out_time, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.ParkingSession, error) {
	sess := &domain.ParkingSession{}
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.SpotID,
		&sess.CheckInTime, &sess.CheckOutTime, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sess.CheckInTime = sess.CheckInTime.In(time.UTC)
	if sess.CheckOutTime.Valid {
		sess.CheckOutTime.Time = sess.CheckOutTime.Time.In(time.UTC)
	}
	sess.CreatedAt = sess.CreatedAt.In(time.UTC)
	sess.UpdatedAt = sess.UpdatedAt.In(time.UTC)
	return sess, nil
}

func (r *pgParkingSessionRepository) Create(ctx context.Context, sess *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions (user_id, spot_id, check_in_time, created_at, updated_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, sess.UserID, sess.SpotID, sess.CheckInTime).
		Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.Create: %w", err)
	}
	sess.CreatedAt = sess.CreatedAt.In(time.UTC)
	sess.UpdatedAt = sess.UpdatedAt.In(time.UTC)
	return sess, nil
}

func (r *pgParkingSessionRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM parking_sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindByID: %w", err)
	}
	return sess, nil
}

func (r *pgParkingSessionRepository) FindOpenByUser(ctx context.Context, userID int) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions
	           WHERE user_id = $1 AND check_out_time IS NULL
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoOpenSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindOpenByUser: %w", err)
	}
	return sess, nil
}

func (r *pgParkingSessionRepository) FindOpenBySpot(ctx context.Context, spotID int) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions
	           WHERE spot_id = $1 AND check_out_time IS NULL
	           LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, spotID)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoOpenSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindOpenBySpot: %w", err)
	}
	return sess, nil
}

func (r *pgParkingSessionRepository) Update(ctx context.Context, sess *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `UPDATE parking_sessions
	           SET check_out_time = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2
	           RETURNING ` + sessionColumns
	row := r.db.QueryRowContext(ctx, query, sess.CheckOutTime, sess.ID)
	updated, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Update: %w", err)
	}
	return updated, nil
}

func (r *pgParkingSessionRepository) FindAll(ctx context.Context) ([]domain.ParkingSession, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM parking_sessions ORDER BY check_in_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ParkingSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.FindAll (scanning row): %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindAll (rows error): %w", err)
	}
	return sessions, nil
}
