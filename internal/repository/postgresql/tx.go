package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

// Namespace cho advisory lock theo chỗ đỗ, tránh đụng key với ứng dụng khác
// dùng chung database.
const spotLockNamespace = 7201

// NewRepositories tạo bộ repository đầy đủ trên một Querier (kết nối chính
// hoặc transaction).
func NewRepositories(db Querier) *repository.Repositories {
	return &repository.Repositories{
		Users:        NewPgUserRepository(db),
		Zones:        NewPgParkingZoneRepository(db),
		Spots:        NewPgParkingSpotRepository(db),
		Reservations: NewPgReservationRepository(db),
		Sessions:     NewPgParkingSessionRepository(db),
		Reports:      NewPgReportRepository(db),
		Events:       NewPgEventRepository(db),
	}
}

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) repository.TxRunner {
	return &txManager{db: db}
}

// WithSpotLock mở transaction, giữ pg_advisory_xact_lock theo spotID rồi chạy
// fn trên bộ repository gắn với transaction đó. Lock tự nhả khi commit hoặc
// rollback, nên hai luồng admission trên cùng chỗ đỗ không bao giờ cùng vượt
// qua bước kiểm tra xung đột.
func (m *txManager) WithSpotLock(ctx context.Context, spotID int, fn func(r *repository.Repositories) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("TxManager.WithSpotLock (begin): %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, spotLockNamespace, spotID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("TxManager.WithSpotLock (lock spot %d): %w", spotID, err)
	}

	if err := fn(NewRepositories(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("TxManager.WithSpotLock (commit): %w", err)
	}
	return nil
}
