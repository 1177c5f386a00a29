package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/service"
)

// ReservationScheduler chạy nền, định kỳ kích hoạt các reservation tới
// giờ và đóng các reservation hết hạn. Trạng thái chỗ đỗ được dọn theo.
type ReservationScheduler struct {
	reservations *service.ReservationService
	interval     time.Duration
}

func NewReservationScheduler(reservations *service.ReservationService, interval time.Duration) *ReservationScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReservationScheduler{
		reservations: reservations,
		interval:     interval,
	}
}

func (s *ReservationScheduler) Start(ctx context.Context) {
	log.Printf("ReservationScheduler: bắt đầu chạy, chu kỳ %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("ReservationScheduler: context cancelled, dừng.")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReservationScheduler) tick(ctx context.Context) {
	if _, err := s.reservations.ActivateDueReservations(ctx); err != nil {
		log.Printf("ReservationScheduler: lỗi khi kích hoạt reservation: %v", err)
	}
	if _, err := s.reservations.CompleteExpiredReservations(ctx); err != nil {
		log.Printf("ReservationScheduler: lỗi khi đóng reservation hết hạn: %v", err)
	}
}
