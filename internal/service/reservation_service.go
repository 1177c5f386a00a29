package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/policy"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

var ErrReservationOverlap = fmt.Errorf("%w: chỗ đỗ đã có reservation trong khoảng thời gian này", ErrConflict)
var ErrUserHasLiveReservation = fmt.Errorf("%w: người dùng đã có reservation đang hiệu lực", ErrConflict)
var ErrSpotUnderMaintenance = fmt.Errorf("%w: chỗ đỗ đang bảo trì", ErrConflict)
var ErrVipSpotRestricted = fmt.Errorf("%w: chỗ đỗ VIP chỉ dành cho người dùng VIP", ErrForbidden)
var ErrZoneNotAllowed = fmt.Errorf("%w: vai trò của người dùng không được đỗ trong zone này", ErrForbidden)
var ErrUserNotActive = fmt.Errorf("%w: tài khoản người dùng chưa active", ErrForbidden)
var ErrNotReservationOwner = fmt.Errorf("%w: chỉ chủ reservation hoặc admin được hủy", ErrForbidden)
var ErrReservationNotLive = fmt.Errorf("%w: reservation đã kết thúc", ErrInvalidState)
var ErrReservationAlreadyCancelled = fmt.Errorf("%w: reservation đã bị hủy trước đó", ErrInvalidState)
var ErrReservationInProgress = fmt.Errorf("%w: reservation đang diễn ra, không thể hủy", ErrInvalidState)

type ReservationService struct {
	repos                 *repository.Repositories
	txRunner              repository.TxRunner
	notifier              SpotNotifier
	eventWindow           policy.EventWindow
	oneReservationPerUser bool
	nowFn                 func() time.Time // Thay được trong test để đóng băng thời gian
}

func NewReservationService(
	repos *repository.Repositories,
	txRunner repository.TxRunner,
	notifier SpotNotifier,
	eventWindow policy.EventWindow,
	oneReservationPerUser bool,
) *ReservationService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &ReservationService{
		repos:                 repos,
		txRunner:              txRunner,
		notifier:              notifier,
		eventWindow:           eventWindow,
		oneReservationPerUser: oneReservationPerUser,
		nowFn:                 func() time.Time { return time.Now().UTC() },
	}
}

// CreateReservation là luồng admission chính: toàn bộ kiểm tra chính sách
// chạy trước, rồi chuỗi kiểm-tra-chồng-lấn-và-ghi chạy trong transaction
// giữ advisory lock theo spot để hai yêu cầu trên cùng chỗ đỗ được serialize.
func (s *ReservationService) CreateReservation(ctx context.Context, dto domain.CreateReservationDTO) (*domain.Reservation, error) {
	now := s.nowFn()
	start := dto.StartTime.In(time.UTC)
	end := dto.EndTime.In(time.UTC)

	user, err := s.repos.Users.FindByID(ctx, dto.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("người dùng với ID %d không tồn tại: %w", dto.UserID, err)
		}
		return nil, fmt.Errorf("lỗi khi tìm người dùng: %w", err)
	}
	if user.Status != domain.UserActive {
		return nil, ErrUserNotActive
	}

	spot, err := s.repos.Spots.FindByID(ctx, dto.SpotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("chỗ đỗ với ID %d không tồn tại: %w", dto.SpotID, err)
		}
		return nil, fmt.Errorf("lỗi khi tìm chỗ đỗ: %w", err)
	}

	var event *domain.Event
	if dto.EventID != nil {
		event, err = s.repos.Events.FindByID(ctx, *dto.EventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("sự kiện với ID %d không tồn tại: %w", *dto.EventID, err)
			}
			return nil, fmt.Errorf("lỗi khi tìm sự kiện: %w", err)
		}
	}

	zone, err := s.repos.Zones.FindByID(ctx, spot.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi tìm zone của chỗ đỗ %d: %w", spot.ID, err)
	}
	if !policy.ZoneAllowed(user.Role, zone.ZoneType) {
		return nil, ErrZoneNotAllowed
	}

	// Reservation gắn sự kiện dùng cửa sổ của sự kiện thay cho policy thời
	// gian chung (có thể bắt đầu sớm hơn now một chút khi xe đến trước giờ).
	var eventID null.Int
	if event != nil {
		if !end.After(start) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, policy.ErrEndBeforeStart)
		}
		if err := s.eventWindow.Check(event, spot.LotName, start, now); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		eventID = null.IntFrom(int64(event.ID))
	} else if err := policy.GeneralWindow(start, end, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	if spot.IsVip && user.Role != domain.RoleVip {
		return nil, ErrVipSpotRestricted
	}
	if spot.Status == domain.SpotUnderMaintenance {
		return nil, ErrSpotUnderMaintenance
	}

	// Reservation phủ thời điểm hiện tại vào thẳng trạng thái active,
	// còn lại là pending chờ scheduler kích hoạt.
	status := domain.ReservationPending
	if !start.After(now) {
		status = domain.ReservationActive
	}

	var created *domain.Reservation
	err = s.txRunner.WithSpotLock(ctx, spot.ID, func(r *repository.Repositories) error {
		if _, err := r.Reservations.FindOverlapping(ctx, spot.ID, start, end); err == nil {
			return ErrReservationOverlap
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lỗi khi kiểm tra chồng lấn: %w", err)
		}

		if _, err := r.Sessions.FindOpenBySpot(ctx, spot.ID); err == nil {
			return ErrSpotHasOpenSession
		} else if !errors.Is(err, repository.ErrNoOpenSession) {
			return fmt.Errorf("lỗi khi kiểm tra phiên mở trên chỗ đỗ: %w", err)
		}

		if s.oneReservationPerUser {
			if _, err := r.Reservations.FindLiveByUser(ctx, user.ID); err == nil {
				return ErrUserHasLiveReservation
			} else if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("lỗi khi kiểm tra reservation của người dùng: %w", err)
			}
		}

		res := &domain.Reservation{
			UserID:    user.ID,
			SpotID:    spot.ID,
			EventID:   eventID,
			StartTime: start,
			EndTime:   end,
			Status:    status,
		}
		created, err = r.Reservations.Create(ctx, res)
		if err != nil {
			return err
		}

		// Trạng thái chỗ đỗ là cache dẫn xuất; reservation mới giữ chỗ nên
		// đánh dấu occupied ngay, kể cả khi còn pending.
		return r.Spots.UpdateStatus(ctx, spot.ID, domain.SpotOccupied, "reservation")
	})
	if err != nil {
		return nil, err
	}

	log.Printf("ReservationService: đã tạo reservation %d (user=%d, spot=%d, status=%s)", created.ID, user.ID, spot.ID, created.Status)
	s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
		SpotID:    spot.ID,
		Status:    domain.SpotOccupied,
		Source:    "reservation",
		Timestamp: now,
	})
	return created, nil
}

// CancelReservation hủy một reservation còn hiệu lực. Phiên đỗ xe đang mở
// trên chỗ đỗ (nếu có) không bị động tới.
func (s *ReservationService) CancelReservation(ctx context.Context, dto domain.CancelReservationDTO) (*domain.Reservation, error) {
	now := s.nowFn()

	res, err := s.repos.Reservations.FindByID(ctx, dto.ReservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("reservation với ID %d không tồn tại: %w", dto.ReservationID, err)
		}
		return nil, fmt.Errorf("lỗi khi tìm reservation: %w", err)
	}

	if res.UserID != dto.UserID {
		actor, err := s.repos.Users.FindByID(ctx, dto.UserID)
		if err != nil {
			return nil, fmt.Errorf("lỗi khi tìm người thực hiện hủy: %w", err)
		}
		if actor.Role != domain.RoleAdmin {
			return nil, ErrNotReservationOwner
		}
	}

	switch {
	case res.Status == domain.ReservationCancelled:
		return nil, ErrReservationAlreadyCancelled
	case res.Status == domain.ReservationCompleted:
		return nil, ErrReservationNotLive
	case res.Status == domain.ReservationActive && res.StartTime.Before(now):
		// Reservation đang diễn ra chỉ kết thúc bằng check-out hoặc hết giờ.
		return nil, ErrReservationInProgress
	}

	var newSpotStatus domain.SpotStatus
	err = s.txRunner.WithSpotLock(ctx, res.SpotID, func(r *repository.Repositories) error {
		if err := r.Reservations.UpdateStatus(ctx, res.ID, domain.ReservationCancelled); err != nil {
			return fmt.Errorf("lỗi khi hủy reservation: %w", err)
		}

		status, err := deriveSpotStatus(ctx, r, res.SpotID, res.ID, now)
		if err != nil {
			return err
		}
		newSpotStatus = status
		return r.Spots.UpdateStatus(ctx, res.SpotID, status, "cancellation")
	})
	if err != nil {
		return nil, err
	}

	res.Status = domain.ReservationCancelled
	log.Printf("ReservationService: đã hủy reservation %d (spot %d -> %s)", res.ID, res.SpotID, newSpotStatus)
	s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
		SpotID:    res.SpotID,
		Status:    newSpotStatus,
		Source:    "cancellation",
		Timestamp: now,
	})
	return res, nil
}

// deriveSpotStatus tính lại trạng thái chỗ đỗ từ nguồn sự thật: phiên mở
// và các reservation còn hiệu lực (bỏ qua excludeResID vừa bị hủy/kết thúc).
// Chỗ đỗ đang bảo trì giữ nguyên trạng thái đó.
func deriveSpotStatus(ctx context.Context, r *repository.Repositories, spotID, excludeResID int, now time.Time) (domain.SpotStatus, error) {
	spot, err := r.Spots.FindByID(ctx, spotID)
	if err != nil {
		return "", fmt.Errorf("lỗi khi tìm chỗ đỗ %d: %w", spotID, err)
	}
	if spot.Status == domain.SpotUnderMaintenance {
		return domain.SpotUnderMaintenance, nil
	}

	if _, err := r.Sessions.FindOpenBySpot(ctx, spotID); err == nil {
		return domain.SpotOccupied, nil
	} else if !errors.Is(err, repository.ErrNoOpenSession) {
		return "", fmt.Errorf("lỗi khi kiểm tra phiên mở trên chỗ đỗ %d: %w", spotID, err)
	}

	// Reservation active phủ thời điểm hiện tại giữ chỗ ở trạng thái reserved
	// (xe chưa vào hoặc vừa ra); các reservation còn hiệu lực khác giữ occupied
	// theo cách biểu diễn đơn giản của model.
	if _, err := r.Reservations.FindActiveCovering(ctx, spotID, now); err == nil {
		return domain.SpotReserved, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lỗi khi kiểm tra reservation phủ thời điểm hiện tại trên chỗ đỗ %d: %w", spotID, err)
	}

	if _, err := r.Reservations.FindOtherLive(ctx, spotID, excludeResID, now); err == nil {
		return domain.SpotOccupied, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("lỗi khi kiểm tra reservation còn lại trên chỗ đỗ %d: %w", spotID, err)
	}

	return domain.SpotEmpty, nil
}

func (s *ReservationService) GetReservationByID(ctx context.Context, id int) (*domain.Reservation, error) {
	return s.repos.Reservations.FindByID(ctx, id)
}

func (s *ReservationService) GetReservationsByUser(ctx context.Context, userID int) ([]domain.Reservation, error) {
	return s.repos.Reservations.FindByUserID(ctx, userID)
}

func (s *ReservationService) GetAllReservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.repos.Reservations.FindAll(ctx)
}

// ActivateDueReservations chuyển các reservation pending đã tới giờ sang
// active. Gọi định kỳ từ scheduler.
func (s *ReservationService) ActivateDueReservations(ctx context.Context) (int, error) {
	now := s.nowFn()
	activated, err := s.repos.Reservations.ActivateDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(activated) > 0 {
		log.Printf("ReservationService: đã kích hoạt %d reservation tới giờ", len(activated))
	}
	return len(activated), nil
}

// CompleteExpiredReservations đóng các reservation đã quá end_time và trả
// chỗ đỗ về empty nếu không còn gì giữ chỗ.
func (s *ReservationService) CompleteExpiredReservations(ctx context.Context) (int, error) {
	now := s.nowFn()
	completed, err := s.repos.Reservations.CompleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, res := range completed {
		res := res
		var newStatus domain.SpotStatus
		err := s.txRunner.WithSpotLock(ctx, res.SpotID, func(r *repository.Repositories) error {
			status, err := deriveSpotStatus(ctx, r, res.SpotID, res.ID, now)
			if err != nil {
				return err
			}
			newStatus = status
			return r.Spots.UpdateStatus(ctx, res.SpotID, status, "scheduler")
		})
		if err != nil {
			log.Printf("ReservationService: lỗi khi cập nhật chỗ đỗ %d sau khi reservation %d hết hạn: %v", res.SpotID, res.ID, err)
			continue
		}
		s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
			SpotID:    res.SpotID,
			Status:    newStatus,
			Source:    "scheduler",
			Timestamp: now,
		})
	}

	if len(completed) > 0 {
		log.Printf("ReservationService: đã đóng %d reservation hết hạn", len(completed))
	}
	return len(completed), nil
}
