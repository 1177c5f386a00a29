package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/policy"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

var ErrUnknownLicensePlate = fmt.Errorf("%w: biển số không thuộc người dùng nào", ErrForbidden)
var ErrReservedSpotWalkIn = fmt.Errorf("%w: chỗ đỗ loại reserved yêu cầu reservation trước", ErrForbidden)
var ErrUserHasOpenSession = fmt.Errorf("%w: người dùng đang có phiên đỗ xe mở", ErrConflict)
var ErrSpotHasOpenSession = fmt.Errorf("%w: chỗ đỗ đang có xe khác", ErrConflict)
var ErrSpotReservedByOther = fmt.Errorf("%w: chỗ đỗ đang được giữ bởi reservation của người khác", ErrConflict)
var ErrSpotNotEmpty = fmt.Errorf("%w: chỗ đỗ không ở trạng thái trống", ErrConflict)
var ErrSessionAlreadyClosed = fmt.Errorf("%w: phiên đỗ xe đã đóng", ErrInvalidState)

type SessionService struct {
	repos     *repository.Repositories
	txRunner  repository.TxRunner
	notifier  SpotNotifier
	publisher ReportPublisher
	nowFn     func() time.Time
}

func NewSessionService(
	repos *repository.Repositories,
	txRunner repository.TxRunner,
	notifier SpotNotifier,
	publisher ReportPublisher,
) *SessionService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &SessionService{
		repos:     repos,
		txRunner:  txRunner,
		notifier:  notifier,
		publisher: publisher,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

// CheckIn xử lý xe vào chỗ đỗ theo biển số. Biển số lạ hoặc sai zone tạo
// report như side effect rồi mới từ chối; report không bao giờ được đọc
// lại trong logic admission.
func (s *SessionService) CheckIn(ctx context.Context, dto domain.CheckInDTO) (*domain.ParkingSession, error) {
	now := s.nowFn()
	plate := strings.ToUpper(strings.TrimSpace(dto.LicensePlate))

	user, err := s.repos.Users.FindByLicensePlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.fileReport(ctx, &domain.Report{
				LicensePlate: null.StringFrom(plate),
				SpotID:       null.IntFrom(int64(dto.SpotID)),
				ReportType:   domain.ReportUnauthorizedParking,
				Description:  null.StringFrom(fmt.Sprintf("Biển số %s không đăng ký với người dùng nào, check-in tại chỗ đỗ %d", plate, dto.SpotID)),
				Timestamp:    now,
				Status:       domain.ReportPending,
			})
			return nil, ErrUnknownLicensePlate
		}
		return nil, fmt.Errorf("lỗi khi tìm người dùng theo biển số: %w", err)
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
	zone, err := s.repos.Zones.FindByID(ctx, spot.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi tìm zone của chỗ đỗ %d: %w", spot.ID, err)
	}

	// Zone policy chạy trước khi tra reservation: vi phạm tạo report rồi từ
	// chối. Người đã đặt chỗ luôn qua được vì cùng policy đã chạy lúc đặt.
	if !policy.ZoneAllowed(user.Role, zone.ZoneType) {
		s.fileReport(ctx, &domain.Report{
			UserID:       null.IntFrom(int64(user.ID)),
			LicensePlate: null.StringFrom(plate),
			SpotID:       null.IntFrom(int64(spot.ID)),
			ZoneID:       null.IntFrom(int64(zone.ID)),
			ReportType:   domain.ReportWrongZoneEntry,
			Description:  null.StringFrom(fmt.Sprintf("Người dùng %d (vai trò %s) check-in vào zone %s loại %s", user.ID, user.Role, zone.Name, zone.ZoneType)),
			Timestamp:    now,
			Status:       domain.ReportPending,
		})
		return nil, ErrZoneNotAllowed
	}

	var session *domain.ParkingSession
	err = s.txRunner.WithSpotLock(ctx, spot.ID, func(r *repository.Repositories) error {
		hasReservation := true
		if _, err := r.Reservations.FindActiveForUserAndSpot(ctx, user.ID, spot.ID, now); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("lỗi khi kiểm tra reservation của người dùng: %w", err)
			}
			hasReservation = false
		}

		// Chỗ đỗ loại reserved không nhận walk-in (trừ admin).
		if !hasReservation && spot.SpotType == domain.SpotReservedType && user.Role != domain.RoleAdmin {
			return ErrReservedSpotWalkIn
		}

		if _, err := r.Sessions.FindOpenByUser(ctx, user.ID); err == nil {
			return ErrUserHasOpenSession
		} else if !errors.Is(err, repository.ErrNoOpenSession) {
			return fmt.Errorf("lỗi khi kiểm tra phiên mở của người dùng: %w", err)
		}

		if _, err := r.Sessions.FindOpenBySpot(ctx, spot.ID); err == nil {
			return ErrSpotHasOpenSession
		} else if !errors.Is(err, repository.ErrNoOpenSession) {
			return fmt.Errorf("lỗi khi kiểm tra phiên mở trên chỗ đỗ: %w", err)
		}

		if !hasReservation {
			// Người khác đang giữ chỗ thì từ chối walk-in.
			if _, err := r.Reservations.FindActiveCovering(ctx, spot.ID, now); err == nil {
				return ErrSpotReservedByOther
			} else if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("lỗi khi kiểm tra reservation trên chỗ đỗ: %w", err)
			}
			// Reservation của chính user đã đánh dấu chỗ occupied/reserved từ
			// lúc đặt, nên kiểm tra trạng thái trống chỉ áp dụng cho walk-in.
			if spot.Status != domain.SpotEmpty {
				return ErrSpotNotEmpty
			}
		}

		return s.openSession(ctx, r, user, spot, now, &session)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("SessionService: check-in thành công (user=%d, spot=%d, session=%d)", user.ID, spot.ID, session.ID)
	s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
		SpotID:    spot.ID,
		Status:    domain.SpotOccupied,
		Source:    "check_in",
		Timestamp: now,
	})
	return session, nil
}

func (s *SessionService) openSession(
	ctx context.Context,
	r *repository.Repositories,
	user *domain.User,
	spot *domain.ParkingSpot,
	now time.Time,
	out **domain.ParkingSession,
) error {
	created, err := r.Sessions.Create(ctx, &domain.ParkingSession{
		UserID:      user.ID,
		SpotID:      spot.ID,
		CheckInTime: now,
	})
	if err != nil {
		return err
	}
	if err := r.Spots.UpdateStatus(ctx, spot.ID, domain.SpotOccupied, "check_in"); err != nil {
		return err
	}
	*out = created
	return nil
}

// CheckOut đóng phiên đỗ xe và tính lại trạng thái chỗ đỗ: reservation
// active phủ thời điểm hiện tại trả chỗ về reserved, không còn gì giữ chỗ
// thì về empty.
func (s *SessionService) CheckOut(ctx context.Context, dto domain.CheckOutDTO) (*domain.ParkingSession, error) {
	now := s.nowFn()

	sess, err := s.repos.Sessions.FindByID(ctx, dto.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("phiên đỗ xe với ID %d không tồn tại: %w", dto.SessionID, err)
		}
		return nil, fmt.Errorf("lỗi khi tìm phiên đỗ xe: %w", err)
	}
	if !sess.Open() {
		return nil, ErrSessionAlreadyClosed
	}

	var updated *domain.ParkingSession
	var newStatus domain.SpotStatus
	err = s.txRunner.WithSpotLock(ctx, sess.SpotID, func(r *repository.Repositories) error {
		sess.CheckOutTime = null.TimeFrom(now)
		updated, err = r.Sessions.Update(ctx, sess)
		if err != nil {
			return err
		}

		status, err := deriveSpotStatus(ctx, r, sess.SpotID, 0, now)
		if err != nil {
			return err
		}
		newStatus = status
		return r.Spots.UpdateStatus(ctx, sess.SpotID, status, "check_out")
	})
	if err != nil {
		return nil, err
	}

	log.Printf("SessionService: check-out thành công (session=%d, spot %d -> %s)", updated.ID, updated.SpotID, newStatus)
	s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
		SpotID:    updated.SpotID,
		Status:    newStatus,
		Source:    "check_out",
		Timestamp: now,
	})
	return updated, nil
}

func (s *SessionService) GetSessionByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	return s.repos.Sessions.FindByID(ctx, id)
}

func (s *SessionService) GetAllSessions(ctx context.Context) ([]domain.ParkingSession, error) {
	return s.repos.Sessions.FindAll(ctx)
}

// fileReport ghi report vào DB và đẩy lên queue. Lỗi chỉ log vì report là
// side effect, không được làm hỏng luồng admission.
func (s *SessionService) fileReport(ctx context.Context, report *domain.Report) {
	created, err := s.repos.Reports.Create(ctx, report)
	if err != nil {
		log.Printf("SessionService: lỗi khi ghi report %s: %v", report.ReportType, err)
		return
	}
	s.publisher.PublishReport(ctx, created)
}
