package repository

import (
	"context"
	"errors"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")
var ErrNoOpenSession = errors.New("không tìm thấy phiên đỗ xe đang mở cho thông tin cung cấp")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByLicensePlate(ctx context.Context, plate string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

type ParkingZoneRepository interface {
	Create(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingZone, error)
	FindByName(ctx context.Context, name string) (*domain.ParkingZone, error)
	FindAll(ctx context.Context) ([]domain.ParkingZone, error)
	Update(ctx context.Context, zone *domain.ParkingZone) (*domain.ParkingZone, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

type ParkingSpotRepository interface {
	Create(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error)
	FindByZoneID(ctx context.Context, zoneID int) ([]domain.ParkingSpot, error)
	FindAll(ctx context.Context) ([]domain.ParkingSpot, error)
	Update(ctx context.Context, spot *domain.ParkingSpot) (*domain.ParkingSpot, error)
	UpdateStatus(ctx context.Context, id int, status domain.SpotStatus, source string) error
	Delete(ctx context.Context, id int) error
	// FindAvailable trả về các chỗ đỗ trống tại thời điểm at: không có phiên
	// mở, không có reservation active/pending phủ at, và status không phải
	// occupied/under_maintenance. Đây là snapshot read, không cần lock.
	FindAvailable(ctx context.Context, at time.Time) ([]domain.ParkingSpot, error)
	CountAvailable(ctx context.Context, at time.Time) (int, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int) (*domain.Reservation, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	Count(ctx context.Context) (int, error)
	// FindOverlapping tìm một reservation active/pending trên spot có khoảng
	// [start_time, end_time) giao thật sự với [start, end). ErrNotFound nếu không có.
	FindOverlapping(ctx context.Context, spotID int, start, end time.Time) (*domain.Reservation, error)
	// FindLiveByUser tìm một reservation active/pending bất kỳ của user
	// (phục vụ policy flag một-reservation-mỗi-user). ErrNotFound nếu không có.
	FindLiveByUser(ctx context.Context, userID int) (*domain.Reservation, error)
	// FindActiveForUserAndSpot tìm reservation active của đúng user+spot phủ thời điểm at.
	FindActiveForUserAndSpot(ctx context.Context, userID, spotID int, at time.Time) (*domain.Reservation, error)
	// FindActiveCovering tìm reservation active bất kỳ trên spot phủ thời điểm at.
	FindActiveCovering(ctx context.Context, spotID int, at time.Time) (*domain.Reservation, error)
	// FindOtherLive tìm reservation active/pending trên spot, khác excludeID,
	// có end_time sau thời điểm after. Dùng khi hủy để biết chỗ đỗ còn bị giữ không.
	FindOtherLive(ctx context.Context, spotID, excludeID int, after time.Time) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int, status domain.ReservationStatus) error
	// ActivateDue chuyển pending -> active cho các reservation đã tới giờ
	// (start_time <= now < end_time) và trả về danh sách vừa chuyển.
	ActivateDue(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	// CompleteExpired chuyển active/pending -> completed cho các reservation
	// đã hết giờ (end_time <= now) và trả về danh sách vừa chuyển.
	CompleteExpired(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

type ParkingSessionRepository interface {
	Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSession, error)
	FindOpenByUser(ctx context.Context, userID int) (*domain.ParkingSession, error)
	FindOpenBySpot(ctx context.Context, spotID int) (*domain.ParkingSession, error)
	Update(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindAll(ctx context.Context) ([]domain.ParkingSession, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) (*domain.Report, error)
	FindAll(ctx context.Context) ([]domain.Report, error)
	FindByID(ctx context.Context, id int) (*domain.Report, error)
	Update(ctx context.Context, report *domain.Report) (*domain.Report, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	FindByID(ctx context.Context, id int) (*domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	FindByDate(ctx context.Context, day time.Time) ([]domain.Event, error)
	CountByDate(ctx context.Context, day time.Time) (int, error)
	Delete(ctx context.Context, id int) error
}

// Repositories gom toàn bộ repository cho một nguồn dữ liệu (kết nối chính
// hoặc một transaction đang mở).
type Repositories struct {
	Users        UserRepository
	Zones        ParkingZoneRepository
	Spots        ParkingSpotRepository
	Reservations ReservationRepository
	Sessions     ParkingSessionRepository
	Reports      ReportRepository
	Events       EventRepository
}

// TxRunner chạy fn trong một transaction đã giữ advisory lock theo spot.
// Hai luồng admission trên cùng một chỗ đỗ vì vậy được serialize: chuỗi
// kiểm-tra-rồi-ghi của luồng sau chỉ chạy khi luồng trước đã commit hoặc
// rollback. fn trả lỗi thì toàn bộ transaction rollback.
type TxRunner interface {
	WithSpotLock(ctx context.Context, spotID int, fn func(r *Repositories) error) error
}
