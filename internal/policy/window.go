package policy

import (
	"errors"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

var (
	ErrStartInPast      = errors.New("thời gian bắt đầu không được ở trong quá khứ")
	ErrEndBeforeStart   = errors.New("thời gian kết thúc phải sau thời gian bắt đầu")
	ErrForbiddenLot     = errors.New("bãi đỗ này không áp dụng cho sự kiện đã chọn")
	ErrOutsideWindow    = errors.New("reservation cho sự kiện chỉ được tạo trong khoảng cho phép trước giờ bắt đầu")
	ErrEventWithoutTime = errors.New("sự kiện không có giờ bắt đầu")
)

// Overlaps kiểm tra hai khoảng nửa mở [aStart, aEnd) và [bStart, bEnd) có
// giao nhau thật sự không. Hai khoảng chạm biên (aEnd == bStart) không tính
// là chồng lấn.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// GeneralWindow là policy thời gian cho reservation không gắn sự kiện:
// không bắt đầu trong quá khứ, kết thúc phải sau bắt đầu.
func GeneralWindow(start, end, now time.Time) error {
	if start.Before(now) {
		return ErrStartInPast
	}
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// EventWindow là policy thời gian cho reservation gắn sự kiện. Quy tắc
// chuẩn: chỉ được tạo từ Lead (mặc định 30 phút) trước giờ sự kiện, và
// reservation phải bắt đầu không muộn hơn giờ sự kiện. Một giai đoạn của
// hệ thống đã bỏ hẳn kiểm tra này, nên Enforced để tắt được thay vì xóa.
type EventWindow struct {
	Lead     time.Duration
	Enforced bool
}

// Check đánh giá reservation bắt đầu lúc resStart cho sự kiện event tại lot
// lotName, với now là thời điểm yêu cầu được gửi. Kiểm tra allow-list lot
// luôn được áp dụng; kiểm tra cửa sổ thời gian chỉ khi Enforced.
func (w EventWindow) Check(event *domain.Event, lotName string, resStart, now time.Time) error {
	if len(event.AllowedParkingLots) > 0 {
		allowed := false
		for _, lot := range event.AllowedParkingLots {
			if lot == lotName {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrForbiddenLot
		}
	}

	if !w.Enforced {
		return nil
	}
	if !event.StartTime.Valid {
		return ErrEventWithoutTime
	}

	eventStart := event.StartTime.Time
	if now.Before(eventStart.Add(-w.Lead)) || resStart.After(eventStart) {
		return ErrOutsideWindow
	}
	return nil
}
