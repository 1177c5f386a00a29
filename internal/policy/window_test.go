package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"

	"gopkg.in/guregu/null.v4"
)

func ts(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"giao một phần", ts(10, 0), ts(11, 0), ts(10, 30), ts(11, 30), true},
		{"bao trùm", ts(10, 0), ts(12, 0), ts(10, 30), ts(11, 0), true},
		{"trùng khít", ts(10, 0), ts(11, 0), ts(10, 0), ts(11, 0), true},
		{"chạm biên cuối", ts(10, 0), ts(11, 0), ts(11, 0), ts(12, 0), false},
		{"chạm biên đầu", ts(11, 0), ts(12, 0), ts(10, 0), ts(11, 0), false},
		{"tách rời", ts(8, 0), ts(9, 0), ts(11, 0), ts(12, 0), false},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
			t.Errorf("%s: Overlaps = %t, muốn %t", tt.name, got, tt.want)
		}
	}
}

func TestGeneralWindow(t *testing.T) {
	now := ts(9, 0)

	if err := GeneralWindow(ts(10, 0), ts(11, 0), now); err != nil {
		t.Errorf("khoảng hợp lệ bị từ chối: %v", err)
	}
	if err := GeneralWindow(ts(8, 0), ts(11, 0), now); !errors.Is(err, ErrStartInPast) {
		t.Errorf("bắt đầu trong quá khứ phải trả ErrStartInPast, nhận: %v", err)
	}
	if err := GeneralWindow(ts(10, 0), ts(10, 0), now); !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("end == start phải trả ErrEndBeforeStart, nhận: %v", err)
	}
	if err := GeneralWindow(ts(10, 0), ts(9, 30), now); !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("end trước start phải trả ErrEndBeforeStart, nhận: %v", err)
	}
}

func eventAt(start time.Time, lots ...string) *domain.Event {
	return &domain.Event{
		Name:               "Open Day",
		StartTime:          null.TimeFrom(start),
		AllowedParkingLots: lots,
	}
}

func TestEventWindowLotAllowList(t *testing.T) {
	w := EventWindow{Lead: 30 * time.Minute, Enforced: true}
	event := eventAt(ts(14, 0), "Lot A")

	if err := w.Check(event, "Lot B", ts(13, 40), ts(13, 25)); !errors.Is(err, ErrForbiddenLot) {
		t.Errorf("lot ngoài allow-list phải trả ErrForbiddenLot, nhận: %v", err)
	}
	// Allow-list rỗng nghĩa là không giới hạn lot.
	open := eventAt(ts(14, 0))
	if err := w.Check(open, "Lot B", ts(13, 40), ts(13, 35)); err != nil {
		t.Errorf("sự kiện không giới hạn lot bị từ chối: %v", err)
	}
}

func TestEventWindowTiming(t *testing.T) {
	w := EventWindow{Lead: 30 * time.Minute, Enforced: true}
	event := eventAt(ts(14, 0), "Lot A")

	// Gửi lúc 13:35 cho reservation bắt đầu 13:40: trong cửa sổ 30 phút.
	if err := w.Check(event, "Lot A", ts(13, 40), ts(13, 35)); err != nil {
		t.Errorf("yêu cầu trong cửa sổ bị từ chối: %v", err)
	}
	// Gửi đúng mốc 13:30: biên cửa sổ vẫn hợp lệ.
	if err := w.Check(event, "Lot A", ts(13, 40), ts(13, 30)); err != nil {
		t.Errorf("yêu cầu đúng biên cửa sổ bị từ chối: %v", err)
	}
	// Gửi lúc 13:25: còn hơn 30 phút trước giờ sự kiện.
	if err := w.Check(event, "Lot A", ts(13, 40), ts(13, 25)); !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("yêu cầu quá sớm phải trả ErrOutsideWindow, nhận: %v", err)
	}
	// Gửi lúc 13:00: quá sớm rõ ràng.
	if err := w.Check(event, "Lot A", ts(13, 40), ts(13, 0)); !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("yêu cầu quá sớm phải trả ErrOutsideWindow, nhận: %v", err)
	}
	// Reservation bắt đầu sau giờ sự kiện.
	if err := w.Check(event, "Lot A", ts(14, 30), ts(13, 45)); !errors.Is(err, ErrOutsideWindow) {
		t.Errorf("bắt đầu sau giờ sự kiện phải trả ErrOutsideWindow, nhận: %v", err)
	}
	// Bắt đầu đúng giờ sự kiện vẫn hợp lệ.
	if err := w.Check(event, "Lot A", ts(14, 0), ts(13, 45)); err != nil {
		t.Errorf("bắt đầu đúng giờ sự kiện bị từ chối: %v", err)
	}
}

func TestEventWindowDisabled(t *testing.T) {
	w := EventWindow{Lead: 30 * time.Minute, Enforced: false}
	event := eventAt(ts(14, 0), "Lot A")

	// Tắt Enforced: bỏ kiểm tra thời gian nhưng allow-list lot vẫn áp dụng.
	if err := w.Check(event, "Lot A", ts(9, 0), ts(6, 0)); err != nil {
		t.Errorf("cửa sổ đã tắt mà vẫn bị từ chối: %v", err)
	}
	if err := w.Check(event, "Lot B", ts(9, 0), ts(6, 0)); !errors.Is(err, ErrForbiddenLot) {
		t.Errorf("allow-list lot phải luôn áp dụng, nhận: %v", err)
	}
}

func TestEventWindowMissingStartTime(t *testing.T) {
	w := EventWindow{Lead: 30 * time.Minute, Enforced: true}
	event := &domain.Event{Name: "No time"}

	if err := w.Check(event, "Lot A", ts(13, 40), ts(13, 25)); !errors.Is(err, ErrEventWithoutTime) {
		t.Errorf("sự kiện thiếu giờ bắt đầu phải trả ErrEventWithoutTime, nhận: %v", err)
	}
}
