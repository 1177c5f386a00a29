package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
)

// Các lỗi nghiệp vụ chung cho tầng service. Handler dựa vào errors.Is để
// ánh xạ sang HTTP status, nên mọi luồng từ chối phải wrap một trong các
// sentinel này.
var ErrForbidden = errors.New("người dùng không được phép thực hiện thao tác này")
var ErrConflict = errors.New("yêu cầu xung đột với trạng thái hiện tại của chỗ đỗ")
var ErrInvalidState = errors.New("bản ghi không ở trạng thái cho phép thao tác này")
var ErrValidation = errors.New("dữ liệu đầu vào không hợp lệ")

// ErrInvalidWindow tách riêng lỗi thời gian đặt chỗ (policy chung hoặc cửa
// sổ sự kiện) khỏi các lỗi validation khác; vẫn ánh xạ sang 400.
var ErrInvalidWindow = fmt.Errorf("%w: khoảng thời gian đặt chỗ không hợp lệ", ErrValidation)

// SpotNotifier đẩy thông báo thay đổi trạng thái chỗ đỗ tới các client
// đang theo dõi (websocket). Gọi fire-and-forget, không chặn luồng chính.
type SpotNotifier interface {
	BroadcastSpotStatus(notification domain.SpotStatusNotification)
}

// ReportPublisher đẩy report vi phạm lên hàng đợi ngoài (SQS).
// Lỗi publish chỉ được log, không làm hỏng luồng nghiệp vụ.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *domain.Report)
}

// noopNotifier dùng khi không cấu hình websocket (vd. trong test).
type noopNotifier struct{}

func (noopNotifier) BroadcastSpotStatus(domain.SpotStatusNotification) {}

func NewNoopNotifier() SpotNotifier { return noopNotifier{} }

// noopPublisher dùng khi không cấu hình SQS queue.
type noopPublisher struct{}

func (noopPublisher) PublishReport(context.Context, *domain.Report) {}

func NewNoopPublisher() ReportPublisher { return noopPublisher{} }
