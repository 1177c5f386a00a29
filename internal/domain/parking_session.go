package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// ParkingSession ghi nhận một lần xe chiếm chỗ thực tế. CheckOutTime null
// nghĩa là phiên vẫn đang mở; mỗi user và mỗi chỗ đỗ chỉ có tối đa một
// phiên mở tại một thời điểm.
type ParkingSession struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	SpotID       int       `json:"spot_id"`
	CheckInTime  time.Time `json:"check_in_time"`
	CheckOutTime null.Time `json:"check_out_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *ParkingSession) Open() bool {
	return !s.CheckOutTime.Valid
}

type CheckInDTO struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	SpotID       int    `json:"spot_id" binding:"required"`
}

type CheckOutDTO struct {
	SessionID int `json:"session_id" binding:"required"`
}
