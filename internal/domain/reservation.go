package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// LiveReservationStatuses là các trạng thái còn chiếm chỗ. Hai reservation
// ở trạng thái này trên cùng một chỗ đỗ không bao giờ được chồng lấn
// khoảng [start_time, end_time).
var LiveReservationStatuses = []ReservationStatus{ReservationActive, ReservationPending}

type Reservation struct {
	ID        int               `json:"id"`
	UserID    int               `json:"user_id"`
	SpotID    int               `json:"spot_id"`
	EventID   null.Int          `json:"event_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Covers báo khoảng [StartTime, EndTime) có chứa thời điểm at hay không.
func (r *Reservation) Covers(at time.Time) bool {
	return !r.StartTime.After(at) && at.Before(r.EndTime)
}

type CreateReservationDTO struct {
	UserID    int       `json:"user_id" binding:"required"`
	SpotID    int       `json:"spot_id" binding:"required"`
	EventID   *int      `json:"event_id"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type CancelReservationDTO struct {
	ReservationID int `json:"reservation_id" binding:"required"`
	UserID        int `json:"user_id" binding:"required"` // Người thực hiện hủy (chủ reservation hoặc admin)
}
