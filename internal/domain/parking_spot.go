package domain

import "time"

type SpotType string

const (
	SpotReservedType SpotType = "reserved"
	SpotRegular      SpotType = "regular"
	SpotDisabled     SpotType = "disabled"
)

var SpotTypes = []SpotType{SpotReservedType, SpotRegular, SpotDisabled}

func (t SpotType) Valid() bool {
	for _, known := range SpotTypes {
		if t == known {
			return true
		}
	}
	return false
}

// SpotStatus là trạng thái dẫn xuất (cache) của chỗ đỗ. Nguồn sự thật là
// các phiên đang mở + các reservation còn hiệu lực; status phải được tính
// lại sau mỗi thay đổi liên quan đến chỗ đỗ này.
type SpotStatus string

const (
	SpotReserved         SpotStatus = "reserved"
	SpotOccupied         SpotStatus = "occupied"
	SpotEmpty            SpotStatus = "empty"
	SpotUnderMaintenance SpotStatus = "under_maintenance"
)

var SpotStatuses = []SpotStatus{SpotReserved, SpotOccupied, SpotEmpty, SpotUnderMaintenance}

func (s SpotStatus) Valid() bool {
	for _, known := range SpotStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ParkingSpot struct {
	ID         int        `json:"id"`
	SpotNumber string     `json:"spot_number"`
	LotName    string     `json:"lot_name"`
	IsVip      bool       `json:"is_vip"`
	SpotType   SpotType   `json:"spot_type"`
	Status     SpotStatus `json:"status"`
	ZoneID     int        `json:"zone_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type ParkingSpotDTO struct {
	SpotNumber string `json:"spot_number" binding:"required"`
	LotName    string `json:"lot_name" binding:"required"`
	IsVip      bool   `json:"is_vip"`
	SpotType   string `json:"spot_type,omitempty"`
	ZoneID     int    `json:"zone_id" binding:"required"`
}

type ParkingSpotUpdateDTO struct {
	SpotNumber *string `json:"spot_number"`
	LotName    *string `json:"lot_name"`
	IsVip      *bool   `json:"is_vip"`
	SpotType   *string `json:"spot_type"`
	Status     *string `json:"status"`
	ZoneID     *int    `json:"zone_id"`
}

// SpotStatusNotification được broadcast qua websocket mỗi khi trạng thái
// một chỗ đỗ thay đổi.
type SpotStatusNotification struct {
	SpotID    int        `json:"spot_id"`
	Status    SpotStatus `json:"status"`
	Source    string     `json:"source"` // "reservation", "cancellation", "check_in", "check_out", "scheduler", "reconcile", "manual"
	Timestamp time.Time  `json:"timestamp"`
}
