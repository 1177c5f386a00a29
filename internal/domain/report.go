package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ReportType string

const (
	ReportWrongZoneEntry      ReportType = "wrong_zone_entry"
	ReportOverstay            ReportType = "overstay"
	ReportUnauthorizedParking ReportType = "unauthorized_parking"
	ReportOther               ReportType = "other"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report là bản ghi audit cho một vi phạm quy tắc (sai zone, biển số lạ).
// Được tạo như side effect của luồng check-in, không được đọc lại trong
// logic admission.
type Report struct {
	ID           int          `json:"id"`
	UserID       null.Int     `json:"user_id"`
	LicensePlate null.String  `json:"license_plate"`
	SpotID       null.Int     `json:"spot_id"`
	ZoneID       null.Int     `json:"zone_id"`
	ReportType   ReportType   `json:"report_type"`
	Description  null.String  `json:"description"`
	Timestamp    time.Time    `json:"timestamp"`
	Status       ReportStatus `json:"status"`
}

type ReportUpdateDTO struct {
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
}
