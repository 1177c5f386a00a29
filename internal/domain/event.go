package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type Event struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Description   null.String `json:"description"`
	Date          time.Time   `json:"date"`
	StartTime     null.Time   `json:"start_time"`
	EndTime       null.Time   `json:"end_time"`
	EventLocation string      `json:"event_location"`
	Latitude      null.Float  `json:"latitude"`
	Longitude     null.Float  `json:"longitude"`
	// Danh sách lot được phép đỗ cho sự kiện; rỗng nghĩa là không giới hạn.
	AllowedParkingLots []string  `json:"allowed_parking_lots"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type EventDTO struct {
	Name               string     `json:"name" binding:"required"`
	Description        string     `json:"description"`
	Date               *time.Time `json:"date"`
	StartTime          *time.Time `json:"start_time"`
	EndTime            *time.Time `json:"end_time"`
	EventLocation      string     `json:"event_location" binding:"required"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	AllowedParkingLots []string   `json:"allowed_parking_lots"`
}
