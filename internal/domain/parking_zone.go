package domain

type ZoneType string

const (
	ZoneStaff   ZoneType = "staff"
	ZoneStudent ZoneType = "student"
	ZoneVisitor ZoneType = "visitor"
	ZoneGeneral ZoneType = "general"
)

var ZoneTypes = []ZoneType{ZoneStaff, ZoneStudent, ZoneVisitor, ZoneGeneral}

func (z ZoneType) Valid() bool {
	for _, known := range ZoneTypes {
		if z == known {
			return true
		}
	}
	return false
}

type ParkingZone struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	ZoneType ZoneType `json:"zone_type"`
}

type ParkingZoneDTO struct {
	Name     string `json:"name" binding:"required"`
	ZoneType string `json:"zone_type" binding:"required"`
}
