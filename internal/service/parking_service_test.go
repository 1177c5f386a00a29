package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/policy"
)

func newParkingFixture(t *testing.T) (*fakeStore, *ParkingService) {
	t.Helper()
	store := newFakeStore()
	svc := NewParkingService(store.repositories(), &fakeTxRunner{store: store}, nil)
	svc.nowFn = func() time.Time { return testNow }
	return store, svc
}

func TestCreateZoneValidation(t *testing.T) {
	_, svc := newParkingFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"}); err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	_, err := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu B", ZoneType: "banana"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("zone type lạ: muốn ErrValidation, có %v", err)
	}
}

func TestDeleteZoneWithSpots(t *testing.T) {
	_, svc := newParkingFixture(t)
	ctx := context.Background()

	zone, _ := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})
	svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-01", LotName: "Lot A", ZoneID: zone.ID})

	if err := svc.DeleteZone(ctx, zone.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("xóa zone còn chỗ đỗ: muốn ErrConflict, có %v", err)
	}
}

func TestGetAvailableSpots(t *testing.T) {
	store, svc := newParkingFixture(t)
	ctx := context.Background()

	zone, _ := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})
	free, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-01", LotName: "Lot A", ZoneID: zone.ID})
	taken, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-02", LotName: "Lot A", ZoneID: zone.ID})
	reserved, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-03", LotName: "Lot A", ZoneID: zone.ID})
	future, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-04", LotName: "Lot A", ZoneID: zone.ID})

	// A-02 có phiên mở
	store.repositories().Sessions.Create(ctx, &domain.ParkingSession{
		UserID: 99, SpotID: taken.ID, CheckInTime: at(11, 0),
	})
	// A-03 có reservation active phủ now
	store.repositories().Reservations.Create(ctx, &domain.Reservation{
		UserID: 99, SpotID: reserved.ID, StartTime: at(11, 0), EndTime: at(14, 0),
		Status: domain.ReservationActive,
	})
	// A-04 chỉ có reservation trong tương lai, giờ vẫn trống
	store.repositories().Reservations.Create(ctx, &domain.Reservation{
		UserID: 99, SpotID: future.ID, StartTime: at(18, 0), EndTime: at(20, 0),
		Status: domain.ReservationPending,
	})

	spots, err := svc.GetAvailableSpots(ctx)
	if err != nil {
		t.Fatalf("GetAvailableSpots: %v", err)
	}

	got := map[int]bool{}
	for _, sp := range spots {
		got[sp.ID] = true
	}
	if !got[free.ID] || !got[future.ID] {
		t.Errorf("A-01 và A-04 phải trống, có %v", got)
	}
	if got[taken.ID] || got[reserved.ID] {
		t.Errorf("A-02 và A-03 không được trống, có %v", got)
	}
}

func TestReconcileSpotStatus(t *testing.T) {
	store, svc := newParkingFixture(t)
	ctx := context.Background()

	zone, _ := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})
	spot, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-01", LotName: "Lot A", ZoneID: zone.ID})

	// Cache bị lệch: status occupied nhưng không có gì giữ chỗ
	store.repositories().Spots.UpdateStatus(ctx, spot.ID, domain.SpotOccupied, "manual")

	status, err := svc.ReconcileSpotStatus(ctx, spot.ID)
	if err != nil {
		t.Fatalf("ReconcileSpotStatus: %v", err)
	}
	if status != domain.SpotEmpty {
		t.Errorf("reconcile = %s, muốn empty", status)
	}
}

func TestBulkUploadSpots(t *testing.T) {
	_, svc := newParkingFixture(t)
	ctx := context.Background()

	svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})

	csvData := strings.Join([]string{
		"spot_number,lot_name,zone_name,is_vip,spot_type",
		"A-01,Lot A,Khu A,false,regular",
		"A-02,Lot A,Khu A,true,reserved",
		"B-01,Lot B,Khu Không Tồn Tại,false,regular",
		"A-01,Lot A,Khu A,false,regular", // trùng spot_number trong zone
	}, "\n")

	result, err := svc.BulkUploadSpots(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("BulkUploadSpots: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, muốn 2", result.Created)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %v, muốn 2 dòng lỗi", result.Errors)
	}

	spots, _ := svc.GetAllSpots(ctx)
	if len(spots) != 2 {
		t.Errorf("tổng chỗ đỗ = %d, muốn 2", len(spots))
	}
	for _, sp := range spots {
		if sp.SpotNumber == "A-02" && !sp.IsVip {
			t.Error("A-02 phải là chỗ VIP")
		}
	}
}

func TestBulkUploadMissingColumn(t *testing.T) {
	_, svc := newParkingFixture(t)

	_, err := svc.BulkUploadSpots(context.Background(), strings.NewReader("spot_number,lot_name\nA-01,Lot A"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("CSV thiếu cột: muốn ErrValidation, có %v", err)
	}
}

func TestGetSystemCounts(t *testing.T) {
	store, svc := newParkingFixture(t)
	ctx := context.Background()

	zone, _ := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})
	svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-01", LotName: "Lot A", ZoneID: zone.ID})
	store.repositories().Users.Create(ctx, &domain.User{
		Email: "a@campus.edu", PhoneNumber: "090", LicensePlate: "AAA111",
		Role: domain.RoleStudent, Status: domain.UserActive,
	})

	counts, err := svc.GetSystemCounts(ctx)
	if err != nil {
		t.Fatalf("GetSystemCounts: %v", err)
	}
	if counts.Users != 1 || counts.Zones != 1 || counts.AvailableSpots != 1 {
		t.Errorf("counts = %+v, muốn users=1 zones=1 available=1", counts)
	}
}

// Giữ reservation service và parking service nhìn cùng một trạng thái chỗ đỗ.
func TestAvailabilityAfterReservation(t *testing.T) {
	store, svc := newParkingFixture(t)
	ctx := context.Background()

	zone, _ := svc.CreateZone(ctx, domain.ParkingZoneDTO{Name: "Khu A", ZoneType: "student"})
	spot, _ := svc.CreateSpot(ctx, domain.ParkingSpotDTO{SpotNumber: "A-01", LotName: "Lot A", ZoneID: zone.ID})

	user, _ := store.repositories().Users.Create(ctx, &domain.User{
		Email: "a@campus.edu", PhoneNumber: "090", LicensePlate: "AAA111",
		Role: domain.RoleStudent, Status: domain.UserActive,
	})

	rs := NewReservationService(store.repositories(), &fakeTxRunner{store: store}, nil,
		policy.EventWindow{Lead: 30 * time.Minute, Enforced: true}, false)
	rs.nowFn = func() time.Time { return testNow }

	if _, err := rs.CreateReservation(ctx, domain.CreateReservationDTO{
		UserID: user.ID, SpotID: spot.ID, StartTime: testNow, EndTime: at(16, 0),
	}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	spots, _ := svc.GetAvailableSpots(ctx)
	if len(spots) != 0 {
		t.Errorf("chỗ vừa được giữ không được xuất hiện trong danh sách trống, có %d", len(spots))
	}
}
