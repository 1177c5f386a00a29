package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

var ErrZoneHasSpots = fmt.Errorf("%w: zone vẫn còn chỗ đỗ liên kết", ErrConflict)
var ErrSpotHasLiveReservation = fmt.Errorf("%w: chỗ đỗ vẫn còn reservation hiệu lực", ErrConflict)

type ParkingService struct {
	repos    *repository.Repositories
	txRunner repository.TxRunner
	notifier SpotNotifier
	nowFn    func() time.Time
}

func NewParkingService(repos *repository.Repositories, txRunner repository.TxRunner, notifier SpotNotifier) *ParkingService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &ParkingService{
		repos:    repos,
		txRunner: txRunner,
		notifier: notifier,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// --- ParkingZone ---

func (s *ParkingService) CreateZone(ctx context.Context, dto domain.ParkingZoneDTO) (*domain.ParkingZone, error) {
	zoneType := domain.ZoneType(dto.ZoneType)
	if !zoneType.Valid() {
		return nil, fmt.Errorf("%w: loại zone %q không hợp lệ", ErrValidation, dto.ZoneType)
	}
	return s.repos.Zones.Create(ctx, &domain.ParkingZone{
		Name:     dto.Name,
		ZoneType: zoneType,
	})
}

func (s *ParkingService) GetZoneByID(ctx context.Context, id int) (*domain.ParkingZone, error) {
	return s.repos.Zones.FindByID(ctx, id)
}

func (s *ParkingService) GetAllZones(ctx context.Context) ([]domain.ParkingZone, error) {
	return s.repos.Zones.FindAll(ctx)
}

func (s *ParkingService) UpdateZone(ctx context.Context, id int, dto domain.ParkingZoneDTO) (*domain.ParkingZone, error) {
	zone, err := s.repos.Zones.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	zoneType := domain.ZoneType(dto.ZoneType)
	if !zoneType.Valid() {
		return nil, fmt.Errorf("%w: loại zone %q không hợp lệ", ErrValidation, dto.ZoneType)
	}
	zone.Name = dto.Name
	zone.ZoneType = zoneType
	return s.repos.Zones.Update(ctx, zone)
}

func (s *ParkingService) DeleteZone(ctx context.Context, id int) error {
	spots, err := s.repos.Spots.FindByZoneID(ctx, id)
	if err != nil {
		return fmt.Errorf("lỗi khi kiểm tra chỗ đỗ của zone %d: %w", id, err)
	}
	if len(spots) > 0 {
		return ErrZoneHasSpots
	}
	return s.repos.Zones.Delete(ctx, id)
}

// --- ParkingSpot ---

func (s *ParkingService) CreateSpot(ctx context.Context, dto domain.ParkingSpotDTO) (*domain.ParkingSpot, error) {
	if _, err := s.repos.Zones.FindByID(ctx, dto.ZoneID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("zone với ID %d không tồn tại: %w", dto.ZoneID, err)
		}
		return nil, fmt.Errorf("lỗi khi kiểm tra zone: %w", err)
	}

	spotType := domain.SpotRegular
	if dto.SpotType != "" {
		spotType = domain.SpotType(dto.SpotType)
		if !spotType.Valid() {
			return nil, fmt.Errorf("%w: loại chỗ đỗ %q không hợp lệ", ErrValidation, dto.SpotType)
		}
	}

	return s.repos.Spots.Create(ctx, &domain.ParkingSpot{
		SpotNumber: dto.SpotNumber,
		LotName:    dto.LotName,
		IsVip:      dto.IsVip,
		SpotType:   spotType,
		Status:     domain.SpotEmpty,
		ZoneID:     dto.ZoneID,
	})
}

func (s *ParkingService) GetSpotByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	return s.repos.Spots.FindByID(ctx, id)
}

func (s *ParkingService) GetSpotsByZone(ctx context.Context, zoneID int) ([]domain.ParkingSpot, error) {
	return s.repos.Spots.FindByZoneID(ctx, zoneID)
}

func (s *ParkingService) GetAllSpots(ctx context.Context) ([]domain.ParkingSpot, error) {
	return s.repos.Spots.FindAll(ctx)
}

func (s *ParkingService) UpdateSpot(ctx context.Context, id int, dto domain.ParkingSpotUpdateDTO) (*domain.ParkingSpot, error) {
	spot, err := s.repos.Spots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.SpotNumber != nil {
		spot.SpotNumber = *dto.SpotNumber
	}
	if dto.LotName != nil {
		spot.LotName = *dto.LotName
	}
	if dto.IsVip != nil {
		spot.IsVip = *dto.IsVip
	}
	if dto.SpotType != nil {
		spotType := domain.SpotType(*dto.SpotType)
		if !spotType.Valid() {
			return nil, fmt.Errorf("%w: loại chỗ đỗ %q không hợp lệ", ErrValidation, *dto.SpotType)
		}
		spot.SpotType = spotType
	}
	if dto.Status != nil {
		status := domain.SpotStatus(*dto.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: trạng thái chỗ đỗ %q không hợp lệ", ErrValidation, *dto.Status)
		}
		spot.Status = status
	}
	if dto.ZoneID != nil {
		if _, err := s.repos.Zones.FindByID(ctx, *dto.ZoneID); err != nil {
			return nil, fmt.Errorf("lỗi khi kiểm tra zone mới: %w", err)
		}
		spot.ZoneID = *dto.ZoneID
	}

	updated, err := s.repos.Spots.Update(ctx, spot)
	if err != nil {
		return nil, err
	}
	if dto.Status != nil {
		s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
			SpotID:    updated.ID,
			Status:    updated.Status,
			Source:    "manual",
			Timestamp: s.nowFn(),
		})
	}
	return updated, nil
}

func (s *ParkingService) DeleteSpot(ctx context.Context, id int) error {
	now := s.nowFn()
	if _, err := s.repos.Reservations.FindOtherLive(ctx, id, 0, now); err == nil {
		return ErrSpotHasLiveReservation
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lỗi khi kiểm tra reservation trên chỗ đỗ %d: %w", id, err)
	}
	if _, err := s.repos.Sessions.FindOpenBySpot(ctx, id); err == nil {
		return ErrSpotHasOpenSession
	} else if !errors.Is(err, repository.ErrNoOpenSession) {
		return fmt.Errorf("lỗi khi kiểm tra phiên mở trên chỗ đỗ %d: %w", id, err)
	}
	return s.repos.Spots.Delete(ctx, id)
}

// --- Availability ---

// GetAvailableSpots trả về snapshot các chỗ đỗ trống tại thời điểm hiện
// tại. Kết quả chỉ mang tính tham khảo: admission vẫn kiểm tra lại dưới lock.
func (s *ParkingService) GetAvailableSpots(ctx context.Context) ([]domain.ParkingSpot, error) {
	return s.repos.Spots.FindAvailable(ctx, s.nowFn())
}

// ReconcileSpotStatus tính lại trạng thái một chỗ đỗ từ nguồn sự thật.
// Dùng khi cache status bị lệch (vd. sau khi sửa dữ liệu tay).
func (s *ParkingService) ReconcileSpotStatus(ctx context.Context, spotID int) (domain.SpotStatus, error) {
	now := s.nowFn()
	var newStatus domain.SpotStatus
	err := s.txRunner.WithSpotLock(ctx, spotID, func(r *repository.Repositories) error {
		status, err := deriveSpotStatus(ctx, r, spotID, 0, now)
		if err != nil {
			return err
		}
		newStatus = status
		return r.Spots.UpdateStatus(ctx, spotID, status, "reconcile")
	})
	if err != nil {
		return "", err
	}
	s.notifier.BroadcastSpotStatus(domain.SpotStatusNotification{
		SpotID:    spotID,
		Status:    newStatus,
		Source:    "reconcile",
		Timestamp: now,
	})
	return newStatus, nil
}

// --- Nạp chỗ đỗ hàng loạt từ CSV ---

// BulkUploadResult tổng hợp kết quả một lần nạp CSV: dòng lỗi không chặn
// các dòng còn lại.
type BulkUploadResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// BulkUploadSpots đọc CSV với header spot_number,lot_name,zone_name,is_vip,spot_type
// và tạo chỗ đỗ cho từng dòng. Zone tra theo tên.
func (s *ParkingService) BulkUploadSpots(ctx context.Context, reader io.Reader) (*BulkUploadResult, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: không đọc được header CSV: %v", ErrValidation, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"spot_number", "lot_name", "zone_name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: CSV thiếu cột %q", ErrValidation, required)
		}
	}

	result := &BulkUploadResult{}
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dòng %d: %v", line, err))
			continue
		}

		zoneName := strings.TrimSpace(record[col["zone_name"]])
		zone, err := s.repos.Zones.FindByName(ctx, zoneName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dòng %d: zone %q không tồn tại", line, zoneName))
			continue
		}

		dto := domain.ParkingSpotDTO{
			SpotNumber: strings.TrimSpace(record[col["spot_number"]]),
			LotName:    strings.TrimSpace(record[col["lot_name"]]),
			ZoneID:     zone.ID,
		}
		if i, ok := col["is_vip"]; ok && i < len(record) {
			dto.IsVip, _ = strconv.ParseBool(strings.TrimSpace(record[i]))
		}
		if i, ok := col["spot_type"]; ok && i < len(record) {
			dto.SpotType = strings.TrimSpace(record[i])
		}

		if _, err := s.CreateSpot(ctx, dto); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dòng %d: %v", line, err))
			continue
		}
		result.Created++
	}

	log.Printf("ParkingService: nạp CSV xong, tạo %d chỗ đỗ, %d dòng lỗi", result.Created, len(result.Errors))
	return result, nil
}

// --- Thống kê nhanh ---

type SystemCounts struct {
	Users          int `json:"users"`
	Zones          int `json:"zones"`
	Reservations   int `json:"reservations"`
	AvailableSpots int `json:"available_spots"`
	EventsToday    int `json:"events_today"`
}

func (s *ParkingService) GetSystemCounts(ctx context.Context) (*SystemCounts, error) {
	now := s.nowFn()
	counts := &SystemCounts{}

	var err error
	if counts.Users, err = s.repos.Users.Count(ctx); err != nil {
		return nil, fmt.Errorf("lỗi khi đếm người dùng: %w", err)
	}
	if counts.Zones, err = s.repos.Zones.Count(ctx); err != nil {
		return nil, fmt.Errorf("lỗi khi đếm zone: %w", err)
	}
	if counts.Reservations, err = s.repos.Reservations.Count(ctx); err != nil {
		return nil, fmt.Errorf("lỗi khi đếm reservation: %w", err)
	}
	if counts.AvailableSpots, err = s.repos.Spots.CountAvailable(ctx, now); err != nil {
		return nil, fmt.Errorf("lỗi khi đếm chỗ đỗ trống: %w", err)
	}
	if counts.EventsToday, err = s.repos.Events.CountByDate(ctx, now); err != nil {
		return nil, fmt.Errorf("lỗi khi đếm sự kiện hôm nay: %w", err)
	}
	return counts, nil
}
