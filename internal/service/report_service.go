package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

type ReportService struct {
	reportRepo repository.ReportRepository
	publisher  ReportPublisher
	nowFn      func() time.Time
}

func NewReportService(reportRepo repository.ReportRepository, publisher ReportPublisher) *ReportService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	return &ReportService{
		reportRepo: reportRepo,
		publisher:  publisher,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateReport tạo report thủ công (loại "other" hoặc overstay do nhân
// viên ghi nhận). Report từ luồng check-in đi qua SessionService.
func (s *ReportService) CreateReport(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	if report.ReportType == "" {
		report.ReportType = domain.ReportOther
	}
	if report.Status == "" {
		report.Status = domain.ReportPending
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = s.nowFn()
	}

	created, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, err
	}
	s.publisher.PublishReport(ctx, created)
	return created, nil
}

func (s *ReportService) GetReportByID(ctx context.Context, id int) (*domain.Report, error) {
	return s.reportRepo.FindByID(ctx, id)
}

func (s *ReportService) GetAllReports(ctx context.Context) ([]domain.Report, error) {
	return s.reportRepo.FindAll(ctx)
}

func (s *ReportService) UpdateReport(ctx context.Context, id int, dto domain.ReportUpdateDTO) (*domain.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := domain.ReportStatus(dto.Status)
	switch status {
	case domain.ReportPending, domain.ReportResolved, domain.ReportDismissed:
	default:
		return nil, fmt.Errorf("%w: trạng thái report %q không hợp lệ", ErrValidation, dto.Status)
	}
	report.Status = status
	if dto.Description != "" {
		report.Description = null.StringFrom(dto.Description)
	}

	return s.reportRepo.Update(ctx, report)
}
