package service

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

type EventService struct {
	eventRepo repository.EventRepository
	nowFn     func() time.Time
}

func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventService) CreateEvent(ctx context.Context, dto domain.EventDTO) (*domain.Event, error) {
	if dto.StartTime != nil && dto.EndTime != nil && !dto.EndTime.After(*dto.StartTime) {
		return nil, fmt.Errorf("%w: giờ kết thúc sự kiện phải sau giờ bắt đầu", ErrValidation)
	}

	event := &domain.Event{
		Name:               dto.Name,
		EventLocation:      dto.EventLocation,
		AllowedParkingLots: dto.AllowedParkingLots,
	}
	if dto.Description != "" {
		event.Description = null.StringFrom(dto.Description)
	}
	if dto.Date != nil {
		event.Date = dto.Date.In(time.UTC)
	} else if dto.StartTime != nil {
		event.Date = dto.StartTime.In(time.UTC).Truncate(24 * time.Hour)
	} else {
		return nil, fmt.Errorf("%w: sự kiện cần ít nhất ngày hoặc giờ bắt đầu", ErrValidation)
	}
	if dto.StartTime != nil {
		event.StartTime = null.TimeFrom(dto.StartTime.In(time.UTC))
	}
	if dto.EndTime != nil {
		event.EndTime = null.TimeFrom(dto.EndTime.In(time.UTC))
	}
	if dto.Latitude != nil {
		event.Latitude = null.FloatFrom(*dto.Latitude)
	}
	if dto.Longitude != nil {
		event.Longitude = null.FloatFrom(*dto.Longitude)
	}

	return s.eventRepo.Create(ctx, event)
}

func (s *EventService) GetEventByID(ctx context.Context, id int) (*domain.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

func (s *EventService) GetAllEvents(ctx context.Context) ([]domain.Event, error) {
	return s.eventRepo.FindAll(ctx)
}

// GetTodaysEvents trả về các sự kiện diễn ra trong ngày hiện tại (UTC).
func (s *EventService) GetTodaysEvents(ctx context.Context) ([]domain.Event, error) {
	return s.eventRepo.FindByDate(ctx, s.nowFn())
}

func (s *EventService) DeleteEvent(ctx context.Context, id int) error {
	return s.eventRepo.Delete(ctx, id)
}
