package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// EventService manages the event lifecycle. Only active events are visible
// to regular users; archived is terminal.
type EventService interface {
	// Create stores a new event in pending status.
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	// Get returns ErrEventNotFound when no such event exists.
	Get(ctx context.Context, id int64) (*domain.Event, error)
	ListActive(ctx context.Context) ([]*domain.Event, error)
	ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error)
	ListAll(ctx context.Context) ([]*domain.Event, error)
	// Activate moves an event to active status.
	Activate(ctx context.Context, id int64) (*domain.Event, error)
	// Archive moves an event to archived status (terminal).
	Archive(ctx context.Context, id int64) (*domain.Event, error)
}

type eventService struct {
	events repository.EventRepository
	logger *logger.Logger
}

// NewEventService creates a new EventService
func NewEventService(events repository.EventRepository, log *logger.Logger) EventService {
	return &eventService{events: events, logger: log}
}

func (s *eventService) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	event.Status = domain.EventPending
	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("event created",
		zap.Int64("event_id", created.ID),
		zap.String("title", created.Title),
		zap.String("created_by", created.CreatedBy),
	)
	return created, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) ListActive(ctx context.Context) ([]*domain.Event, error) {
	return s.events.ListByStatus(ctx, domain.EventActive)
}

func (s *eventService) ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	return s.events.ListByStatus(ctx, status)
}

func (s *eventService) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return s.events.ListAll(ctx)
}

func (s *eventService) Activate(ctx context.Context, id int64) (*domain.Event, error) {
	return s.setStatus(ctx, id, domain.EventActive)
}

func (s *eventService) Archive(ctx context.Context, id int64) (*domain.Event, error) {
	return s.setStatus(ctx, id, domain.EventArchived)
}

func (s *eventService) setStatus(ctx context.Context, id int64, status domain.EventStatus) (*domain.Event, error) {
	event, err := s.events.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update event status: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	s.logger.Info("event status changed",
		zap.Int64("event_id", id),
		zap.String("status", string(status)),
	)
	return event, nil
}
