package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// RegistrationService signs people up for events. Capacity is enforced when
// the flow is entered, not re-checked at commit; the narrow race between
// check and commit is accepted.
type RegistrationService interface {
	// CheckCapacity verifies the actor can enter the registration flow.
	// Returns ErrEventNotFound, ErrEventNotActive or ErrCapacityExceeded.
	// An already-registered actor is always admitted: their re-registration
	// overwrites in place and takes no new slot.
	CheckCapacity(ctx context.Context, eventID, telegramID int64) error
	// Register upserts the registration keyed by (event, actor).
	Register(ctx context.Context, reg *domain.Registration) (*domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Registration, error)
	Count(ctx context.Context, eventID int64) (int, error)
	ListAll(ctx context.Context) ([]*domain.Registration, error)
}

type registrationService struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	logger        *logger.Logger
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(events repository.EventRepository, registrations repository.RegistrationRepository, log *logger.Logger) RegistrationService {
	return &registrationService{events: events, registrations: registrations, logger: log}
}

func (s *registrationService) CheckCapacity(ctx context.Context, eventID, telegramID int64) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return ErrEventNotFound
	}
	if event.Status != domain.EventActive {
		return ErrEventNotActive
	}
	if !event.HasCapacityLimit() {
		return nil
	}

	count, err := s.registrations.CountByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if count < event.MaxParticipants {
		return nil
	}

	// Full, but a returning registrant only overwrites their own slot.
	existing, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list registrations: %w", err)
	}
	for _, reg := range existing {
		if reg.TelegramID == telegramID {
			return nil
		}
	}
	return ErrCapacityExceeded
}

func (s *registrationService) Register(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	saved, err := s.registrations.Upsert(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}
	s.logger.Info("registration saved",
		zap.Int64("event_id", saved.EventID),
		zap.Int64("telegram_id", saved.TelegramID),
	)
	return saved, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Registration, error) {
	return s.registrations.ListByEvent(ctx, eventID)
}

func (s *registrationService) Count(ctx context.Context, eventID int64) (int, error) {
	return s.registrations.CountByEvent(ctx, eventID)
}

func (s *registrationService) ListAll(ctx context.Context) ([]*domain.Registration, error) {
	return s.registrations.ListAll(ctx)
}
