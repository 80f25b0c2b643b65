package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func setupRegistrationTest(t *testing.T, maxParticipants int) (RegistrationService, *domain.Event) {
	t.Helper()
	events := repository.NewMemoryEventRepository()
	regs := repository.NewMemoryRegistrationRepository()
	svc := NewRegistrationService(events, regs, logger.Nop())

	event, err := events.Create(context.Background(), &domain.Event{
		Title:           "Библейская школа",
		DateStart:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		MaxParticipants: maxParticipants,
		Status:          domain.EventActive,
	})
	if err != nil {
		t.Fatalf("event setup failed: %v", err)
	}
	return svc, event
}

func TestRegistrationIdempotence(t *testing.T) {
	svc, event := setupRegistrationTest(t, 0)
	ctx := context.Background()

	first, err := svc.Register(ctx, &domain.Registration{
		EventID: event.ID, TelegramID: 100, FullName: "Maria", Level: "beginner",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	second, err := svc.Register(ctx, &domain.Registration{
		EventID: event.ID, TelegramID: 100, FullName: "Maria", Level: "advanced",
	})
	if err != nil {
		t.Fatalf("re-Register failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("re-registration created a new record")
	}

	count, _ := svc.Count(ctx, event.ID)
	if count != 1 {
		t.Errorf("count = %d, want 1 after re-registration", count)
	}
}

func TestRegistrationCapacityEnforcement(t *testing.T) {
	svc, event := setupRegistrationTest(t, 2)
	ctx := context.Background()

	for id := int64(1); id <= 2; id++ {
		if err := svc.CheckCapacity(ctx, event.ID, id); err != nil {
			t.Fatalf("CheckCapacity for %d failed: %v", id, err)
		}
		if _, err := svc.Register(ctx, &domain.Registration{
			EventID: event.ID, TelegramID: id, FullName: "User",
		}); err != nil {
			t.Fatalf("Register for %d failed: %v", id, err)
		}
	}

	// Third distinct actor is refused.
	if err := svc.CheckCapacity(ctx, event.ID, 3); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("CheckCapacity = %v, want ErrCapacityExceeded", err)
	}

	// An existing registrant still gets in to overwrite their slot.
	if err := svc.CheckCapacity(ctx, event.ID, 1); err != nil {
		t.Errorf("existing registrant refused: %v", err)
	}

	count, _ := svc.Count(ctx, event.ID)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestRegistrationCheckCapacityStates(t *testing.T) {
	events := repository.NewMemoryEventRepository()
	regs := repository.NewMemoryRegistrationRepository()
	svc := NewRegistrationService(events, regs, logger.Nop())
	ctx := context.Background()

	if err := svc.CheckCapacity(ctx, 999, 1); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("CheckCapacity = %v, want ErrEventNotFound", err)
	}

	pending, err := events.Create(ctx, &domain.Event{
		Title:     "Закрытая встреча",
		DateStart: time.Now(),
	})
	if err != nil {
		t.Fatalf("event setup failed: %v", err)
	}
	if err := svc.CheckCapacity(ctx, pending.ID, 1); !errors.Is(err, ErrEventNotActive) {
		t.Errorf("CheckCapacity = %v, want ErrEventNotActive", err)
	}
}
