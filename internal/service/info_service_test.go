package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func TestInfoServiceGroundingContext(t *testing.T) {
	info := repository.NewMemoryInfoRepository()
	events := repository.NewMemoryEventRepository()
	svc := NewInfoService(info, events, logger.Nop())
	ctx := context.Background()

	if _, err := events.Create(ctx, &domain.Event{
		Title:     "Библейская школа",
		DateStart: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Time:      "18:00",
		Place:     "Зал 2",
		Status:    domain.EventActive,
	}); err != nil {
		t.Fatalf("event setup failed: %v", err)
	}
	if _, err := events.Create(ctx, &domain.Event{
		Title:     "Черновик",
		DateStart: time.Now(),
	}); err != nil {
		t.Fatalf("event setup failed: %v", err)
	}
	if _, err := svc.Create(ctx, "contact", "Телефон", "+7 900 000-00-00"); err != nil {
		t.Fatalf("info setup failed: %v", err)
	}

	got, err := svc.GroundingContext(ctx)
	if err != nil {
		t.Fatalf("GroundingContext failed: %v", err)
	}

	if !strings.Contains(got, "=== Active events ===") || !strings.Contains(got, "=== Information ===") {
		t.Errorf("missing section headers:\n%s", got)
	}
	if !strings.Contains(got, "- Библейская школа | 2025-01-15 | 18:00 | Зал 2 |") {
		t.Errorf("active event line malformed:\n%s", got)
	}
	if strings.Contains(got, "Черновик") {
		t.Error("pending event leaked into grounding context")
	}
	if !strings.Contains(got, "[contact] Телефон: +7 900 000-00-00") {
		t.Errorf("info line malformed:\n%s", got)
	}
}

func TestInfoServiceGroundingContextCached(t *testing.T) {
	info := repository.NewMemoryInfoRepository()
	events := repository.NewMemoryEventRepository()
	svc := NewInfoService(info, events, logger.Nop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "contact", "Адрес", "ул. Мира, 1"); err != nil {
		t.Fatalf("info setup failed: %v", err)
	}
	first, err := svc.GroundingContext(ctx)
	if err != nil {
		t.Fatalf("GroundingContext failed: %v", err)
	}

	// New data inside the cache window is not visible yet.
	if _, err := svc.Create(ctx, "contact", "Почта", "hello@example.org"); err != nil {
		t.Fatalf("info setup failed: %v", err)
	}
	second, err := svc.GroundingContext(ctx)
	if err != nil {
		t.Fatalf("GroundingContext failed: %v", err)
	}
	if second != first {
		t.Error("grounding context not served from cache within the TTL")
	}
}
