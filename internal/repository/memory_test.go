package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

func TestMemoryUserRepositoryUpsert(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Upsert(ctx, 100, "maria", "Maria Ivanova")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("Role = %s, want user", user.Role)
	}

	// Second contact with an empty username must keep the old one.
	user, err = repo.Upsert(ctx, 100, "", "Maria I.")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if user.Username != "maria" {
		t.Errorf("Username = %q, want maria preserved", user.Username)
	}
	if user.FullName != "Maria I." {
		t.Errorf("FullName = %q, want refreshed", user.FullName)
	}
}

func TestMemoryUserRepositorySetRole(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, 100, "maria", "Maria"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	ok, err := repo.SetRole(ctx, "maria", domain.RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("SetRole = %v, %v, want true, nil", ok, err)
	}

	ok, err = repo.SetRole(ctx, "nobody", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	if ok {
		t.Error("SetRole for unknown username should report false")
	}

	user, _ := repo.GetByUsername(ctx, "maria")
	if user.Role != domain.RoleAdmin {
		t.Errorf("Role = %s, want admin", user.Role)
	}
}

func TestMemoryUserRepositoryMiss(t *testing.T) {
	repo := NewMemoryUserRepository()

	user, err := repo.GetByTelegramID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByTelegramID failed: %v", err)
	}
	if user != nil {
		t.Error("expected nil user for unknown ID")
	}
}

func TestMemoryUserRepositoryTableAccess(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if err := repo.GrantTableAccess(ctx, "maria", "events"); err != nil {
		t.Fatalf("GrantTableAccess failed: %v", err)
	}
	if err := repo.GrantTableAccess(ctx, "maria", "events"); err != nil {
		t.Fatalf("duplicate grant failed: %v", err)
	}

	tables, err := repo.ListTableAccess(ctx, "maria")
	if err != nil {
		t.Fatalf("ListTableAccess failed: %v", err)
	}
	if len(tables) != 1 {
		t.Errorf("grants = %d, want 1 (duplicates are no-ops)", len(tables))
	}
}

func TestMemoryEventRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryEventRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Event{
		Title:     "Библейская школа",
		DateStart: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != domain.EventPending {
		t.Errorf("Status = %s, want pending by default", created.Status)
	}

	updated, err := repo.UpdateStatus(ctx, created.ID, domain.EventActive)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.EventActive {
		t.Errorf("Status = %s, want active", updated.Status)
	}

	missing, err := repo.UpdateStatus(ctx, 999, domain.EventArchived)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown event")
	}

	active, err := repo.ListByStatus(ctx, domain.EventActive)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active events = %d, want 1", len(active))
	}
}

func TestMemoryRegistrationRepositoryUpsert(t *testing.T) {
	repo := NewMemoryRegistrationRepository()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, &domain.Registration{
		EventID:    1,
		TelegramID: 100,
		FullName:   "Maria",
		Level:      "beginner",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second, err := repo.Upsert(ctx, &domain.Registration{
		EventID:    1,
		TelegramID: 100,
		FullName:   "Maria Ivanova",
		Level:      "advanced",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-registration created a new row: id %d != %d", second.ID, first.ID)
	}
	if second.Level != "advanced" {
		t.Errorf("Level = %q, want overwritten", second.Level)
	}

	count, err := repo.CountByEvent(ctx, 1)
	if err != nil {
		t.Fatalf("CountByEvent failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestMemoryInfoRepositoryCRUD(t *testing.T) {
	repo := NewMemoryInfoRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, "schedule", "Воскресное служение", "Каждое воскресенье в 11:00")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := repo.Update(ctx, id, "Воскресное служение", "Каждое воскресенье в 10:00")
	if err != nil || !ok {
		t.Fatalf("Update = %v, %v, want true, nil", ok, err)
	}

	entries, err := repo.ListByCategory(ctx, "schedule")
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "Каждое воскресенье в 10:00" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	ok, err = repo.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v, want true, nil", ok, err)
	}
	ok, _ = repo.Delete(ctx, id)
	if ok {
		t.Error("second delete should report false")
	}
}

func TestMemoryRequestRepositoryDecideOnce(t *testing.T) {
	repo := NewMemoryRequestRepository()
	ctx := context.Background()

	req, err := repo.Create(ctx, &domain.AdminRequest{
		Username: "maria",
		Type:     domain.RequestAdminAccess,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	decided, err := repo.Decide(ctx, req.ID, domain.RequestApproved, "pastor")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if decided == nil || decided.Status != domain.RequestApproved {
		t.Fatalf("first decision should win, got %+v", decided)
	}

	again, err := repo.Decide(ctx, req.ID, domain.RequestRejected, "other")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if again != nil {
		t.Error("second decision on a decided request should return nil")
	}

	stored, _ := repo.GetByID(ctx, req.ID)
	if stored.Status != domain.RequestApproved || stored.ReviewedBy != "pastor" {
		t.Errorf("stored request corrupted by losing decision: %+v", stored)
	}
}

func TestMemoryRequestRepositoryDecideConcurrent(t *testing.T) {
	repo := NewMemoryRequestRepository()
	ctx := context.Background()

	req, err := repo.Create(ctx, &domain.AdminRequest{
		Username: "maria",
		Type:     domain.RequestAdminAccess,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const reviewers = 10
	var wg sync.WaitGroup
	wins := make(chan domain.RequestStatus, reviewers)
	for i := 0; i < reviewers; i++ {
		outcome := domain.RequestApproved
		if i%2 == 1 {
			outcome = domain.RequestRejected
		}
		wg.Add(1)
		go func(outcome domain.RequestStatus) {
			defer wg.Done()
			decided, err := repo.Decide(ctx, req.ID, outcome, "reviewer")
			if err != nil {
				t.Errorf("Decide failed: %v", err)
				return
			}
			if decided != nil {
				wins <- decided.Status
			}
		}(outcome)
	}
	wg.Wait()
	close(wins)

	var winners []domain.RequestStatus
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("winners = %d, want exactly 1", len(winners))
	}

	stored, _ := repo.GetByID(ctx, req.ID)
	if stored.Status != winners[0] {
		t.Errorf("stored status %s does not match winner %s", stored.Status, winners[0])
	}
}
