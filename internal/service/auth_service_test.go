package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func TestAuthServiceAuthorize(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(users, logger.Nop())
	ctx := context.Background()

	if _, err := svc.Identify(ctx, 100, "maria", "Maria"); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}

	tests := []struct {
		name       string
		telegramID int64
		roles      []domain.Role
		wantErr    error
	}{
		{"unknown actor", 999, nil, ErrUnregistered},
		{"registered, no role requirement", 100, nil, nil},
		{"user lacks admin", 100, []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}, ErrForbidden},
		{"user role accepted", 100, []domain.Role{domain.RoleUser}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authorize(ctx, tt.telegramID, tt.roles...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && user == nil {
				t.Error("expected resolved identity on success")
			}
			if tt.wantErr != nil && user != nil {
				t.Error("expected nil identity on denial")
			}
		})
	}
}

func TestAuthServiceAuthorize_AfterPromotion(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(users, logger.Nop())
	ctx := context.Background()

	if _, err := svc.Identify(ctx, 100, "maria", "Maria"); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := svc.SetRole(ctx, "maria", domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}

	user, err := svc.Authorize(ctx, 100, domain.RoleAdmin, domain.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("Authorize failed after promotion: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Errorf("Role = %s, want admin", user.Role)
	}
}

func TestAuthServiceSetRole(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(users, logger.Nop())
	ctx := context.Background()

	if err := svc.SetRole(ctx, "nobody", domain.RoleAdmin); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetRole error = %v, want ErrUserNotFound", err)
	}
	if err := svc.SetRole(ctx, "nobody", domain.Role("owner")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("SetRole error = %v, want ErrInvalidRole", err)
	}
}

func TestAuthServiceEnsureSuperAdmin(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(users, logger.Nop())
	ctx := context.Background()

	// Not registered yet: a silent no-op.
	if err := svc.EnsureSuperAdmin(ctx, "pastor"); err != nil {
		t.Fatalf("EnsureSuperAdmin failed: %v", err)
	}

	if _, err := svc.Identify(ctx, 1, "pastor", "Pastor"); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if err := svc.EnsureSuperAdmin(ctx, "pastor"); err != nil {
		t.Fatalf("EnsureSuperAdmin failed: %v", err)
	}

	user, err := svc.GetByUsername(ctx, "pastor")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if user.Role != domain.RoleSuperAdmin {
		t.Errorf("Role = %s, want super_admin", user.Role)
	}

	// Idempotent.
	if err := svc.EnsureSuperAdmin(ctx, "pastor"); err != nil {
		t.Fatalf("second EnsureSuperAdmin failed: %v", err)
	}
}
