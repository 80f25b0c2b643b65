package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// AuthService resolves identities and gates operations by persisted role.
type AuthService interface {
	// Identify upserts the actor's identity on contact and returns it.
	Identify(ctx context.Context, telegramID int64, username, fullName string) (*domain.User, error)
	// Authorize resolves the actor and checks the role requirement. With no
	// roles given it only requires a registered identity. Returns
	// ErrUnregistered or ErrForbidden; on success the resolved identity is
	// returned for reuse by the calling operation.
	Authorize(ctx context.Context, telegramID int64, roles ...domain.Role) (*domain.User, error)
	// GetByUsername returns ErrUserNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// SetRole overrides a user's role directly (super-admin path).
	SetRole(ctx context.Context, username string, role domain.Role) error
	// EnsureSuperAdmin promotes the bootstrap username if registered and not
	// yet a super-admin. Missing user is not an error: promotion happens on
	// their first /start instead.
	EnsureSuperAdmin(ctx context.Context, username string) error
}

type authService struct {
	users  repository.UserRepository
	logger *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, log *logger.Logger) AuthService {
	return &authService{users: users, logger: log}
}

func (s *authService) Identify(ctx context.Context, telegramID int64, username, fullName string) (*domain.User, error) {
	user, err := s.users.Upsert(ctx, telegramID, username, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *authService) Authorize(ctx context.Context, telegramID int64, roles ...domain.Role) (*domain.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUnregistered
	}
	if len(roles) == 0 {
		return user, nil
	}
	for _, role := range roles {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, ErrForbidden
}

func (s *authService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) SetRole(ctx context.Context, username string, role domain.Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	ok, err := s.users.SetRole(ctx, username, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	s.logger.Info("role changed",
		zap.String("username", username),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *authService) EnsureSuperAdmin(ctx context.Context, username string) error {
	if username == "" {
		return nil
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up bootstrap super-admin: %w", err)
	}
	if user == nil || user.Role == domain.RoleSuperAdmin {
		return nil
	}
	if _, err := s.users.SetRole(ctx, username, domain.RoleSuperAdmin); err != nil {
		return fmt.Errorf("failed to promote bootstrap super-admin: %w", err)
	}
	s.logger.Info("bootstrap super-admin promoted", zap.String("username", username))
	return nil
}
