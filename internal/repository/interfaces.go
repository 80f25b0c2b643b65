package repository

import (
	"context"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// UserRepository is the persistence contract for identities and the
// per-admin table access grants.
type UserRepository interface {
	// Upsert creates the user on first contact or refreshes username and
	// full name; the telegram ID is immutable and the role never changes
	// through this path.
	Upsert(ctx context.Context, telegramID int64, username, fullName string) (*domain.User, error)
	// GetByTelegramID returns nil, nil when the user does not exist.
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	// GetByUsername returns nil, nil when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// SetRole updates a user's role by username; returns false when no such user.
	SetRole(ctx context.Context, username string, role domain.Role) (bool, error)
	// ListAll returns every known identity ordered by first contact.
	ListAll(ctx context.Context) ([]*domain.User, error)
	// ListTelegramIDs returns the platform IDs of every known identity.
	ListTelegramIDs(ctx context.Context) ([]int64, error)
	// ListSuperAdminIDs returns the platform IDs of all super-admins.
	ListSuperAdminIDs(ctx context.Context) ([]int64, error)
	// GrantTableAccess appends a grant; duplicates are no-ops.
	GrantTableAccess(ctx context.Context, username, tableName string) error
	// ListTableAccess returns the tables an admin's commands may touch.
	ListTableAccess(ctx context.Context, username string) ([]string, error)
}

// EventRepository is the persistence contract for events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	// GetByID returns nil, nil when the event does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error)
	ListAll(ctx context.Context) ([]*domain.Event, error)
	// UpdateStatus sets the lifecycle status; returns nil, nil when no such event.
	UpdateStatus(ctx context.Context, id int64, status domain.EventStatus) (*domain.Event, error)
}

// RegistrationRepository is the persistence contract for event registrations.
type RegistrationRepository interface {
	// Upsert inserts or, on (event_id, telegram_id) conflict, overwrites the
	// prior submission in place.
	Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Registration, error)
	CountByEvent(ctx context.Context, eventID int64) (int, error)
	ListAll(ctx context.Context) ([]*domain.Registration, error)
}

// InfoRepository is the persistence contract for knowledge-base entries.
type InfoRepository interface {
	Create(ctx context.Context, category, title, content string) (int64, error)
	Update(ctx context.Context, id int64, title, content string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]*domain.Info, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Info, error)
}

// RequestRepository is the persistence contract for admin requests.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.AdminRequest) (*domain.AdminRequest, error)
	// GetByID returns nil, nil when the request does not exist.
	GetByID(ctx context.Context, id int64) (*domain.AdminRequest, error)
	ListPending(ctx context.Context) ([]*domain.AdminRequest, error)
	// Decide applies the approve/reject transition as a single conditional
	// update guarded by status = pending. It returns the updated request only
	// if the guard held, and nil, nil when the request was already decided
	// or never existed; the caller distinguishes winning the race from
	// losing it by the nil result.
	Decide(ctx context.Context, id int64, outcome domain.RequestStatus, reviewedBy string) (*domain.AdminRequest, error)
}
