package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// In-memory repositories for tests and single-process development runs.
// They mirror the Postgres semantics exactly, including nil, nil misses,
// upsert overwrites and the conditional decide guard.

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	grants map[string][]string
}

// NewMemoryUserRepository creates a new MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[int64]*domain.User),
		grants: make(map[string][]string),
	}
}

func (r *MemoryUserRepository) Upsert(ctx context.Context, telegramID int64, username, fullName string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[telegramID]
	if !ok {
		user = &domain.User{
			TelegramID: telegramID,
			Role:       domain.RoleUser,
			CreatedAt:  time.Now(),
		}
		r.users[telegramID] = user
	}
	if username != "" {
		user.Username = username
	}
	user.FullName = fullName
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[telegramID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) SetRole(ctx context.Context, username string, role domain.Role) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			user.Role = role
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepository) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *MemoryUserRepository) ListSuperAdminIDs(ctx context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []int64
	for id, user := range r.users {
		if user.Role == domain.RoleSuperAdmin {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *MemoryUserRepository) GrantTableAccess(ctx context.Context, username, tableName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.grants[username] {
		if existing == tableName {
			return nil
		}
	}
	r.grants[username] = append(r.grants[username], tableName)
	return nil
}

func (r *MemoryUserRepository) ListTableAccess(ctx context.Context, username string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.grants[username]...), nil
}

// MemoryEventRepository is an in-memory EventRepository.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64]*domain.Event
}

// NewMemoryEventRepository creates a new MemoryEventRepository
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{nextID: 1, events: make(map[int64]*domain.Event)}
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	copied.ID = r.nextID
	r.nextID++
	if copied.Status == "" {
		copied.Status = domain.EventPending
	}
	copied.CreatedAt = time.Now()
	r.events[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (r *MemoryEventRepository) ListByStatus(ctx context.Context, status domain.EventStatus) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.Event
	for _, event := range r.events {
		if event.Status == status {
			copied := *event
			events = append(events, &copied)
		}
	}
	sortEvents(events)
	return events, nil
}

func (r *MemoryEventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*domain.Event, 0, len(r.events))
	for _, event := range r.events {
		copied := *event
		events = append(events, &copied)
	}
	sortEvents(events)
	return events, nil
}

func (r *MemoryEventRepository) UpdateStatus(ctx context.Context, id int64, status domain.EventStatus) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	event.Status = status
	copied := *event
	return &copied, nil
}

func sortEvents(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].DateStart.Equal(events[j].DateStart) {
			return events[i].ID < events[j].ID
		}
		return events[i].DateStart.Before(events[j].DateStart)
	})
}

// MemoryRegistrationRepository is an in-memory RegistrationRepository.
type MemoryRegistrationRepository struct {
	mu     sync.RWMutex
	nextID int64
	regs   []*domain.Registration
}

// NewMemoryRegistrationRepository creates a new MemoryRegistrationRepository
func NewMemoryRegistrationRepository() *MemoryRegistrationRepository {
	return &MemoryRegistrationRepository{nextID: 1}
}

func (r *MemoryRegistrationRepository) Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.regs {
		if existing.EventID == reg.EventID && existing.TelegramID == reg.TelegramID {
			existing.Username = reg.Username
			existing.FullName = reg.FullName
			existing.Phone = reg.Phone
			existing.Level = reg.Level
			existing.Comment = reg.Comment
			existing.RegisteredAt = time.Now()
			copied := *existing
			return &copied, nil
		}
	}

	copied := *reg
	copied.ID = r.nextID
	r.nextID++
	copied.RegisteredAt = time.Now()
	r.regs = append(r.regs, &copied)
	result := copied
	return &result, nil
}

func (r *MemoryRegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var regs []*domain.Registration
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			copied := *reg
			regs = append(regs, &copied)
		}
	}
	return regs, nil
}

func (r *MemoryRegistrationRepository) CountByEvent(ctx context.Context, eventID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRegistrationRepository) ListAll(ctx context.Context) ([]*domain.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*domain.Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		copied := *reg
		regs = append(regs, &copied)
	}
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].EventID == regs[j].EventID {
			return regs[i].ID < regs[j].ID
		}
		return regs[i].EventID < regs[j].EventID
	})
	return regs, nil
}

// MemoryInfoRepository is an in-memory InfoRepository.
type MemoryInfoRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]*domain.Info
}

// NewMemoryInfoRepository creates a new MemoryInfoRepository
func NewMemoryInfoRepository() *MemoryInfoRepository {
	return &MemoryInfoRepository{nextID: 1, entries: make(map[int64]*domain.Info)}
}

func (r *MemoryInfoRepository) Create(ctx context.Context, category, title, content string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.entries[id] = &domain.Info{
		ID:        id,
		Category:  category,
		Title:     title,
		Content:   content,
		UpdatedAt: time.Now(),
	}
	return id, nil
}

func (r *MemoryInfoRepository) Update(ctx context.Context, id int64, title, content string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return false, nil
	}
	entry.Title = title
	entry.Content = content
	entry.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryInfoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

func (r *MemoryInfoRepository) ListAll(ctx context.Context) ([]*domain.Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*domain.Info, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		entries = append(entries, &copied)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category == entries[j].Category {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Category < entries[j].Category
	})
	return entries, nil
}

func (r *MemoryInfoRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []*domain.Info
	for _, entry := range r.entries {
		if entry.Category == category {
			copied := *entry
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// MemoryRequestRepository is an in-memory RequestRepository.
type MemoryRequestRepository struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*domain.AdminRequest
}

// NewMemoryRequestRepository creates a new MemoryRequestRepository
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{nextID: 1, requests: make(map[int64]*domain.AdminRequest)}
}

func (r *MemoryRequestRepository) Create(ctx context.Context, req *domain.AdminRequest) (*domain.AdminRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *req
	copied.ID = r.nextID
	r.nextID++
	copied.Status = domain.RequestPending
	copied.CreatedAt = time.Now()
	r.requests[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (r *MemoryRequestRepository) GetByID(ctx context.Context, id int64) (*domain.AdminRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (r *MemoryRequestRepository) ListPending(ctx context.Context) ([]*domain.AdminRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reqs []*domain.AdminRequest
	for _, req := range r.requests {
		if req.Status == domain.RequestPending {
			copied := *req
			reqs = append(reqs, &copied)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs, nil
}

// Decide applies the decision only when the request is still pending, under
// the repository lock, so concurrent reviewers get exactly one winner.
func (r *MemoryRequestRepository) Decide(ctx context.Context, id int64, outcome domain.RequestStatus, reviewedBy string) (*domain.AdminRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestPending {
		return nil, nil
	}
	now := time.Now()
	req.Status = outcome
	req.ReviewedBy = reviewedBy
	req.ReviewedAt = &now
	copied := *req
	return &copied, nil
}
