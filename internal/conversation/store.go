package conversation

import (
	"context"
	"fmt"
	"sync"
)

// Store persists at most one conversation instance per (actor, chat) scope.
// Creation and deletion are always explicit; an instance never expires on
// its own.
type Store interface {
	// Get returns nil, nil when the scope has no active instance.
	Get(ctx context.Context, actorID, chatID int64) (*Instance, error)
	Put(ctx context.Context, actorID, chatID int64, inst *Instance) error
	Delete(ctx context.Context, actorID, chatID int64) error
}

func scopeKey(actorID, chatID int64) string {
	return fmt.Sprintf("%d:%d", actorID, chatID)
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]*Instance)}
}

func (s *MemoryStore) Get(ctx context.Context, actorID, chatID int64) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[scopeKey(actorID, chatID)]
	if !ok {
		return nil, nil
	}
	return inst, nil
}

func (s *MemoryStore) Put(ctx context.Context, actorID, chatID int64, inst *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[scopeKey(actorID, chatID)] = inst
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, actorID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, scopeKey(actorID, chatID))
	return nil
}
