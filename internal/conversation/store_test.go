package conversation

import (
	"context"
	"testing"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	inst, err := store.Get(ctx, 100, 500)
	if err != nil || inst != nil {
		t.Fatalf("miss = %v, %v; want nil, nil", inst, err)
	}

	saved := NewInstance(FlowRegistration, &domain.User{TelegramID: 100}, 500, nil)
	if err := store.Put(ctx, 100, 500, saved); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	inst, err = store.Get(ctx, 100, 500)
	if err != nil || inst == nil || inst.ID != saved.ID {
		t.Fatalf("Get = %v, %v; want the stored instance", inst, err)
	}

	// Same actor in a different chat is a distinct scope.
	other, err := store.Get(ctx, 100, 501)
	if err != nil || other != nil {
		t.Fatalf("cross-chat Get = %v, %v; want nil, nil", other, err)
	}

	if err := store.Delete(ctx, 100, 500); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, 100, 500); err != nil {
		t.Fatalf("repeated Delete failed: %v", err)
	}
	inst, err = store.Get(ctx, 100, 500)
	if err != nil || inst != nil {
		t.Fatalf("Get after Delete = %v, %v; want nil, nil", inst, err)
	}
}
