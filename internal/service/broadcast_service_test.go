package service

import (
	"context"
	"testing"

	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func TestBroadcastDeliverTally(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	messenger := newRecordingMessenger()
	svc := NewBroadcastService(users, messenger, logger.Nop())
	ctx := context.Background()

	recipients := []int64{1, 2, 3, 4, 5}
	messenger.failFor[2] = true
	messenger.failFor[4] = true

	results := svc.Deliver(ctx, "Служение в воскресенье", recipients)
	if len(results) != len(recipients) {
		t.Fatalf("results = %d, want one per recipient", len(results))
	}

	tally := Summarize(results)
	if tally.Sent != 3 || tally.Total != 5 {
		t.Errorf("tally = %s, want 3/5", tally)
	}

	// A failure mid-list never aborts the rest.
	if len(messenger.sentTo(5)) != 1 {
		t.Error("recipient after failures was not attempted")
	}
	for _, r := range results {
		wantErr := r.Recipient == 2 || r.Recipient == 4
		if (r.Err != nil) != wantErr {
			t.Errorf("recipient %d: err = %v", r.Recipient, r.Err)
		}
	}
}

func TestBroadcastDeliverToAll(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	messenger := newRecordingMessenger()
	svc := NewBroadcastService(users, messenger, logger.Nop())
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if _, err := users.Upsert(ctx, i, "", "User"); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	messenger.failFor[2] = true

	tally, err := svc.DeliverToAll(ctx, "Объявление")
	if err != nil {
		t.Fatalf("DeliverToAll failed: %v", err)
	}
	if tally.Sent != 2 || tally.Total != 3 {
		t.Errorf("tally = %s, want 2/3", tally)
	}
}

func TestBroadcastDeliverEmpty(t *testing.T) {
	svc := NewBroadcastService(repository.NewMemoryUserRepository(), newRecordingMessenger(), logger.Nop())

	results := svc.Deliver(context.Background(), "msg", nil)
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	tally := Summarize(results)
	if tally.Sent != 0 || tally.Total != 0 {
		t.Errorf("tally = %s, want 0/0", tally)
	}
}
