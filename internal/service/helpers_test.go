package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
)

// recordingMessenger captures outbound messages and can be told to fail
// delivery for specific recipients.
type recordingMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

type sentMessage struct {
	ChatID  int64
	Message chat.Message
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{failFor: make(map[int64]bool)}
}

func (m *recordingMessenger) Send(ctx context.Context, chatID int64, msg chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[chatID] {
		return fmt.Errorf("delivery refused for %d", chatID)
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Message: msg})
	return nil
}

func (m *recordingMessenger) sentTo(chatID int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
