package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// DeliveryResult records the outcome of one recipient's delivery attempt.
type DeliveryResult struct {
	Recipient int64
	Err       error
}

// Tally summarizes a fan-out for user-visible reporting ("sent 42/45").
type Tally struct {
	Sent  int
	Total int
}

func (t Tally) String() string {
	return fmt.Sprintf("%d/%d", t.Sent, t.Total)
}

// Summarize folds per-recipient results into a tally.
func Summarize(results []DeliveryResult) Tally {
	tally := Tally{Total: len(results)}
	for _, r := range results {
		if r.Err == nil {
			tally.Sent++
		}
	}
	return tally
}

// BroadcastService fans a message out to recipients. Delivery is best-effort
// at-most-once: one recipient's failure never aborts the rest, and there are
// no retries.
type BroadcastService interface {
	// Deliver attempts every recipient and returns one result per recipient
	// in order.
	Deliver(ctx context.Context, message string, recipients []int64) []DeliveryResult
	// DeliverToAll fans the message out to every known identity.
	DeliverToAll(ctx context.Context, message string) (Tally, error)
}

type broadcastService struct {
	users     repository.UserRepository
	messenger chat.Messenger
	logger    *logger.Logger
}

// NewBroadcastService creates a new BroadcastService
func NewBroadcastService(users repository.UserRepository, messenger chat.Messenger, log *logger.Logger) BroadcastService {
	return &broadcastService{users: users, messenger: messenger, logger: log}
}

func (s *broadcastService) Deliver(ctx context.Context, message string, recipients []int64) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(recipients))
	msg := chat.Text(message)
	for _, recipient := range recipients {
		err := s.messenger.Send(ctx, recipient, msg)
		if err != nil {
			s.logger.Warn("broadcast delivery failed",
				zap.Int64("recipient", recipient),
				zap.Error(err),
			)
		}
		results = append(results, DeliveryResult{Recipient: recipient, Err: err})
	}
	return results
}

func (s *broadcastService) DeliverToAll(ctx context.Context, message string) (Tally, error) {
	recipients, err := s.users.ListTelegramIDs(ctx)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to list recipients: %w", err)
	}
	tally := Summarize(s.Deliver(ctx, message, recipients))
	s.logger.Info("broadcast delivered",
		zap.Int("sent", tally.Sent),
		zap.Int("total", tally.Total),
	)
	return tally, nil
}
