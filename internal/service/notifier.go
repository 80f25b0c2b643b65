package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// Notifier pushes fire-and-forget alerts: reviewer notifications when a
// request is filed and requester notices when it is decided. Like the
// broadcast dispatcher it isolates failures per recipient, but surfaces no
// tally; failures are logged and never fatal to the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, recipients []int64, msg chat.Message)
	// NotifySuperAdmins fans the message out to every super-admin.
	NotifySuperAdmins(ctx context.Context, msg chat.Message)
}

type notifier struct {
	users     repository.UserRepository
	messenger chat.Messenger
	logger    *logger.Logger
}

// NewNotifier creates a new Notifier
func NewNotifier(users repository.UserRepository, messenger chat.Messenger, log *logger.Logger) Notifier {
	return &notifier{users: users, messenger: messenger, logger: log}
}

func (n *notifier) Notify(ctx context.Context, recipients []int64, msg chat.Message) {
	for _, recipient := range recipients {
		if err := n.messenger.Send(ctx, recipient, msg); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.Int64("recipient", recipient),
				zap.Error(err),
			)
		}
	}
}

func (n *notifier) NotifySuperAdmins(ctx context.Context, msg chat.Message) {
	ids, err := n.users.ListSuperAdminIDs(ctx)
	if err != nil {
		n.logger.Error("failed to list super-admins for notification", zap.Error(err))
		return
	}
	n.Notify(ctx, ids, msg)
}
