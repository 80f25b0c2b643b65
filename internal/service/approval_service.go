package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// ApprovalService runs the two-tier approval workflow: admins file requests,
// super-admins decide them, and an approval applies a type-specific side
// effect exactly once. Filing a request fans a notification out to all
// super-admins; deciding it notifies the requester best-effort.
type ApprovalService interface {
	// SubmitAdminAccess files an admin-access request. Returns ErrAlreadyAdmin
	// when the requester already holds the role.
	SubmitAdminAccess(ctx context.Context, requester *domain.User, table, comment string) (*domain.AdminRequest, error)
	// SubmitEventCreation files a request to activate a freshly created
	// pending event.
	SubmitEventCreation(ctx context.Context, requester *domain.User, event *domain.Event) (*domain.AdminRequest, error)
	// SubmitEventActivation files a request to activate an existing event.
	SubmitEventActivation(ctx context.Context, requester *domain.User, event *domain.Event) (*domain.AdminRequest, error)
	// SubmitBroadcast files a request to broadcast a message to everyone.
	SubmitBroadcast(ctx context.Context, requester *domain.User, message string) (*domain.AdminRequest, error)
	ListPending(ctx context.Context) ([]*domain.AdminRequest, error)
	// Decide applies the approve/reject transition. Exactly one of several
	// racing reviewers wins; the rest get ErrAlreadyDecided. On approval the
	// side effect for the request's type runs before Decide returns.
	Decide(ctx context.Context, id int64, outcome domain.RequestStatus, reviewer *domain.User) (*domain.AdminRequest, error)
}

type approvalService struct {
	requests  repository.RequestRepository
	users     repository.UserRepository
	events    repository.EventRepository
	broadcast BroadcastService
	notifier  Notifier
	logger    *logger.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	requests repository.RequestRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	broadcast BroadcastService,
	notifier Notifier,
	log *logger.Logger,
) ApprovalService {
	return &approvalService{
		requests:  requests,
		users:     users,
		events:    events,
		broadcast: broadcast,
		notifier:  notifier,
		logger:    log,
	}
}

func (s *approvalService) SubmitAdminAccess(ctx context.Context, requester *domain.User, table, comment string) (*domain.AdminRequest, error) {
	if requester.Role.IsAdmin() {
		return nil, ErrAlreadyAdmin
	}
	return s.submit(ctx, &domain.AdminRequest{
		Username:       requester.Handle(),
		TelegramID:     requester.TelegramID,
		FullName:       requester.FullName,
		Phone:          requester.Phone,
		RequestedTable: table,
		Type:           domain.RequestAdminAccess,
		Comment:        comment,
	})
}

func (s *approvalService) SubmitEventCreation(ctx context.Context, requester *domain.User, event *domain.Event) (*domain.AdminRequest, error) {
	return s.submit(ctx, &domain.AdminRequest{
		Username:   requester.Handle(),
		TelegramID: requester.TelegramID,
		FullName:   requester.FullName,
		Type:       domain.RequestEventCreation,
		Payload:    domain.NewEventPayload(event.ID, event.Title),
		Comment:    fmt.Sprintf("Мероприятие «%s»", event.Title),
	})
}

func (s *approvalService) SubmitEventActivation(ctx context.Context, requester *domain.User, event *domain.Event) (*domain.AdminRequest, error) {
	return s.submit(ctx, &domain.AdminRequest{
		Username:   requester.Handle(),
		TelegramID: requester.TelegramID,
		FullName:   requester.FullName,
		Type:       domain.RequestEventActivation,
		Payload:    domain.NewEventPayload(event.ID, event.Title),
		Comment:    fmt.Sprintf("Активация мероприятия «%s»", event.Title),
	})
}

func (s *approvalService) SubmitBroadcast(ctx context.Context, requester *domain.User, message string) (*domain.AdminRequest, error) {
	return s.submit(ctx, &domain.AdminRequest{
		Username:   requester.Handle(),
		TelegramID: requester.TelegramID,
		FullName:   requester.FullName,
		Type:       domain.RequestBroadcast,
		Payload:    domain.NewBroadcastPayload(message, "all"),
		Comment:    "Рассылка",
	})
}

func (s *approvalService) submit(ctx context.Context, req *domain.AdminRequest) (*domain.AdminRequest, error) {
	created, err := s.requests.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.logger.Info("request filed",
		zap.Int64("request_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("username", created.Username),
	)
	s.notifier.NotifySuperAdmins(ctx, ReviewMessage(created))
	return created, nil
}

func (s *approvalService) ListPending(ctx context.Context) ([]*domain.AdminRequest, error) {
	return s.requests.ListPending(ctx)
}

func (s *approvalService) Decide(ctx context.Context, id int64, outcome domain.RequestStatus, reviewer *domain.User) (*domain.AdminRequest, error) {
	if !outcome.IsTerminal() {
		return nil, fmt.Errorf("invalid decision outcome: %s", outcome)
	}

	decided, err := s.requests.Decide(ctx, id, outcome, reviewer.Handle())
	if err != nil {
		return nil, fmt.Errorf("failed to decide request: %w", err)
	}
	if decided == nil {
		existing, err := s.requests.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up request: %w", err)
		}
		if existing == nil {
			return nil, ErrRequestNotFound
		}
		return nil, ErrAlreadyDecided
	}

	s.logger.Info("request decided",
		zap.Int64("request_id", decided.ID),
		zap.String("type", string(decided.Type)),
		zap.String("outcome", string(outcome)),
		zap.String("reviewer", reviewer.Handle()),
	)

	if outcome == domain.RequestApproved {
		s.applySideEffect(ctx, decided)
	}
	s.notifyRequester(ctx, decided)
	return decided, nil
}

// applySideEffect runs the approved request's mutation. The at-most-once
// guarantee comes from the decide transition itself; failures here are
// logged, never rolled back.
func (s *approvalService) applySideEffect(ctx context.Context, req *domain.AdminRequest) {
	switch req.Type {
	case domain.RequestAdminAccess:
		ok, err := s.users.SetRole(ctx, req.Username, domain.RoleAdmin)
		if err != nil || !ok {
			s.logger.Error("failed to promote requester",
				zap.String("username", req.Username),
				zap.Bool("found", ok),
				zap.Error(err),
			)
			return
		}
		if req.RequestedTable != "" {
			if err := s.users.GrantTableAccess(ctx, req.Username, req.RequestedTable); err != nil {
				s.logger.Error("failed to grant table access",
					zap.String("username", req.Username),
					zap.String("table", req.RequestedTable),
					zap.Error(err),
				)
			}
		}
		s.logger.Info("admin role granted", zap.String("username", req.Username))

	case domain.RequestEventCreation, domain.RequestEventActivation:
		payload, err := req.EventPayload()
		if err != nil || payload.EventID == 0 {
			s.logger.Warn("approved event request without an event reference",
				zap.Int64("request_id", req.ID),
				zap.Error(err),
			)
			return
		}
		event, err := s.events.UpdateStatus(ctx, payload.EventID, domain.EventActive)
		if err != nil {
			s.logger.Error("failed to activate event",
				zap.Int64("event_id", payload.EventID),
				zap.Error(err),
			)
			return
		}
		if event == nil {
			s.logger.Warn("approved event request references a missing event",
				zap.Int64("request_id", req.ID),
				zap.Int64("event_id", payload.EventID),
			)
			return
		}
		s.logger.Info("event activated", zap.Int64("event_id", event.ID))

	case domain.RequestBroadcast:
		payload, err := req.BroadcastPayload()
		if err != nil || payload.Message == "" {
			s.logger.Warn("approved broadcast request without a message",
				zap.Int64("request_id", req.ID),
				zap.Error(err),
			)
			return
		}
		if _, err := s.broadcast.DeliverToAll(ctx, payload.Message); err != nil {
			s.logger.Error("failed to deliver approved broadcast",
				zap.Int64("request_id", req.ID),
				zap.Error(err),
			)
		}

	default:
		s.logger.Warn("approved request of unknown type",
			zap.Int64("request_id", req.ID),
			zap.String("type", string(req.Type)),
		)
	}
}

func (s *approvalService) notifyRequester(ctx context.Context, req *domain.AdminRequest) {
	if req.TelegramID == 0 {
		return
	}
	statusText := "одобрена"
	if req.Status == domain.RequestRejected {
		statusText = "отклонена"
	}
	text := fmt.Sprintf("Ваша заявка #%d (%s) была %s.", req.ID, req.Type, statusText)
	s.notifier.Notify(ctx, []int64{req.TelegramID}, chat.Text(text))
}

// ReviewMessage renders a pending request with approve/reject buttons for
// reviewer fan-out and the /pending listing.
func ReviewMessage(req *domain.AdminRequest) chat.Message {
	text := fmt.Sprintf(
		"Заявка #%d\nТип: %s\nОт: %s (@%s)\nТелефон: %s\nКомментарий: %s\nДата: %s",
		req.ID, req.Type,
		orDash(req.FullName), req.Username,
		orDash(req.Phone), orDash(req.Comment),
		req.CreatedAt.Format("2006-01-02 15:04"),
	)
	return chat.Text(text).WithButtons(chat.Row(
		chat.Button{Label: "Одобрить", Data: fmt.Sprintf("sa:approve:%d", req.ID)},
		chat.Button{Label: "Отклонить", Data: fmt.Sprintf("sa:reject:%d", req.ID)},
	))
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
