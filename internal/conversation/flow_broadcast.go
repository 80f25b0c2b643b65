package conversation

import (
	"context"
	"fmt"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

// FieldMessage holds the composed broadcast text.
const FieldMessage = "message"

const stateBcText State = "bc_ask_text"

// NewBroadcastFlow builds the broadcast composition dialogue. A super-admin
// delivers directly and sees the tally; an admin's confirm files a broadcast
// approval request instead.
func NewBroadcastFlow(broadcast service.BroadcastService, approvals service.ApprovalService) *Flow {
	return &Flow{
		Kind:          FlowBroadcast,
		ConfirmPrefix: "bc_confirm",
		CancelText:    "Рассылка отменена.",
		ErrorText:     "Произошла ошибка при рассылке. Попробуйте позже.",
		Steps: []Step{
			{
				State: stateBcText,
				Key:   FieldMessage,
				Prompt: func(*Instance) chat.Message {
					return chat.Text("Введите текст рассылки (будет отправлен всем пользователям):")
				},
			},
		},
		Confirm: func(inst *Instance) chat.Message {
			return chat.Text(fmt.Sprintf(
				"Текст рассылки:\n\n%s\n\nОтправить?", inst.Field(FieldMessage),
			)).WithButtons(chat.Row(
				chat.Button{Label: "Да, отправить", Data: "bc_confirm:yes"},
				chat.Button{Label: "Отмена", Data: "bc_confirm:no"},
			))
		},
		Commit: func(ctx context.Context, inst *Instance) (chat.Message, error) {
			message := inst.Field(FieldMessage)

			if inst.Actor.Role == domain.RoleSuperAdmin {
				tally, err := broadcast.DeliverToAll(ctx, message)
				if err != nil {
					return chat.Message{}, err
				}
				return chat.Text(fmt.Sprintf(
					"Рассылка отправлена %d/%d пользователям.", tally.Sent, tally.Total)), nil
			}

			req, err := approvals.SubmitBroadcast(ctx, inst.Actor, message)
			if err != nil {
				return chat.Message{}, err
			}
			return chat.Text(fmt.Sprintf(
				"Заявка #%d на рассылку отправлена супер-админу.", req.ID)), nil
		},
	}
}
