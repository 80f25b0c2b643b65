package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

// Event creation flow field keys.
const (
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldPlace       = "place"
	FieldDescription = "description"
	FieldMax         = "max_participants"
)

const (
	stateEvtTitle State = "evt_ask_title"
	stateEvtDate  State = "evt_ask_date"
	stateEvtTime  State = "evt_ask_time"
	stateEvtPlace State = "evt_ask_place"
	stateEvtDesc  State = "evt_ask_desc"
	stateEvtMax   State = "evt_ask_max"
)

const dateLayout = "2006-01-02"

// NewEventCreationFlow builds the manual event creation dialogue. The event
// is always created pending; a super-admin author activates it immediately,
// anyone else spawns an approval request with reviewer fan-out.
func NewEventCreationFlow(events service.EventService, approvals service.ApprovalService) *Flow {
	prompt := func(text string) func(*Instance) chat.Message {
		return func(*Instance) chat.Message { return chat.Text(text) }
	}
	return &Flow{
		Kind:          FlowEventCreation,
		ConfirmPrefix: "evt_confirm",
		CancelText:    "Создание мероприятия отменено.",
		ErrorText:     "Произошла ошибка при создании. Попробуйте позже.",
		Steps: []Step{
			{
				State:  stateEvtTitle,
				Key:    FieldTitle,
				Prompt: prompt("Введите название мероприятия:"),
			},
			{
				State:  stateEvtDate,
				Key:    FieldDate,
				Prompt: prompt("Введите дату начала (ГГГГ-ММ-ДД):"),
				Validate: func(ctx context.Context, inst *Instance, input string) (string, error) {
					if _, err := time.Parse(dateLayout, input); err != nil {
						return "", errors.New("Неверный формат даты. Используйте ГГГГ-ММ-ДД:")
					}
					return input, nil
				},
			},
			{
				State:    stateEvtTime,
				Key:      FieldTime,
				Optional: true,
				Prompt:   prompt("Введите время (или /skip):"),
			},
			{
				State:    stateEvtPlace,
				Key:      FieldPlace,
				Optional: true,
				Prompt:   prompt("Введите место (или /skip):"),
			},
			{
				State:    stateEvtDesc,
				Key:      FieldDescription,
				Optional: true,
				Prompt:   prompt("Введите описание (или /skip):"),
			},
			{
				State:    stateEvtMax,
				Key:      FieldMax,
				Optional: true,
				Prompt:   prompt("Введите макс. количество участников (0 = без ограничений, или /skip):"),
				// Non-numeric input falls back to unlimited, matching skip.
				Validate: func(ctx context.Context, inst *Instance, input string) (string, error) {
					if _, err := strconv.Atoi(input); err != nil {
						return "0", nil
					}
					return input, nil
				},
			},
		},
		Confirm: func(inst *Instance) chat.Message {
			return chat.Text(fmt.Sprintf(
				"Подтвердите создание:\n\nНазвание: %s\nДата: %s\nВремя: %s\nМесто: %s\n\nСоздать? (да/нет)",
				inst.Field(FieldTitle),
				inst.Field(FieldDate),
				orFallback(inst.Field(FieldTime), "—"),
				orFallback(inst.Field(FieldPlace), "—"),
			)).WithButtons(chat.Row(
				chat.Button{Label: "Да", Data: "evt_confirm:yes"},
				chat.Button{Label: "Нет", Data: "evt_confirm:no"},
			))
		},
		Commit: func(ctx context.Context, inst *Instance) (chat.Message, error) {
			dateStart, err := time.Parse(dateLayout, inst.Field(FieldDate))
			if err != nil {
				return chat.Message{}, fmt.Errorf("invalid collected date: %w", err)
			}
			maxParticipants, _ := strconv.Atoi(inst.Field(FieldMax))

			event, err := events.Create(ctx, &domain.Event{
				Title:           inst.Field(FieldTitle),
				DateStart:       dateStart,
				Time:            inst.Field(FieldTime),
				Place:           inst.Field(FieldPlace),
				Description:     inst.Field(FieldDescription),
				MaxParticipants: maxParticipants,
				CreatedBy:       inst.Actor.Username,
			})
			if err != nil {
				return chat.Message{}, err
			}

			if inst.Actor.Role == domain.RoleSuperAdmin {
				if _, err := events.Activate(ctx, event.ID); err != nil {
					return chat.Message{}, err
				}
				return chat.Text(fmt.Sprintf(
					"Мероприятие «%s» создано и активировано (#%d).", event.Title, event.ID)), nil
			}

			if _, err := approvals.SubmitEventCreation(ctx, inst.Actor, event); err != nil {
				return chat.Message{}, err
			}
			return chat.Text(fmt.Sprintf(
				"Мероприятие «%s» создано (#%d). Ожидает одобрения супер-админа.",
				event.Title, event.ID)), nil
		},
	}
}
