package conversation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

// Registration flow field and seed keys.
const (
	FieldEventID    = "event_id"
	FieldEventTitle = "event_title"
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldLevel      = "level"
)

const (
	stateRegName  State = "reg_ask_name"
	stateRegPhone State = "reg_ask_phone"
	stateRegLevel State = "reg_ask_level"
)

// RegistrationSeed prepares the seed for an event-registration flow. The
// actor's stored name prefills the first step.
func RegistrationSeed(event *domain.Event, actor *domain.User) map[string]string {
	seed := map[string]string{
		FieldEventID:    strconv.FormatInt(event.ID, 10),
		FieldEventTitle: event.Title,
	}
	if actor.FullName != "" {
		seed[FieldName] = actor.FullName
	}
	return seed
}

// NewRegistrationFlow builds the event sign-up dialogue: name (prefilled,
// editable) then optional phone and level, then confirm. Capacity is checked
// before the flow starts, not here.
func NewRegistrationFlow(registrations service.RegistrationService) *Flow {
	return &Flow{
		Kind:          FlowRegistration,
		ConfirmPrefix: "reg_confirm",
		CancelText:    "Запись отменена.",
		ErrorText:     "Произошла ошибка при записи. Попробуйте позже.",
		Steps: []Step{
			{
				State:    stateRegName,
				Key:      FieldName,
				Optional: true,
				Prompt: func(inst *Instance) chat.Message {
					title := inst.Field(FieldEventTitle)
					if name := inst.Field(FieldName); name != "" {
						return chat.Text(fmt.Sprintf(
							"Запись на «%s»\n\nВаше имя: %s\nЕсли хотите изменить, отправьте другое имя.\nИли отправьте /skip чтобы оставить как есть.",
							title, name))
					}
					return chat.Text(fmt.Sprintf("Запись на «%s»\n\nВведите ваше полное имя:", title))
				},
			},
			{
				State:    stateRegPhone,
				Key:      FieldPhone,
				Optional: true,
				Prompt: func(inst *Instance) chat.Message {
					return chat.Text("Введите номер телефона (или /skip чтобы пропустить):")
				},
			},
			{
				State:    stateRegLevel,
				Key:      FieldLevel,
				Optional: true,
				Prompt: func(inst *Instance) chat.Message {
					return chat.Text("Укажите ваш уровень/опыт (или /skip чтобы пропустить):")
				},
			},
		},
		Confirm: func(inst *Instance) chat.Message {
			return chat.Text(fmt.Sprintf(
				"Подтвердите запись на «%s»:\n\nИмя: %s\nТелефон: %s\nУровень: %s\n\nВсё верно? (да/нет)",
				inst.Field(FieldEventTitle),
				orFallback(inst.Field(FieldName), "—"),
				orFallback(inst.Field(FieldPhone), "не указан"),
				orFallback(inst.Field(FieldLevel), "не указан"),
			)).WithButtons(chat.Row(
				chat.Button{Label: "Да", Data: "reg_confirm:yes"},
				chat.Button{Label: "Нет, отмена", Data: "reg_confirm:no"},
			))
		},
		Commit: func(ctx context.Context, inst *Instance) (chat.Message, error) {
			eventID, err := strconv.ParseInt(inst.Field(FieldEventID), 10, 64)
			if err != nil {
				return chat.Message{}, fmt.Errorf("invalid event reference: %w", err)
			}
			name := inst.Field(FieldName)
			if name == "" {
				name = inst.Actor.FullName
			}
			_, err = registrations.Register(ctx, &domain.Registration{
				EventID:    eventID,
				TelegramID: inst.Actor.TelegramID,
				Username:   inst.Actor.Username,
				FullName:   name,
				Phone:      inst.Field(FieldPhone),
				Level:      inst.Field(FieldLevel),
			})
			if err != nil {
				return chat.Message{}, err
			}
			return chat.Text(fmt.Sprintf("Вы записаны на «%s»!", inst.Field(FieldEventTitle))), nil
		},
	}
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
