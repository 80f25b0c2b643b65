package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/ai"
	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/repository"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

// FieldCommand holds the parsed command as JSON between the parse step and
// the confirm commit.
const FieldCommand = "command"

const stateCmdText State = "cmd_ask_text"

// NewAICommandFlow builds the natural-language admin command dialogue: one
// free-text step routed through the model parser, then a confirm that
// dispatches the recognized action. Unrecognized input still reaches the
// confirm step and commits as an explanatory no-op.
func NewAICommandFlow(
	assistant ai.Assistant,
	users repository.UserRepository,
	events service.EventService,
	info service.InfoService,
) *Flow {
	return &Flow{
		Kind:          FlowAICommand,
		ConfirmPrefix: "ai_confirm",
		CancelText:    "Текстовая команда отменена.",
		ErrorText:     "Ошибка при выполнении команды.",
		Steps: []Step{
			{
				State: stateCmdText,
				Key:   FieldCommand,
				Prompt: func(*Instance) chat.Message {
					return chat.Text("Введите текстовую команду на естественном языке.\n" +
						"Например: «Создай мероприятие Библейская школа на 20 января в 18:00»")
				},
				Validate: func(ctx context.Context, inst *Instance, input string) (string, error) {
					tables, err := users.ListTableAccess(ctx, inst.Actor.Handle())
					if err != nil {
						tables = nil
					}
					cmd, err := assistant.ParseCommand(ctx, input, inst.Actor.Handle(), tables)
					if err != nil {
						return "", fmt.Errorf("failed to parse command: %w", err)
					}
					raw, err := json.Marshal(cmd)
					if err != nil {
						return "", fmt.Errorf("failed to encode command: %w", err)
					}
					return string(raw), nil
				},
			},
		},
		Confirm: func(inst *Instance) chat.Message {
			confirmation := "—"
			if cmd, err := decodeCommand(inst); err == nil && cmd.Confirmation != "" {
				confirmation = cmd.Confirmation
			}
			return chat.Text(fmt.Sprintf("Распознано: %s\n\nВыполнить?", confirmation)).
				WithButtons(chat.Row(
					chat.Button{Label: "Да", Data: "ai_confirm:yes"},
					chat.Button{Label: "Нет", Data: "ai_confirm:no"},
				))
		},
		Commit: func(ctx context.Context, inst *Instance) (chat.Message, error) {
			cmd, err := decodeCommand(inst)
			if err != nil {
				return chat.Message{}, err
			}
			return dispatchCommand(ctx, cmd, inst.Actor, events, info)
		},
	}
}

func decodeCommand(inst *Instance) (*ai.Command, error) {
	var cmd ai.Command
	if err := json.Unmarshal([]byte(inst.Field(FieldCommand)), &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode collected command: %w", err)
	}
	return &cmd, nil
}

// dispatchCommand executes the subset of recognized actions; the rest get
// an explanatory no-op reply.
func dispatchCommand(
	ctx context.Context,
	cmd *ai.Command,
	actor *domain.User,
	events service.EventService,
	info service.InfoService,
) (chat.Message, error) {
	switch cmd.Action {
	case ai.ActionCreateEvent:
		dateStart := time.Now()
		if cmd.Params.DateStart != "" {
			if parsed, err := time.Parse(dateLayout, cmd.Params.DateStart); err == nil {
				dateStart = parsed
			}
		}
		title := cmd.Params.Title
		if title == "" {
			title = "Без названия"
		}
		event, err := events.Create(ctx, &domain.Event{
			Title:           title,
			DateStart:       dateStart,
			Time:            cmd.Params.Time,
			Place:           cmd.Params.Place,
			Description:     cmd.Params.Description,
			MaxParticipants: cmd.Params.MaxParticipants,
			CreatedBy:       actor.Username,
		})
		if err != nil {
			return chat.Message{}, err
		}
		return chat.Text(fmt.Sprintf(
			"Мероприятие «%s» создано (#%d), ожидает одобрения.", event.Title, event.ID)), nil

	case ai.ActionCreateInfo:
		category := cmd.Params.Category
		if category == "" {
			category = "general"
		}
		id, err := info.Create(ctx, category, cmd.Params.Title, cmd.Params.Content)
		if err != nil {
			return chat.Message{}, err
		}
		return chat.Text(fmt.Sprintf("Информация #%d создана.", id)), nil

	case ai.ActionArchiveEvent:
		if cmd.Params.ID == 0 {
			return chat.Text("Не удалось определить мероприятие."), nil
		}
		if _, err := events.Archive(ctx, cmd.Params.ID); err != nil {
			return chat.Message{}, err
		}
		return chat.Text(fmt.Sprintf("Мероприятие #%d архивировано.", cmd.Params.ID)), nil

	default:
		return chat.Text(fmt.Sprintf(
			"Действие «%s» не реализовано или не распознано.", cmd.Action)), nil
	}
}
