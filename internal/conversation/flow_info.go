package conversation

import (
	"context"
	"fmt"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

// Info creation flow field keys.
const (
	FieldCategory = "category"
	FieldInfoName = "info_title"
	FieldContent  = "content"
)

const (
	stateInfoCategory State = "info_ask_category"
	stateInfoTitle    State = "info_ask_title"
	stateInfoContent  State = "info_ask_content"
)

// NewInfoCreationFlow builds the knowledge-base entry dialogue.
func NewInfoCreationFlow(info service.InfoService) *Flow {
	prompt := func(text string) func(*Instance) chat.Message {
		return func(*Instance) chat.Message { return chat.Text(text) }
	}
	return &Flow{
		Kind:          FlowInfoCreation,
		ConfirmPrefix: "info_confirm",
		CancelText:    "Добавление информации отменено.",
		ErrorText:     "Произошла ошибка при сохранении. Попробуйте позже.",
		Steps: []Step{
			{
				State:  stateInfoCategory,
				Key:    FieldCategory,
				Prompt: prompt("Введите категорию (например: contact, schedule, about):"),
			},
			{
				State:  stateInfoTitle,
				Key:    FieldInfoName,
				Prompt: prompt("Введите заголовок:"),
			},
			{
				State:  stateInfoContent,
				Key:    FieldContent,
				Prompt: prompt("Введите содержание:"),
			},
		},
		Confirm: func(inst *Instance) chat.Message {
			return chat.Text(fmt.Sprintf(
				"Категория: %s\nЗаголовок: %s\nСодержание: %s\n\nСохранить?",
				inst.Field(FieldCategory), inst.Field(FieldInfoName), inst.Field(FieldContent),
			)).WithButtons(chat.Row(
				chat.Button{Label: "Да", Data: "info_confirm:yes"},
				chat.Button{Label: "Нет", Data: "info_confirm:no"},
			))
		},
		Commit: func(ctx context.Context, inst *Instance) (chat.Message, error) {
			id, err := info.Create(ctx,
				inst.Field(FieldCategory), inst.Field(FieldInfoName), inst.Field(FieldContent))
			if err != nil {
				return chat.Message{}, err
			}
			return chat.Text(fmt.Sprintf("Информация #%d сохранена.", id)), nil
		},
	}
}
