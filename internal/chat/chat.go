// Package chat defines the contract between the bot core and the external
// chat transport. The transport (Telegram or any compatible messenger) is an
// external collaborator: it feeds Updates in and consumes Messages out.
package chat

import "context"

// Update is a single inbound event from the chat transport: either a text
// message or an inline-button press (CallbackData non-empty).
type Update struct {
	UpdateID     int64  `json:"update_id"`
	ChatID       int64  `json:"chat_id"`
	UserID       int64  `json:"user_id"`
	Username     string `json:"username,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	Text         string `json:"text,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// IsCallback reports whether the update is an inline-button press.
func (u *Update) IsCallback() bool {
	return u.CallbackData != ""
}

// Button is an inline keyboard button.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Message is an outbound reply, optionally carrying inline buttons
// (one slice per keyboard row).
type Message struct {
	Text    string     `json:"text"`
	Buttons [][]Button `json:"buttons,omitempty"`
}

// Text builds a plain text message.
func Text(s string) Message {
	return Message{Text: s}
}

// WithButtons attaches inline keyboard rows to a message.
func (m Message) WithButtons(rows ...[]Button) Message {
	m.Buttons = rows
	return m
}

// Row builds a single keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Messenger delivers outbound messages to a chat. Implementations must be
// safe for concurrent use; a failed send affects only that recipient.
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}
