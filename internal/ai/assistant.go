package ai

import "context"

// Action is the operation a parsed free-text admin command maps to.
// The set is closed; anything the model cannot map lands on ActionUnknown.
type Action string

const (
	ActionCreateEvent  Action = "create_event"
	ActionUpdateEvent  Action = "update_event"
	ActionArchiveEvent Action = "archive_event"
	ActionCreateInfo   Action = "create_info"
	ActionUpdateInfo   Action = "update_info"
	ActionDeleteInfo   Action = "delete_info"
	ActionBroadcast    Action = "broadcast"
	ActionUnknown      Action = "unknown"
)

// IsValid returns true if the action is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreateEvent, ActionUpdateEvent, ActionArchiveEvent,
		ActionCreateInfo, ActionUpdateInfo, ActionDeleteInfo,
		ActionBroadcast, ActionUnknown:
		return true
	}
	return false
}

// CommandParams carries the extracted slots of a parsed command. Fields the
// model could not determine stay zero.
type CommandParams struct {
	ID              int64  `json:"id,omitempty"`
	Title           string `json:"title,omitempty"`
	DateStart       string `json:"date_start,omitempty"`
	DateEnd         string `json:"date_end,omitempty"`
	Time            string `json:"time,omitempty"`
	Place           string `json:"place,omitempty"`
	Description     string `json:"description,omitempty"`
	MaxParticipants int    `json:"max_participants,omitempty"`
	Category        string `json:"category,omitempty"`
	Content         string `json:"content,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Command is a structured admin command recovered from natural language,
// plus the confirmation question shown before it executes.
type Command struct {
	Action       Action        `json:"action"`
	Params       CommandParams `json:"params"`
	Confirmation string        `json:"confirmation"`
}

// Assistant answers user questions and parses admin commands. Answer never
// surfaces provider errors to the caller: failures degrade to a polite
// fallback reply, matching how the rest of the bot treats the model as a
// best-effort helper.
type Assistant interface {
	// Answer replies to a free-text question grounded on the supplied
	// knowledge context. The reply may carry a registration marker; use
	// ExtractRegistrationIntent to detect it.
	Answer(ctx context.Context, question, userName, knowledge string) (string, error)
	// ParseCommand maps a free-text admin command onto a Command. Unparseable
	// input yields ActionUnknown with a human-readable confirmation, not an error.
	ParseCommand(ctx context.Context, text, adminUsername string, tables []string) (*Command, error)
}
