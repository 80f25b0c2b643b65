package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/hwoarang89/solomon-church-bot/internal/domain"
)

// FlowKind identifies which dialogue flow an instance is running.
type FlowKind string

const (
	FlowRegistration  FlowKind = "registration"
	FlowEventCreation FlowKind = "event_creation"
	FlowInfoCreation  FlowKind = "info_creation"
	FlowAICommand     FlowKind = "ai_command"
	FlowBroadcast     FlowKind = "broadcast"
)

// State is one position inside a flow. Every flow ends in StateConfirm; the
// confirm step is the only state with externally visible side effects.
type State string

// StateConfirm is the shared terminal-pending state of every flow.
const StateConfirm State = "confirm"

// Instance is one in-flight conversation scoped to an (actor, chat) pair.
// Fields accumulate validated input; nothing is persisted to the domain
// until the confirm commit. The actor identity is captured at flow entry
// and reused for the instance's lifetime.
type Instance struct {
	ID        string            `json:"id"`
	Kind      FlowKind          `json:"kind"`
	Current   State             `json:"current"`
	Fields    map[string]string `json:"fields"`
	Actor     *domain.User      `json:"actor"`
	ChatID    int64             `json:"chat_id"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewInstance creates an instance positioned before its first step.
func NewInstance(kind FlowKind, actor *domain.User, chatID int64, seed map[string]string) *Instance {
	fields := make(map[string]string, len(seed))
	for k, v := range seed {
		fields[k] = v
	}
	return &Instance{
		ID:        uuid.NewString(),
		Kind:      kind,
		Fields:    fields,
		Actor:     actor,
		ChatID:    chatID,
		CreatedAt: time.Now(),
	}
}

// Field returns a collected field, empty string when absent.
func (i *Instance) Field(key string) string {
	return i.Fields[key]
}

// Has reports whether a field was collected (including an explicit skip).
func (i *Instance) Has(key string) bool {
	_, ok := i.Fields[key]
	return ok
}
