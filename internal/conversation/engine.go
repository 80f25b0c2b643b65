package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

// SkipCommand keeps an optional field empty (or keeps its prefilled value).
const SkipCommand = "/skip"

// Step is one input-collection state of a flow. Input is validated before it
// is stored; a validation failure re-prompts the same state without
// advancing.
type Step struct {
	State    State
	Key      string
	Optional bool
	Prompt   func(inst *Instance) chat.Message
	// Validate normalizes the raw input. The returned error's text is shown
	// to the user as the re-prompt. Nil means any non-empty text is accepted
	// as-is.
	Validate func(ctx context.Context, inst *Instance, input string) (string, error)
}

// Flow is a linear dialogue: its steps run in order, then a binary confirm.
// Commit is the flow's single side-effecting action; it runs at most once
// per instance.
type Flow struct {
	Kind          FlowKind
	Steps         []Step
	ConfirmPrefix string
	Confirm       func(inst *Instance) chat.Message
	Commit        func(ctx context.Context, inst *Instance) (chat.Message, error)
	CancelText    string
	ErrorText     string
}

// Engine runs conversation flows, one instance per (actor, chat) scope.
// Within a scope, inputs are processed strictly in order under a per-scope
// mutex; distinct scopes never block each other.
type Engine struct {
	store  Store
	flows  map[FlowKind]*Flow
	locks  sync.Map
	logger *logger.Logger
}

// NewEngine creates a new Engine
func NewEngine(store Store, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		flows:  make(map[FlowKind]*Flow),
		logger: log,
	}
}

// Register adds a flow definition. Call during wiring, before any traffic.
func (e *Engine) Register(flow *Flow) {
	e.flows[flow.Kind] = flow
}

func (e *Engine) lockScope(actorID, chatID int64) func() {
	key := scopeKey(actorID, chatID)
	mu, _ := e.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Start begins a flow for the scope, implicitly cancelling any prior
// instance: flows are entered via explicit triggers that supersede prior
// intent. Returns the first prompt.
func (e *Engine) Start(ctx context.Context, kind FlowKind, actor *domain.User, chatID int64, seed map[string]string) (chat.Message, error) {
	flow, ok := e.flows[kind]
	if !ok {
		return chat.Message{}, fmt.Errorf("unknown flow kind: %s", kind)
	}

	unlock := e.lockScope(actor.TelegramID, chatID)
	defer unlock()

	inst := NewInstance(kind, actor, chatID, seed)
	inst.Current = flow.Steps[0].State
	if err := e.store.Put(ctx, actor.TelegramID, chatID, inst); err != nil {
		return chat.Message{}, err
	}

	e.logger.Info("conversation started",
		zap.String("flow", string(kind)),
		zap.String("instance_id", inst.ID),
		zap.Int64("actor", actor.TelegramID),
	)
	return flow.Steps[0].Prompt(inst), nil
}

// Active reports whether the scope has an in-flight instance.
func (e *Engine) Active(ctx context.Context, actorID, chatID int64) (bool, error) {
	inst, err := e.store.Get(ctx, actorID, chatID)
	return inst != nil, err
}

// HandleText feeds a text message to the scope's active instance. The second
// return is false when no instance is active (the input belongs to someone
// else, e.g. the Q&A path).
func (e *Engine) HandleText(ctx context.Context, actorID, chatID int64, text string) (chat.Message, bool, error) {
	unlock := e.lockScope(actorID, chatID)
	defer unlock()

	inst, err := e.store.Get(ctx, actorID, chatID)
	if err != nil || inst == nil {
		return chat.Message{}, false, err
	}
	flow := e.flows[inst.Kind]
	if flow == nil {
		return chat.Message{}, false, fmt.Errorf("instance references unknown flow: %s", inst.Kind)
	}

	// Text during confirm neither advances nor aborts; re-show the question.
	if inst.Current == StateConfirm {
		return flow.Confirm(inst), true, nil
	}

	idx := stepIndex(flow, inst.Current)
	if idx < 0 {
		return chat.Message{}, false, fmt.Errorf("instance in unknown state: %s", inst.Current)
	}
	step := flow.Steps[idx]

	input := strings.TrimSpace(text)
	if input == SkipCommand {
		if !step.Optional {
			return step.Prompt(inst), true, nil
		}
		// A prefilled value survives the skip.
		if !inst.Has(step.Key) {
			inst.Fields[step.Key] = ""
		}
	} else {
		value := input
		if step.Validate != nil {
			value, err = step.Validate(ctx, inst, input)
			if err != nil {
				return chat.Text(err.Error()), true, nil
			}
		}
		inst.Fields[step.Key] = value
	}

	var reply chat.Message
	if idx+1 < len(flow.Steps) {
		next := flow.Steps[idx+1]
		inst.Current = next.State
		reply = next.Prompt(inst)
	} else {
		inst.Current = StateConfirm
		reply = flow.Confirm(inst)
	}
	if err := e.store.Put(ctx, actorID, chatID, inst); err != nil {
		return chat.Message{}, false, err
	}
	return reply, true, nil
}

// HandleCallback feeds a button press to the scope's active instance. Only
// the flow's own confirm buttons are consumed; anything else is reported as
// unhandled. A confirm pressed after the instance terminated is unhandled
// too, which makes the commit at-most-once.
func (e *Engine) HandleCallback(ctx context.Context, actorID, chatID int64, data string) (chat.Message, bool, error) {
	unlock := e.lockScope(actorID, chatID)
	defer unlock()

	inst, err := e.store.Get(ctx, actorID, chatID)
	if err != nil || inst == nil {
		return chat.Message{}, false, err
	}
	flow := e.flows[inst.Kind]
	if flow == nil {
		return chat.Message{}, false, fmt.Errorf("instance references unknown flow: %s", inst.Kind)
	}
	if inst.Current != StateConfirm {
		return chat.Message{}, false, nil
	}

	choice, ok := strings.CutPrefix(data, flow.ConfirmPrefix+":")
	if !ok {
		return chat.Message{}, false, nil
	}

	switch choice {
	case "no":
		if err := e.store.Delete(ctx, actorID, chatID); err != nil {
			return chat.Message{}, false, err
		}
		return chat.Text(flow.CancelText), true, nil
	case "yes":
		reply, commitErr := flow.Commit(ctx, inst)
		if err := e.store.Delete(ctx, actorID, chatID); err != nil {
			return chat.Message{}, false, err
		}
		if commitErr != nil {
			e.logger.Error("flow commit failed",
				zap.String("flow", string(inst.Kind)),
				zap.String("instance_id", inst.ID),
				zap.Error(commitErr),
			)
			return chat.Text(flow.ErrorText), true, nil
		}
		e.logger.Info("flow committed",
			zap.String("flow", string(inst.Kind)),
			zap.String("instance_id", inst.ID),
		)
		return reply, true, nil
	default:
		return chat.Message{}, false, nil
	}
}

// Cancel aborts the scope's active instance, discarding collected fields
// with no domain mutation. Unhandled when nothing is active.
func (e *Engine) Cancel(ctx context.Context, actorID, chatID int64) (chat.Message, bool, error) {
	unlock := e.lockScope(actorID, chatID)
	defer unlock()

	inst, err := e.store.Get(ctx, actorID, chatID)
	if err != nil || inst == nil {
		return chat.Message{}, false, err
	}
	flow := e.flows[inst.Kind]
	if err := e.store.Delete(ctx, actorID, chatID); err != nil {
		return chat.Message{}, false, err
	}
	text := "Отменено."
	if flow != nil && flow.CancelText != "" {
		text = flow.CancelText
	}
	return chat.Text(text), true, nil
}

func stepIndex(flow *Flow, state State) int {
	for i, step := range flow.Steps {
		if step.State == state {
			return i
		}
	}
	return -1
}
