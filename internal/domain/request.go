package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RequestStatus is the approval workflow state of an admin request.
// A decision transition (approve/reject) is valid only from pending and is
// applied as a single conditional update, so two racing reviewers produce
// exactly one winner. Terminal once decided.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// IsTerminal returns true once the request has been decided.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// RequestType discriminates the approval side effect. The set is closed;
// each type has a fixed payload shape.
type RequestType string

const (
	RequestAdminAccess     RequestType = "admin_access"
	RequestEventCreation   RequestType = "event_creation"
	RequestEventActivation RequestType = "event_activation"
	RequestBroadcast       RequestType = "broadcast"
)

// IsValid returns true if the type is a known request type.
func (t RequestType) IsValid() bool {
	switch t {
	case RequestAdminAccess, RequestEventCreation, RequestEventActivation, RequestBroadcast:
		return true
	}
	return false
}

// ErrPayloadMismatch is returned when a payload is decoded for the wrong
// request type.
var ErrPayloadMismatch = errors.New("payload does not match request type")

// EventPayload references the event an event_creation or event_activation
// request should activate on approval.
type EventPayload struct {
	EventID    int64  `json:"event_id"`
	EventTitle string `json:"event_title,omitempty"`
}

// BroadcastPayload carries the message a broadcast request should fan out
// on approval.
type BroadcastPayload struct {
	Message string `json:"message"`
	Scope   string `json:"scope,omitempty"`
}

// AdminRequest is the approval-workflow unit of work: a privileged mutation
// awaiting super-admin sign-off.
type AdminRequest struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	TelegramID     int64           `json:"telegram_id,omitempty"`
	FullName       string          `json:"full_name,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	RequestedTable string          `json:"requested_table,omitempty"`
	Type           RequestType     `json:"request_type"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Comment        string          `json:"comment,omitempty"`
	Status         RequestStatus   `json:"status"`
	ReviewedBy     string          `json:"reviewed_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
}

// EventPayload decodes the payload of an event_creation/event_activation request.
func (r *AdminRequest) EventPayload() (EventPayload, error) {
	if r.Type != RequestEventCreation && r.Type != RequestEventActivation {
		return EventPayload{}, fmt.Errorf("%w: %s has no event payload", ErrPayloadMismatch, r.Type)
	}
	var p EventPayload
	if len(r.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return EventPayload{}, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return p, nil
}

// BroadcastPayload decodes the payload of a broadcast request.
func (r *AdminRequest) BroadcastPayload() (BroadcastPayload, error) {
	if r.Type != RequestBroadcast {
		return BroadcastPayload{}, fmt.Errorf("%w: %s has no broadcast payload", ErrPayloadMismatch, r.Type)
	}
	var p BroadcastPayload
	if len(r.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return BroadcastPayload{}, fmt.Errorf("failed to decode broadcast payload: %w", err)
	}
	return p, nil
}

// NewEventPayload encodes an event reference for storage on a request.
func NewEventPayload(eventID int64, title string) json.RawMessage {
	raw, _ := json.Marshal(EventPayload{EventID: eventID, EventTitle: title})
	return raw
}

// NewBroadcastPayload encodes a broadcast message for storage on a request.
func NewBroadcastPayload(message, scope string) json.RawMessage {
	raw, _ := json.Marshal(BroadcastPayload{Message: message, Scope: scope})
	return raw
}
