package domain

import (
	"strconv"
	"time"
)

// EventStatus is the lifecycle state of an event. Only active events are
// visible and registerable by regular users; pending events exist for admin
// review. Archived is terminal.
type EventStatus string

const (
	EventDraft    EventStatus = "draft"
	EventPending  EventStatus = "pending"
	EventActive   EventStatus = "active"
	EventArchived EventStatus = "archived"
)

// IsValid returns true if the status is a known event status.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventDraft, EventPending, EventActive, EventArchived:
		return true
	}
	return false
}

// Event is a community event with optional capacity.
// MaxParticipants == 0 means unlimited.
type Event struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Type            string      `json:"type,omitempty"`
	DateStart       time.Time   `json:"date_start"`
	DateEnd         *time.Time  `json:"date_end,omitempty"`
	Time            string      `json:"time,omitempty"`
	Place           string      `json:"place,omitempty"`
	Description     string      `json:"description,omitempty"`
	MaxParticipants int         `json:"max_participants"`
	Status          EventStatus `json:"status"`
	CreatedBy       string      `json:"created_by,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// HasCapacityLimit reports whether registrations are capped.
func (e *Event) HasCapacityLimit() bool {
	return e.MaxParticipants > 0
}

// Registration is one person signed up for one event. The (EventID,
// TelegramID) pair is unique: re-registering overwrites the prior submission.
type Registration struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"event_id"`
	Username     string    `json:"username,omitempty"`
	TelegramID   int64     `json:"telegram_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Level        string    `json:"level,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Info is a freeform knowledge-base entry grouped by category; consumed by
// direct lookup and as LLM grounding context.
type Info struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
