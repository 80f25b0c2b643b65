package domain

import (
	"testing"
)

func TestRequestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   RequestStatus
		expected bool
	}{
		{RequestPending, false},
		{RequestApproved, true},
		{RequestRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRequestTypeIsValid(t *testing.T) {
	tests := []struct {
		typ      RequestType
		expected bool
	}{
		{RequestAdminAccess, true},
		{RequestEventCreation, true},
		{RequestEventActivation, true},
		{RequestBroadcast, true},
		{RequestType("delete_everything"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAdminRequestEventPayload(t *testing.T) {
	req := &AdminRequest{
		Type:    RequestEventCreation,
		Payload: NewEventPayload(42, "Библейская школа"),
	}

	p, err := req.EventPayload()
	if err != nil {
		t.Fatalf("EventPayload failed: %v", err)
	}
	if p.EventID != 42 {
		t.Errorf("EventID = %d, want 42", p.EventID)
	}
	if p.EventTitle != "Библейская школа" {
		t.Errorf("EventTitle = %q", p.EventTitle)
	}
}

func TestAdminRequestEventPayload_WrongType(t *testing.T) {
	req := &AdminRequest{
		Type:    RequestBroadcast,
		Payload: NewBroadcastPayload("hello", "all"),
	}

	if _, err := req.EventPayload(); err == nil {
		t.Error("expected payload mismatch error")
	}
}

func TestAdminRequestEventPayload_Empty(t *testing.T) {
	req := &AdminRequest{Type: RequestEventActivation}

	p, err := req.EventPayload()
	if err != nil {
		t.Fatalf("EventPayload failed: %v", err)
	}
	if p.EventID != 0 {
		t.Errorf("EventID = %d, want 0 for empty payload", p.EventID)
	}
}

func TestAdminRequestBroadcastPayload(t *testing.T) {
	req := &AdminRequest{
		Type:    RequestBroadcast,
		Payload: NewBroadcastPayload("Служение в воскресенье", "all"),
	}

	p, err := req.BroadcastPayload()
	if err != nil {
		t.Fatalf("BroadcastPayload failed: %v", err)
	}
	if p.Message != "Служение в воскресенье" {
		t.Errorf("Message = %q", p.Message)
	}
	if p.Scope != "all" {
		t.Errorf("Scope = %q, want all", p.Scope)
	}
}

func TestRoleIsAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleUser, false},
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.IsAdmin(); got != tt.expected {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserHandle(t *testing.T) {
	withName := &User{TelegramID: 100, Username: "maria"}
	if got := withName.Handle(); got != "maria" {
		t.Errorf("Handle() = %q, want maria", got)
	}

	anonymous := &User{TelegramID: 100}
	if got := anonymous.Handle(); got != "100" {
		t.Errorf("Handle() = %q, want 100", got)
	}
}
