package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req messageRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != messagesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		handler(w, req)
	}))
}

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "claude-sonnet-4-20250514",
	}, logger.Nop())
}

func respondText(w http.ResponseWriter, text string) {
	json.NewEncoder(w).Encode(messageResponse{
		Content: []contentBlock{{Type: "text", Text: text}},
	})
}

func TestClientAnswer(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req messageRequest) {
		if len(req.Messages) != 1 || req.Messages[0].Content != "[Maria]: Когда служение?" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		respondText(w, "Каждое воскресенье в 11:00.")
	})
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Answer(context.Background(), "Когда служение?", "Maria", "=== Information ===")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if reply != "Каждое воскресенье в 11:00." {
		t.Errorf("reply = %q", reply)
	}
}

func TestClientAnswer_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(messageResponse{Error: &apiError{Type: "overloaded", Message: "try later"}})
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Answer(context.Background(), "вопрос", "Maria", "")
	if err != nil {
		t.Fatalf("Answer should degrade, not fail: %v", err)
	}
	if reply != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
}

func TestClientParseCommand(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req messageRequest) {
		respondText(w, "```json\n{\"action\": \"create_event\", \"params\": {\"title\": \"Библейская школа\", \"date_start\": \"2025-01-15\"}, \"confirmation\": \"Создать?\"}\n```")
	})
	defer srv.Close()

	cmd, err := newTestClient(srv.URL).ParseCommand(context.Background(), "создай библейскую школу 15 января", "maria", []string{"events"})
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Action != ActionCreateEvent {
		t.Errorf("Action = %s, want create_event", cmd.Action)
	}
	if cmd.Params.Title != "Библейская школа" || cmd.Params.DateStart != "2025-01-15" {
		t.Errorf("unexpected params: %+v", cmd.Params)
	}
	if cmd.Confirmation != "Создать?" {
		t.Errorf("Confirmation = %q", cmd.Confirmation)
	}
}

func TestClientParseCommand_Malformed(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req messageRequest) {
		respondText(w, "извините, не понял команду")
	})
	defer srv.Close()

	cmd, err := newTestClient(srv.URL).ParseCommand(context.Background(), "абракадабра", "maria", nil)
	if err != nil {
		t.Fatalf("ParseCommand should degrade, not fail: %v", err)
	}
	if cmd.Action != ActionUnknown {
		t.Errorf("Action = %s, want unknown", cmd.Action)
	}
	if cmd.Confirmation == "" {
		t.Error("expected a human-readable confirmation")
	}
}

func TestClientParseCommand_UnknownAction(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, req messageRequest) {
		respondText(w, `{"action": "drop_tables", "params": {}, "confirmation": "?"}`)
	})
	defer srv.Close()

	cmd, err := newTestClient(srv.URL).ParseCommand(context.Background(), "что-то", "maria", nil)
	if err != nil {
		t.Fatalf("ParseCommand failed: %v", err)
	}
	if cmd.Action != ActionUnknown {
		t.Errorf("Action = %s, want unknown for unrecognized action", cmd.Action)
	}
}
