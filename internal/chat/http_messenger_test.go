package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPMessengerSend(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewHTTPMessenger(srv.URL, time.Second)
	msg := Text("Привет!").WithButtons(Row(Button{Label: "Да", Data: "confirm:yes"}))
	if err := m.Send(context.Background(), 42, msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	var env struct {
		ChatID  int64   `json:"chat_id"`
		Message Message `json:"message"`
	}
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if env.ChatID != 42 || env.Message.Text != "Привет!" {
		t.Errorf("envelope = %+v", env)
	}
	if len(env.Message.Buttons) != 1 || env.Message.Buttons[0][0].Data != "confirm:yes" {
		t.Errorf("buttons = %+v", env.Message.Buttons)
	}
}

func TestHTTPMessengerSendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := NewHTTPMessenger(srv.URL, time.Second)
	if err := m.Send(context.Background(), 1, Text("x")); err == nil {
		t.Error("expected error on non-2xx sink response")
	}

	down := NewHTTPMessenger("http://127.0.0.1:1", 100*time.Millisecond)
	if err := down.Send(context.Background(), 1, Text("x")); err == nil {
		t.Error("expected error on unreachable sink")
	}
}
