package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

type stubDispatcher struct {
	replies []chat.Message
	err     error
	got     *chat.Update
}

func (d *stubDispatcher) Dispatch(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	d.got = upd
	return d.replies, d.err
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(dispatcher *stubDispatcher, pinger Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	updates := NewUpdateHandler(dispatcher, logger.Nop())
	health := NewHealthHandler(pinger)
	r.POST("/v1/updates", updates.HandleUpdate)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	return r
}

func TestHandleUpdate(t *testing.T) {
	dispatcher := &stubDispatcher{replies: []chat.Message{chat.Text("Привет!")}}
	r := newTestServer(dispatcher, nil)

	body := `{"update_id":1,"chat_id":500,"user_id":100,"username":"maria","text":"/start"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/updates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if dispatcher.got == nil || dispatcher.got.UserID != 100 || dispatcher.got.Text != "/start" {
		t.Errorf("dispatched update = %+v", dispatcher.got)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Messages []chat.Message `json:"messages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || len(resp.Data.Messages) != 1 || resp.Data.Messages[0].Text != "Привет!" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleUpdateValidation(t *testing.T) {
	r := newTestServer(&stubDispatcher{}, nil)

	for _, body := range []string{"not json", `{"update_id":1,"text":"hi"}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/updates", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestHandleUpdateDispatchError(t *testing.T) {
	r := newTestServer(&stubDispatcher{err: errors.New("boom")}, nil)

	body := `{"update_id":1,"chat_id":500,"user_id":100,"text":"hi"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/updates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestReadyProbe(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		want   int
	}{
		{"no database", nil, http.StatusOK},
		{"reachable", &stubPinger{}, http.StatusOK},
		{"unreachable", &stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestServer(&stubDispatcher{}, tt.pinger)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHealthProbe(t *testing.T) {
	r := newTestServer(&stubDispatcher{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
