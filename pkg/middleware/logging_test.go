package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger.Nop(), "/health"))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDAssigned(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("no request ID assigned")
	}
	if w.Body.String() != id {
		t.Errorf("handler saw %q, header carries %q", w.Body.String(), id)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "caller-supplied" {
		t.Errorf("request ID = %q, want caller-supplied", got)
	}
}
