package response

import (
	"net/http"
	"testing"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"status": "ok"})
	if !resp.Success || resp.Error != nil {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestErrorBuilders(t *testing.T) {
	tests := []struct {
		name   string
		resp   *Response
		code   string
		status int
	}{
		{"bad request", BadRequest("missing field"), ErrCodeBadRequest, http.StatusBadRequest},
		{"not found", NotFound(""), ErrCodeNotFound, http.StatusNotFound},
		{"internal", InternalError(""), ErrCodeInternalError, http.StatusInternalServerError},
		{"unavailable", ServiceUnavailable(""), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.resp.Success || tt.resp.Error == nil {
				t.Fatalf("expected error response, got %+v", tt.resp)
			}
			if tt.resp.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.resp.Error.Code, tt.code)
			}
			if tt.resp.Error.Message == "" {
				t.Error("error message must not be empty")
			}
			if got := GetHTTPStatus(tt.resp.Error.Code); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestGetHTTPStatusUnknownCode(t *testing.T) {
	if got := GetHTTPStatus("NO_SUCH_CODE"); got != http.StatusInternalServerError {
		t.Errorf("unknown code status = %d", got)
	}
}
