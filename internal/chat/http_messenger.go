package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPMessenger delivers messages by POSTing them to the transport adapter's
// sink URL. The adapter owns the actual messenger-specific wire format.
type HTTPMessenger struct {
	sinkURL string
	client  *http.Client
}

type outboundEnvelope struct {
	ChatID  int64   `json:"chat_id"`
	Message Message `json:"message"`
}

// NewHTTPMessenger creates a messenger that forwards messages to sinkURL.
func NewHTTPMessenger(sinkURL string, timeout time.Duration) *HTTPMessenger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPMessenger{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Send posts the message envelope to the sink. A non-2xx response is an error.
func (m *HTTPMessenger) Send(ctx context.Context, chatID int64, msg Message) error {
	body, err := json.Marshal(outboundEnvelope{ChatID: chatID, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode outbound message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.sinkURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("message sink returned status %d", resp.StatusCode)
	}
	return nil
}
