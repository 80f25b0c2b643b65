package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

const (
	anthropicVersion = "2023-06-01"
	messagesPath     = "/v1/messages"

	// FallbackReply is returned to the user when the model call fails.
	FallbackReply = "Извините, произошла ошибка при обработке запроса."
)

const solomonSystem = `Ты — Соломон, дружелюбный помощник церковной общины.
Отвечай кратко, по-русски.
Если пользователь хочет записаться на мероприятие, ответь маркером ЗАПИСЬ_ТРЕБУЕТСЯ
и укажи название мероприятия, например:
ЗАПИСЬ_ТРЕБУЕТСЯ: Библейская школа
Если не знаешь ответа, вежливо скажи, что не можешь помочь, и предложи обратиться к служителям.`

const adminSystem = `Ты помощник администратора церковной общины.
Тебе приходят текстовые команды на естественном языке.
Определи действие и верни JSON (без markdown-обёртки).

Возможные действия:
- create_event: создать мероприятие
- update_event: обновить мероприятие
- archive_event: архивировать мероприятие
- create_info: добавить информацию
- update_info: обновить информацию
- delete_info: удалить информацию
- broadcast: разослать сообщение
- unknown: не удалось распознать

Формат ответа — строго JSON:
{
  "action": "create_event",
  "params": {
    "title": "...",
    "date_start": "2025-01-15",
    "time": "18:00",
    "place": "...",
    "description": "..."
  },
  "confirmation": "Создать мероприятие «...» на 15 января?"
}

Если значение неизвестно, не включай его в params.
Дату всегда в формате YYYY-MM-DD.`

// ClientConfig holds the model provider settings.
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client talks to the Anthropic messages API over plain HTTP.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	logger     *logger.Logger
}

// NewClient creates a new Client
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		logger:     log,
	}
}

type messageRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Answer replies to a user question grounded on the knowledge context.
// Provider failures degrade to FallbackReply instead of an error.
func (c *Client) Answer(ctx context.Context, question, userName, knowledge string) (string, error) {
	system := solomonSystem
	if knowledge != "" {
		system += "\n\n" + knowledge
	}
	reply, err := c.complete(ctx, system, fmt.Sprintf("[%s]: %s", userName, question))
	if err != nil {
		c.logger.Error("model call failed", zap.Error(err))
		return FallbackReply, nil
	}
	return reply, nil
}

// ParseCommand maps free-text admin input onto a structured command.
// Both provider failures and malformed model output yield ActionUnknown.
func (c *Client) ParseCommand(ctx context.Context, text, adminUsername string, tables []string) (*Command, error) {
	tablesStr := "все"
	if len(tables) > 0 {
		tablesStr = strings.Join(tables, ", ")
	}
	system := adminSystem + fmt.Sprintf("\n\nАдмин: @%s, доступ к таблицам: %s", adminUsername, tablesStr)

	raw, err := c.complete(ctx, system, text)
	if err != nil {
		c.logger.Error("model call failed during command parsing", zap.Error(err))
		return &Command{
			Action:       ActionUnknown,
			Confirmation: "Ошибка при обработке команды.",
		}, nil
	}

	var cmd Command
	if err := json.Unmarshal([]byte(StripCodeFence(raw)), &cmd); err != nil || !cmd.Action.IsValid() {
		c.logger.Warn("unparseable command response", zap.String("raw", raw))
		return &Command{
			Action:       ActionUnknown,
			Confirmation: "Не удалось распознать команду. Попробуйте иначе.",
		}, nil
	}
	return &cmd, nil
}

func (c *Client) complete(ctx context.Context, system, userContent string) (string, error) {
	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: userContent}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var decoded messageResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return "", fmt.Errorf("api error %d: %s: %s", resp.StatusCode, decoded.Error.Type, decoded.Error.Message)
		}
		return "", fmt.Errorf("api error: status %d", resp.StatusCode)
	}
	if len(decoded.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return decoded.Content[0].Text, nil
}
