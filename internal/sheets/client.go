// Package sheets talks to the Google Sheets values API with service-account
// credentials. Each export call replaces a whole worksheet; there is no
// incremental sync.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hwoarang89/solomon-church-bot/internal/service"
)

const defaultBaseURL = "https://sheets.googleapis.com"

// Config holds the spreadsheet destination and credentials.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	// BaseURL overrides the API host, used in tests.
	BaseURL string
	Timeout time.Duration
}

// Client implements service.SheetWriter against the Sheets values API.
type Client struct {
	baseURL       string
	spreadsheetID string
	tokens        *tokenSource
	client        *http.Client
}

// NewClient builds a sheet writer from config. With no spreadsheet or
// credentials configured it returns a writer whose every call reports
// service.ErrExportNotConfigured, keeping the export surface visible.
func NewClient(cfg Config) (service.SheetWriter, error) {
	if cfg.SpreadsheetID == "" || cfg.CredentialsJSON == "" {
		return disabledWriter{}, nil
	}

	key, err := ParseServiceAccountKey(cfg.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		baseURL:       cfg.BaseURL,
		spreadsheetID: cfg.SpreadsheetID,
		tokens:        newTokenSource(key, httpClient),
		client:        httpClient,
	}, nil
}

type valueRange struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// WriteSheet clears the worksheet and uploads the rows in one values update.
func (c *Client) WriteSheet(ctx context.Context, title string, rows [][]string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	sheetRange := title + "!A1"
	clearURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:clear",
		c.baseURL, c.spreadsheetID, url.PathEscape(title))
	if err := c.do(ctx, http.MethodPost, clearURL, token, []byte("{}")); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", title, err)
	}

	body, err := json.Marshal(valueRange{
		Range:          sheetRange,
		MajorDimension: "ROWS",
		Values:         rows,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sheet values: %w", err)
	}

	updateURL := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.baseURL, c.spreadsheetID, url.PathEscape(sheetRange))
	if err := c.do(ctx, http.MethodPut, updateURL, token, body); err != nil {
		return fmt.Errorf("failed to update sheet %s: %w", title, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL, token string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sheets API returned status %d", resp.StatusCode)
	}
	return nil
}

type disabledWriter struct{}

func (disabledWriter) WriteSheet(ctx context.Context, title string, rows [][]string) error {
	return service.ErrExportNotConfigured
}
