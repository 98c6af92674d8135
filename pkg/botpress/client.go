package botpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gericht/reservation-service/config"
	"github.com/gericht/reservation-service/internal/entity"
)

// TableRow is one reservation row in the Botpress table store. PartySize is
// a string on the wire, Botpress tables keep it as text.
type TableRow struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	DateTime  string `json:"dateTime"`
	PartySize string `json:"partySize"`
}

// Client talks to the Botpress cloud tables API. Every call is bounded by
// the configured HTTP timeout; transport failures wrap
// entity.ErrBotpressUnavailable.
type Client struct {
	baseURL     string
	token       string
	botID       string
	workspaceID string
	tableID     string
	httpClient  *http.Client
}

func NewClient(cfg *config.BotpressConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		botID:       cfg.BotID,
		workspaceID: cfg.WorkspaceID,
		tableID:     cfg.TableID,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// ListRows fetches every reservation row from the Botpress table.
func (c *Client) ListRows(ctx context.Context) ([]TableRow, error) {
	endpoint := fmt.Sprintf("%s/tables/%s/rows/find", c.baseURL, c.tableID)

	body, err := c.do(ctx, http.MethodPost, endpoint, map[string]interface{}{})
	if err != nil {
		return nil, err
	}

	var result struct {
		Rows []TableRow `json:"rows"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding rows: %v", entity.ErrBotpressUnavailable, err)
	}

	return result.Rows, nil
}

// CreateRow inserts one reservation row into the Botpress table.
func (c *Client) CreateRow(ctx context.Context, row TableRow) error {
	endpoint := fmt.Sprintf("%s/tables/%s/rows", c.baseURL, c.tableID)

	_, err := c.do(ctx, http.MethodPost, endpoint, map[string]interface{}{
		"rows": []TableRow{row},
	})
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal botpress request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build botpress request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("x-bot-id", c.botID)
	if c.workspaceID != "" {
		req.Header.Set("x-workspace-id", c.workspaceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrBotpressUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", entity.ErrBotpressUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: botpress API returned %s: %s", entity.ErrBotpressUnavailable, resp.Status, bytes.TrimSpace(body))
	}

	return body, nil
}
