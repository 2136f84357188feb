// Package feishu posts interactive card messages to a Feishu group through
// a custom-bot incoming webhook.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const httpTimeout = 10 * time.Second

// Card is an interactive card payload as expected by the webhook.
type Card map[string]any

// Client posts messages to a single webhook URL.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a webhook client.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// webhookResponse covers both the current ("code") and legacy ("StatusCode")
// response envelopes the webhook endpoint returns.
type webhookResponse struct {
	Code       *int   `json:"code"`
	StatusCode *int   `json:"StatusCode"`
	Msg        string `json:"msg"`
}

func (r webhookResponse) ok() bool {
	if r.Code != nil && *r.Code == 0 {
		return true
	}
	if r.StatusCode != nil && *r.StatusCode == 0 {
		return true
	}
	return false
}

// SendCard posts one interactive card.
func (c *Client) SendCard(ctx context.Context, card Card) error {
	return c.post(ctx, map[string]any{
		"msg_type": "interactive",
		"card":     card,
	})
}

func (c *Client) post(ctx context.Context, message map[string]any) error {
	if c.webhookURL == "" {
		return fmt.Errorf("feishu: webhook URL not configured")
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("feishu: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: post webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("feishu: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feishu: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out webhookResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Errorf("feishu: decode response: %w", err)
	}
	if !out.ok() {
		return fmt.Errorf("feishu: webhook rejected message: %s", out.Msg)
	}
	return nil
}
