/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/rs/zerolog"
)

type Client struct {
	webhookURL string
	http       *http.Client
	log        zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{webhookURL: cfg.SlackWebhookURL, http: &http.Client{Timeout: 10 * time.Second}, log: log}
}

func (c *Client) Configured() bool { return c.webhookURL != "" }

// Post delivers one message to the incoming webhook. Success is HTTP 200;
// link and media unfurling are always disabled.
func (c *Client) Post(ctx context.Context, text string) error {
	if c.webhookURL == "" { return fmt.Errorf("slack: missing webhook url") }
	body := map[string]any{"text": text, "unfurl_links": false, "unfurl_media": false}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}
