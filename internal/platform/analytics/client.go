// Package analytics sends events to Google Analytics 4 through the
// Measurement Protocol. Without an API secret the client is inert.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const DefaultEndpoint = "https://www.google-analytics.com/mp/collect"

type event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

type payload struct {
	ClientID string  `json:"client_id"`
	UserID   string  `json:"user_id,omitempty"`
	Events   []event `json:"events"`
}

// Client is safe for concurrent use.
type Client struct {
	endpoint      string
	measurementID string
	apiSecret     string
	clientID      string
	httpClient    *http.Client
	logger        *slog.Logger
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option { return func(c *Client) { c.endpoint = endpoint } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

func New(measurementID, apiSecret, clientID string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:      DefaultEndpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		clientID:      clientID,
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether events will actually be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.measurementID != "" && c.apiSecret != ""
}

// Track sends one event. userID may be empty.
func (c *Client) Track(ctx context.Context, name, userID string, params map[string]any) error {
	if !c.Enabled() {
		return nil
	}
	body, err := json.Marshal(payload{
		ClientID: c.clientID,
		UserID:   userID,
		Events:   []event{{Name: name, Params: params}},
	})
	if err != nil {
		return fmt.Errorf("encode analytics event: %w", err)
	}

	q := url.Values{}
	q.Set("measurement_id", c.measurementID)
	q.Set("api_secret", c.apiSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send analytics event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("send analytics event: status %d", resp.StatusCode)
	}
	if c.logger != nil {
		c.logger.Debug("analytics event sent", "event", name)
	}
	return nil
}
