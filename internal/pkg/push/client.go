package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/faena-app/faena-backend/internal/config"
	"golang.org/x/oauth2"
)

// Message is one entry of the relay's batch payload.
type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Sender delivers push messages to a relay.
type Sender interface {
	Send(ctx context.Context, msgs []Message) error
}

// APIError represents a non-2xx relay response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("push relay error [%d]: %s", e.StatusCode, e.Body)
}

// Client posts message batches to an Expo-compatible push relay.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient builds a relay client. With an access token every request carries it as a bearer token.
func NewClient(cfg config.PushConfig) *Client {
	httpClient := &http.Client{}
	if cfg.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		url:        cfg.RelayURL,
	}
}

// Send implements Sender.
func (c *Client) Send(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post push batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
