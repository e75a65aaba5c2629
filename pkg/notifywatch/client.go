// Package notifywatch is a client for the notification API: a thin HTTP
// client plus a Watcher that merges the snapshot fetch and the SSE push
// channel into one de-duplicated, read-aware list.
package notifywatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notification mirrors the wire representation of one record.
type Notification struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// StreamEvent is one frame from the push channel.
type StreamEvent struct {
	Type string         `json:"type"`
	Data []Notification `json:"data,omitempty"`
}

const (
	eventConnected     = "connected"
	eventHeartbeat     = "heartbeat"
	eventNotifications = "notifications"
)

// Client issues authenticated requests against the notification endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *Client) List(ctx context.Context) ([]Notification, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/notifications", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list notifications: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data []Notification `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return body.Data, nil
}

func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.put(ctx, map[string]interface{}{"id": id})
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.put(ctx, map[string]interface{}{"markAllRead": true})
}

func (c *Client) put(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/api/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update notifications: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Stream opens the push channel and invokes handle for every event until the
// connection closes or the context is cancelled.
func (c *Client) Stream(ctx context.Context, handle func(StreamEvent)) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/notifications/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	return readEvents(resp.Body, handle)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// readEvents parses line-delimited "data: <JSON>" frames. Unknown lines and
// malformed payloads are skipped, matching the browser EventSource behavior
// of ignoring what it cannot parse.
func readEvents(r io.Reader, handle func(StreamEvent)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var evt StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			continue
		}
		handle(evt)
	}
	return scanner.Err()
}
