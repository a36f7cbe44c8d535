package memoryservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Zep-compatible memory service over REST. The
// service owns long-term conversation memory; we only push turns and
// pull the synthesized context back.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Api-Key "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("memory service request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("memory service error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return resp.StatusCode, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// EnsureUser creates the user if the service does not know it yet.
func (c *Client) EnsureUser(ctx context.Context, userID string) error {
	status, err := c.do(ctx, "GET", "/api/v2/users/"+userID, nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		_, err = c.do(ctx, "POST", "/api/v2/users", map[string]string{"user_id": userID}, nil)
		return err
	}
	return nil
}

// EnsureSession creates the session if missing. The bool reports
// whether this call created it.
func (c *Client) EnsureSession(ctx context.Context, sessionID, userID string) (bool, error) {
	status, err := c.do(ctx, "GET", "/api/v2/sessions/"+sessionID, nil, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		payload := map[string]string{"session_id": sessionID, "user_id": userID}
		if _, err := c.do(ctx, "POST", "/api/v2/sessions", payload, nil); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// AddMessages appends turns to the session transcript.
func (c *Client) AddMessages(ctx context.Context, sessionID string, turns []Turn) error {
	if len(turns) == 0 {
		return nil
	}
	payload := map[string]interface{}{"messages": turns}
	_, err := c.do(ctx, "POST", "/api/v2/sessions/"+sessionID+"/memory", payload, nil)
	return err
}

// GetMemory returns the synthesized context and recent messages.
// A session the service has never seen yields an empty Memory.
func (c *Client) GetMemory(ctx context.Context, sessionID string) (*Memory, error) {
	var memory Memory
	status, err := c.do(ctx, "GET", "/api/v2/sessions/"+sessionID+"/memory", nil, &memory)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &Memory{}, nil
	}
	return &memory, nil
}

// GetRecentMessages returns the last limit turns of the transcript.
func (c *Client) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	memory, err := c.GetMemory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turns := memory.Messages
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// GetSummary returns the synthesized context block for a session.
func (c *Client) GetSummary(ctx context.Context, sessionID string) (string, error) {
	memory, err := c.GetMemory(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return memory.Context, nil
}

// EnsureContext resolves everything the pipeline needs for one turn:
// user exists, session exists, memory context and recent history loaded.
func (c *Client) EnsureContext(ctx context.Context, sessionID, userID string, recentLimit int) (*SessionContext, error) {
	if err := c.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	created, err := c.EnsureSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	memory, err := c.GetMemory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	recent := memory.Messages
	if recentLimit > 0 && len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}

	return &SessionContext{
		SessionID:     sessionID,
		UserID:        userID,
		MemoryContext: memory.Context,
		RecentHistory: recent,
		IsNewSession:  created || len(memory.Messages) == 0,
	}, nil
}
