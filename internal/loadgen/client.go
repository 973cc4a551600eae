package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/mentorlink/internal/adapters/auth"
)

// Client calls the API as any seeded user by minting tokens locally.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  *auth.Manager
}

// NewClient creates a client that signs tokens with secret.
func NewClient(baseURL, secret string, timeout time.Duration) (*Client, error) {
	tokens, err := auth.NewManager(secret)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tokens:  tokens,
	}, nil
}

// Do sends a request as userID and decodes a 2xx body into out when out is
// not nil. It returns the status code.
func (c *Client) Do(ctx context.Context, method, path, userID string, body, out any, headers ...string) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := c.tokens.GenerateToken(userID, email(userID))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
