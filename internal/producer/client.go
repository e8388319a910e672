// Package producer posts signal envelopes to a relay.
package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dgnsrekt/glassbox/internal/signal"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4096

// Client sends envelopes to the relay's signals endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New returns a Client for endpoint, e.g. "http://127.0.0.1:8090/signals".
// A nil httpClient uses http.DefaultClient.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), http: httpClient}
}

// Send posts env. Any non-2xx answer is an error carrying the relay's
// error message when it sent one.
func (c *Client) Send(ctx context.Context, env signal.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("producer: encode %s: %w", env.Type, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("producer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("producer: post %s: %w", env.Type, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var relayErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &relayErr) == nil && relayErr.Error != "" {
			return fmt.Errorf("producer: relay rejected %s: status=%d: %s", env.Type, resp.StatusCode, relayErr.Error)
		}
		return fmt.Errorf("producer: relay rejected %s: status=%d", env.Type, resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
