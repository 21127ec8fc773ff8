// Package jobs holds the scheduled maintenance tasks. Each job talks to the
// CRM over its public GraphQL endpoint and appends its outcome to a log file.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultAttempts = 3

// Client is a minimal GraphQL-over-HTTP client.
type Client struct {
	url      string
	http     *http.Client
	attempts int
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}, attempts: defaultAttempts}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute posts query and decodes the data member into out. Transport
// failures are retried; GraphQL errors are not.
func (c *Client) Execute(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return err
	}

	var resp *gqlResponse
	for attempt := 1; ; attempt++ {
		resp, err = c.post(ctx, body)
		if err == nil || attempt >= c.attempts || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return errors.New("graphql: empty response")
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Data, out)
}

func (c *Client) post(ctx context.Context, body []byte) (*gqlResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("graphql endpoint returned %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("graphql endpoint returned %d", resp.StatusCode)
	}
	return &out, nil
}
