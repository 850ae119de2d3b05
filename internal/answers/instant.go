package answers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// InstantProvider answers a query with a structured instant-answer payload.
type InstantProvider interface {
	Query(ctx context.Context, text string) (json.RawMessage, error)
}

// DDGClient queries a DuckDuckGo-style instant answer API:
// GET <base>?q=<query>&format=json
type DDGClient struct {
	baseURL string
	client  *http.Client
}

func NewDDGClient(baseURL string, timeout time.Duration) *DDGClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DDGClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *DDGClient) Query(ctx context.Context, text string) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("%w: invalid json payload", ErrUnavailable)
	}
	return json.RawMessage(b), nil
}
