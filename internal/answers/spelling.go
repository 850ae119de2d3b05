package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Speller corrects the spelling of a free-text string.
type Speller interface {
	Correct(ctx context.Context, input string) (string, error)
}

// HTTPSpeller calls a correction endpoint with {"text": ...} and expects
// {"corrected": ...} back.
type HTTPSpeller struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSpeller creates a speller client. baseURL may be empty, in which
// case every call reports ErrUnavailable.
func NewHTTPSpeller(baseURL string, timeout time.Duration) *HTTPSpeller {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSpeller{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSpeller) Correct(ctx context.Context, input string) (string, error) {
	if s.baseURL == "" {
		return "", ErrUnavailable
	}
	body, err := json.Marshal(map[string]string{"text": input})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out struct {
		Corrected string `json:"corrected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.Corrected == "" {
		// provider had no suggestion; the input is its own correction
		return input, nil
	}
	return out.Corrected, nil
}
