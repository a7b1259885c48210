// Package quote fetches a random quote for use as a text input. Convenience
// only; smashing never depends on it.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// DefaultEndpoint returns an array of {text, author} objects.
const DefaultEndpoint = "https://type.fit/api/quotes"

// Quote is one fetched quote.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Client fetches quotes over plain unauthenticated GET.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a client for the given endpoint; empty selects the
// default.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
	}
}

// Random fetches the quote list and picks one entry at random.
func (c *Client) Random(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote endpoint returned %s", resp.Status)
	}

	var quotes []Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return Quote{}, fmt.Errorf("decode quotes: %w", err)
	}
	if len(quotes) == 0 {
		return Quote{}, fmt.Errorf("quote endpoint returned no quotes")
	}
	return quotes[rand.IntN(len(quotes))], nil
}
