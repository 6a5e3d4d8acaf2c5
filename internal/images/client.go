// Package images looks up a themed image for a search phrase.
package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Giphy API root.
const DefaultBaseURL = "https://api.giphy.com"

// ErrNoImage is returned when the lookup succeeds but finds nothing.
var ErrNoImage = errors.New("no image found")

// Client queries the Giphy translate endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type translateResponse struct {
	Data struct {
		Images struct {
			Original struct {
				URL string `json:"url"`
			} `json:"original"`
		} `json:"images"`
	} `json:"data"`
}

// Lookup returns the URL of an image matching query.
func (c *Client) Lookup(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("s", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/gifs/translate?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("image lookup %q: status %d: %s", query, resp.StatusCode, string(respBody))
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if tr.Data.Images.Original.URL == "" {
		return "", fmt.Errorf("%w for %q", ErrNoImage, query)
	}
	return tr.Data.Images.Original.URL, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
