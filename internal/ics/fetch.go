package ics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteResource is a bookable resource advertised by a peer server.
type RemoteResource struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Client fetches resource catalogs and calendar feeds from peer servers.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchResources retrieves the peer's resource catalog from its JSON API.
func (c *Client) FetchResources(ctx context.Context, serverURL string) ([]RemoteResource, error) {
	body, err := c.get(ctx, serverURL, "/api/resources")
	if err != nil {
		return nil, err
	}

	var resources []RemoteResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("decode resource catalog: %w", err)
	}
	return resources, nil
}

// FetchCalendar retrieves and parses the peer's full calendar feed.
func (c *Client) FetchCalendar(ctx context.Context, serverURL string) ([]ParsedEvent, error) {
	body, err := c.get(ctx, serverURL, "/ics/all.ics")
	if err != nil {
		return nil, err
	}
	return Parse(body)
}

func (c *Client) get(ctx context.Context, serverURL, path string) ([]byte, error) {
	url := strings.TrimRight(serverURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
