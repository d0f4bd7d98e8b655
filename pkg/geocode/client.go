package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoAddress is returned when the geocoder has no address for a point
var ErrNoAddress = errors.New("no address found")

// Client represents a Nominatim-compatible reverse geocoding client
type Client struct {
	BaseURL   string
	UserAgent string
	MockAPI   bool
	client    *http.Client
}

// ReverseResponse is the subset of a Nominatim /reverse response we read
type ReverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error,omitempty"`
}

// NewClient creates a new geocoding client
func NewClient(baseURL, userAgent string, timeout time.Duration, mockAPI bool) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		MockAPI:   mockAPI,
		client:    &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode returns a human-readable address for a coordinate
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if c.MockAPI {
		return c.mockReverseGeocode(lat, lon)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var body ReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if body.Error != "" || body.DisplayName == "" {
		return "", ErrNoAddress
	}
	return body.DisplayName, nil
}

// mockReverseGeocode returns a deterministic address for local development
func (c *Client) mockReverseGeocode(lat, lon float64) (string, error) {
	return fmt.Sprintf("Near %.4f, %.4f", lat, lon), nil
}
