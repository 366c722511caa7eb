// Package nager fetches public holiday calendars from the Nager.Date API.
package nager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Nager.Date PublicHolidays endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a holiday API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Holiday is one entry of the PublicHolidays response.
type Holiday struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"`
	Types       []string `json:"types"`
}

// FetchYear returns all public holidays for one country and year.
func (c *Client) FetchYear(ctx context.Context, year int, country string) ([]Holiday, error) {
	u := fmt.Sprintf("%s/%d/%s", c.baseURL, year, url.PathEscape(country))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nager API error: status %d: %s", resp.StatusCode, body)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("holidays fetched", "year", year, "country", country, "count", len(holidays))
	return holidays, nil
}

// FetchYears concatenates the holidays of several years in order.
func (c *Client) FetchYears(ctx context.Context, years []int, country string) ([]Holiday, error) {
	var all []Holiday
	for _, year := range years {
		holidays, err := c.FetchYear(ctx, year, country)
		if err != nil {
			return nil, fmt.Errorf("fetch holidays %d: %w", year, err)
		}
		all = append(all, holidays...)
	}
	return all, nil
}
