// Package mfapi provides a client for the mfapi.in mutual fund NAV API
package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/karpatel/nivesh/internal/common"
)

const (
	DefaultBaseURL   = "https://api.mfapi.in"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	navDateLayout = "02-01-2006" // mfapi reports dates as dd-mm-yyyy
)

// Client calls the mfapi.in scheme NAV API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new mfapi client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mfapi error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("path", path).Msg("mfapi request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// navPoint is one dated NAV in a scheme response. NAVs arrive as strings.
type navPoint struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

type schemeResponse struct {
	Status string     `json:"status"`
	Data   []navPoint `json:"data"`
}

// GetLatestNAV retrieves the most recent NAV for a scheme code.
func (c *Client) GetLatestNAV(ctx context.Context, schemeCode string) (decimal.Decimal, error) {
	var resp schemeResponse
	if err := c.get(ctx, fmt.Sprintf("/mf/%s/latest", schemeCode), &resp); err != nil {
		return decimal.Zero, err
	}

	if len(resp.Data) == 0 {
		return decimal.Zero, fmt.Errorf("no NAV data for scheme %s", schemeCode)
	}

	nav, err := decimal.NewFromString(resp.Data[0].NAV)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse NAV %q for scheme %s: %w", resp.Data[0].NAV, schemeCode, err)
	}

	return nav, nil
}

// GetNAVOn retrieves the NAV on the given date, or the nearest earlier date
// within lookbackDays (NAVs are not published on holidays). The full scheme
// history is newest-first.
func (c *Client) GetNAVOn(ctx context.Context, schemeCode string, date time.Time, lookbackDays int) (decimal.Decimal, error) {
	var resp schemeResponse
	if err := c.get(ctx, fmt.Sprintf("/mf/%s", schemeCode), &resp); err != nil {
		return decimal.Zero, err
	}

	floor := date.AddDate(0, 0, -lookbackDays)
	for _, point := range resp.Data {
		d, err := time.Parse(navDateLayout, point.Date)
		if err != nil {
			continue
		}
		if d.After(date) {
			continue
		}
		if d.Before(floor) {
			break
		}
		nav, err := decimal.NewFromString(point.NAV)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse NAV %q for scheme %s: %w", point.NAV, schemeCode, err)
		}
		return nav, nil
	}

	return decimal.Zero, fmt.Errorf("no NAV for scheme %s within %d days before %s", schemeCode, lookbackDays, date.Format("2006-01-02"))
}
