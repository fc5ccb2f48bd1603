// Package captnemo provides a client for the captnemo.in ISIN NAV API
package captnemo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/karpatel/nivesh/internal/common"
)

const (
	DefaultBaseURL   = "https://mf.captnemo.in"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// flexDecimal handles JSON values that may be either a number or a string.
type flexDecimal decimal.Decimal

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return fmt.Errorf("cannot parse %q as decimal: %w", num.String(), err)
		}
		*f = flexDecimal(d)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("cannot parse %q as decimal: %w", s, err)
		}
		*f = flexDecimal(d)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into decimal", strconv.Quote(string(data)))
}

// Client calls the captnemo mutual fund NAV API
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

// NewClient creates a new captnemo client
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
	return fmt.Sprintf("captnemo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

type navResponse struct {
	ISIN string      `json:"isin"`
	NAV  flexDecimal `json:"nav"`
	Date string      `json:"date"`
}

// GetNAV retrieves the latest NAV for an ISIN.
func (c *Client) GetNAV(ctx context.Context, isin string) (decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/nav/%s", isin)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("isin", isin).Msg("captnemo NAV request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var nav navResponse
	if err := json.NewDecoder(resp.Body).Decode(&nav); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}

	d := decimal.Decimal(nav.NAV)
	if d.IsZero() {
		return decimal.Zero, fmt.Errorf("no NAV for ISIN %s", isin)
	}

	return d, nil
}
