// Package alphavantage provides a client for the Alpha Vantage quote API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/karpatel/nivesh/internal/common"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1 // requests per second; the free tier is far stricter per day
)

// Client calls the Alpha Vantage query API
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request against /query
func (c *Client) get(ctx context.Context, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", params.Get("function")).Str("symbol", params.Get("symbol")).Msg("Alpha Vantage API request")

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
			Endpoint:   "/query",
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// intradayResponse mirrors the TIME_SERIES_INTRADAY payload. Alpha Vantage
// reports errors and throttling inside a 200 response, so those fields ride
// along with the data.
type intradayResponse struct {
	MetaData     map[string]string            `json:"Meta Data"`
	Series       map[string]map[string]string `json:"Time Series (5min)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

// GetIntradayQuote retrieves the most recent 5-minute close for a symbol.
func (c *Client) GetIntradayQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_INTRADAY")
	params.Set("symbol", symbol)
	params.Set("interval", "5min")

	var resp intradayResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return decimal.Zero, err
	}

	switch {
	case resp.ErrorMessage != "":
		return decimal.Zero, &APIError{StatusCode: http.StatusOK, Message: resp.ErrorMessage, Endpoint: "/query"}
	case resp.Note != "":
		return decimal.Zero, &APIError{StatusCode: http.StatusOK, Message: resp.Note, Endpoint: "/query"}
	case resp.Information != "":
		return decimal.Zero, &APIError{StatusCode: http.StatusOK, Message: resp.Information, Endpoint: "/query"}
	}

	lastRefreshed, ok := resp.MetaData["3. Last Refreshed"]
	if !ok {
		return decimal.Zero, fmt.Errorf("intraday response for %s missing last-refreshed metadata", symbol)
	}

	bar, ok := resp.Series[lastRefreshed]
	if !ok {
		return decimal.Zero, fmt.Errorf("intraday series for %s missing bar %s", symbol, lastRefreshed)
	}

	closeStr, ok := bar["4. close"]
	if !ok {
		return decimal.Zero, fmt.Errorf("intraday bar for %s missing close", symbol)
	}

	price, err := decimal.NewFromString(closeStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse close %q for %s: %w", closeStr, symbol, err)
	}

	return price, nil
}
