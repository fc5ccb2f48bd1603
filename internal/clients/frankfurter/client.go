// Package frankfurter provides a client for the frankfurter.app FX rate API
package frankfurter

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
	"github.com/karpatel/nivesh/internal/models"
)

const (
	DefaultBaseURL   = "https://api.frankfurter.app"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client calls the frankfurter.app exchange rate API
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

// NewClient creates a new frankfurter client
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
	return fmt.Sprintf("frankfurter API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// ratesResponse carries rates as json.Number so they survive the trip into
// decimals without a float detour.
type ratesResponse struct {
	Base  string                 `json:"base"`
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

func (c *Client) getRates(ctx context.Context, path string, base models.Currency) (map[models.Currency]decimal.Decimal, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("from", string(base))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("base", string(base)).Str("path", path).Msg("frankfurter request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload ratesResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("no rates in response for base %s", base)
	}

	rates := make(map[models.Currency]decimal.Decimal, len(payload.Rates))
	for cur, num := range payload.Rates {
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate %q for %s: %w", num.String(), cur, err)
		}
		rates[models.Currency(cur)] = d
	}

	return rates, nil
}

// FetchRates retrieves the latest conversion rates from the base currency.
func (c *Client) FetchRates(ctx context.Context, base models.Currency) (map[models.Currency]decimal.Decimal, error) {
	return c.getRates(ctx, "/latest", base)
}

// FetchRatesOn retrieves conversion rates as of a past date. Frankfurter
// snaps the date back to the nearest banking day itself.
func (c *Client) FetchRatesOn(ctx context.Context, base models.Currency, date time.Time) (map[models.Currency]decimal.Decimal, error) {
	return c.getRates(ctx, "/"+date.Format("2006-01-02"), base)
}
