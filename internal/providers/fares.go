package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/metrics"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/ratelimit"
)

const oneWayFaresPath = "/farfnd/v4/oneWayFares"

type FareClientConfig struct {
	BaseURL     string
	Currency    string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	RateLimiter *ratelimit.SourceLimiter
	HTTPClient  *http.Client
}

// FareClient queries the public one-way fares endpoint.
type FareClient struct {
	baseURL  string
	currency string
	client   *http.Client
	config   FareClientConfig
}

func NewFareClient(cfg FareClientConfig) *FareClient {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if len(cfg.RetryDelays) == 0 {
		cfg.RetryDelays = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, time.Second}
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}

	return &FareClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		currency: cfg.Currency,
		client:   client,
		config:   cfg,
	}
}

func (c *FareClient) Name() string {
	return "fares"
}

func (c *FareClient) Query(ctx context.Context, q FareQuery) ([]models.Flight, error) {
	start := time.Now()
	defer func() {
		metrics.SourceQueryDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	}()

	if c.config.RateLimiter != nil {
		if err := c.config.RateLimiter.Wait(ctx, c.Name()); err != nil {
			metrics.SourceQueriesTotal.WithLabelValues(c.Name(), "failure").Inc()
			return nil, NewProviderError(c.Name(), err)
		}
	}

	flights, err := c.queryWithRetry(ctx, q)
	if err != nil {
		metrics.SourceQueriesTotal.WithLabelValues(c.Name(), "failure").Inc()
		return nil, NewProviderError(c.Name(), err)
	}

	metrics.SourceQueriesTotal.WithLabelValues(c.Name(), "success").Inc()
	return flights, nil
}

func (c *FareClient) queryWithRetry(ctx context.Context, q FareQuery) ([]models.Flight, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(c.config.RetryDelays) {
				delayIdx = len(c.config.RetryDelays) - 1
			}
			delay := c.config.RetryDelays[delayIdx]

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		flights, retryable, err := c.do(ctx, q)
		if err == nil {
			return flights, nil
		}

		lastErr = err
		logging.Ctx(ctx).Warn().
			Str("airport", q.Airport).
			Str("date", q.DateFrom).
			Int("attempt", attempt+1).
			Err(err).
			Msg("fare query attempt failed")

		if !retryable {
			break
		}
	}

	return nil, lastErr
}

// do performs one request. The bool reports whether a failure is worth retrying.
func (c *FareClient) do(ctx context.Context, q FareQuery) ([]models.Flight, bool, error) {
	reqURL := c.baseURL + oneWayFaresPath + "?" + c.params(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload fareResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return payload.toFlights(c.Name()), false, nil
}

func (c *FareClient) params(q FareQuery) url.Values {
	params := url.Values{}
	params.Set("departureAirportIataCode", q.Airport)
	params.Set("outboundDepartureDateFrom", q.DateFrom)
	params.Set("outboundDepartureDateTo", q.DateTo)
	params.Set("currency", c.currency)
	if q.TimeFrom != "" {
		params.Set("outboundDepartureTimeFrom", q.TimeFrom)
	}
	if q.TimeTo != "" {
		params.Set("outboundDepartureTimeTo", q.TimeTo)
	}
	if q.MaxPrice > 0 {
		params.Set("priceValueTo", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Destination != "" {
		params.Set("arrivalAirportIataCode", q.Destination)
	}
	return params
}
