package geolib

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = 30 * time.Second
	DefaultCircuitBreakerResetFailuresTimeout = time.Minute
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	if err := h.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter has rejected a request: %w", err)
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	var resp *http.Response

	err := h.circuitBreaker.Do(func() error {
		var err error

		resp, err = h.client.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			io.Copy(io.Discard, resp.Body) // nolint: errcheck
			resp.Body.Close()

			return fmt.Errorf("upstream has responded with %s", resp.Status)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc. Each provider is expected to
// have its own client: circuit breaker tracks a health of a single
// upstream.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - a number of failures after which
// circuit breaker becomes OPEN and blocks access to the upstream.
//
// circuitBreakerHalfOpenTimeout - when circuit breaker is opened, after
// this time period it goes into HALF_OPEN state. Within this state we
// allow 1 attempt. If this attempt fails, then it goes into OPEN state
// again. If succeed - goes to CLOSED.
//
// circuitBreakerResetFailuresTimeout - if nothing has failed within
// this time period, a failure counter is reset.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	return httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
	}
}
