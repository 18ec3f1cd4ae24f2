package geolib

import "errors"

var (
	// ErrInvalidClientIP is returned if none of the request headers
	// carries a public IP address.
	ErrInvalidClientIP = errors.New("invalid or private IP address detected")

	// ErrInvalidResponse is returned by providers if a response lacks
	// a field which is required to consider it valid.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrAllPrimaryProvidersFailed is returned if every primary provider
	// has failed within a race.
	ErrAllPrimaryProvidersFailed = errors.New("all primary providers have failed")

	// ErrFallbackFailed is returned if a fallback provider has failed
	// after primary providers.
	ErrFallbackFailed = errors.New("fallback provider has failed")

	// ErrResolverShutdown is returned if resolver was shutdown.
	ErrResolverShutdown = errors.New("resolver instance was shutdown")

	// ErrCircuitBreakerOpened is returned by HTTP client if upstream
	// has failed too many times and access to it is temporarily
	// blocked.
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

	// ErrNoProviders is returned if resolver is created without any
	// primary provider.
	ErrNoProviders = errors.New("at least one primary provider is required")
)

// ProviderError is a failure of a single provider within a race. It
// never reaches a caller directly, only as a part of an aggregated
// error.
type ProviderError struct {
	Provider string
	Err      error
}

func (p *ProviderError) Error() string {
	if p == nil {
		return ""
	}

	if p.Err == nil {
		return p.Provider + " has failed"
	}

	return p.Provider + ": " + p.Err.Error()
}

func (p *ProviderError) Unwrap() error {
	if p == nil {
		return nil
	}

	return p.Err
}
