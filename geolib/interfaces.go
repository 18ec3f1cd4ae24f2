package geolib

import (
	"context"
	"net/http"
)

// Provider is a source of geolocation data. It is expected that
// Lookup respects a given context: resolver sets a timeout there and
// cancels it when another provider wins a race.
//
// Lookup has to return an error if response has no data which is
// required to treat it as a valid one (for example, a country code).
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (GeoResult, error)
}

// HTTPClient is an interface which is used by providers to access
// their upstreams. A timeout of each call is carried by a request
// context.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Logger is an interface for a logger which is used by Resolver.
type Logger interface {
	LookupError(ip, provider string, err error)
	ResolveError(ip string, err error)
	ResolveInfo(ip, source string)
}

type noopLogger struct{}

func (noopLogger) LookupError(string, string, error) {}

func (noopLogger) ResolveError(string, error) {}

func (noopLogger) ResolveInfo(string, string) {}
