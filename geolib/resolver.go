package geolib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pariz/gountries"
)

const (
	DefaultCountryCode  = "US"
	DefaultCacheControl = "public, s-maxage=300, stale-while-revalidate=60"

	// SourceInternal marks results which were degraded because client
	// has no usable IP address.
	SourceInternal = "internal"

	// SourceFallback marks results which were degraded because nobody
	// could geolocate a client.
	SourceFallback = "fallback"

	// CacheSourceSuffix is appended to Source of results which are
	// taken from cache.
	CacheSourceSuffix = " (cache)"

	unknownIP = "unknown"

	errorMessageInvalidIP = "Invalid or Private IP address detected"
	errorMessageFailed    = "All IP geolocation services failed"
	errorMessageShutdown  = "Geolocation service is shutting down"
	errorMessageCancelled = "Geolocation request was cancelled"
)

// ResolverOpts is a set of options for NewResolver. Only Primary is
// mandatory, the rest have reasonable defaults.
type ResolverOpts struct {
	// Primary providers are raced against each other.
	Primary []Provider

	// Fallback provider is asked only if every primary provider has
	// failed.
	Fallback Provider

	// ProviderTimeout is a timeout of a single provider call.
	ProviderTimeout time.Duration

	CacheCapacity  int
	CacheTTL       time.Duration
	WorkerPoolSize int

	// Extractor extracts client IP from request headers. If nil, only
	// default ranges are blocked.
	Extractor *IPExtractor

	Logger  Logger
	Metrics *Metrics

	// DefaultCountry is a 2-letter code which is returned in degraded
	// results.
	DefaultCountry string

	// CacheControl is a value of Cache-Control header of HTTP responses.
	CacheControl string
}

// Resolver geolocates clients. It owns a result cache, a table of
// in-flight resolutions and a worker pool for provider calls.
//
// Resolver never returns errors: if something went wrong, a degraded
// GeoResult is returned.
type Resolver struct {
	logger       Logger
	metrics      *Metrics
	extractor    *IPExtractor
	cache        *ResultCache
	dedup        dedupGroup
	racer        *racer
	degraded     GeoResult
	cacheControl string
	httpHandler  http.Handler

	rwmutex   sync.RWMutex
	closeOnce sync.Once
	closed    bool
}

func (r *Resolver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.httpHandler.ServeHTTP(w, req)
}

// ResolveRequest extracts client IP from headers and geolocates it.
// If there is no public IP address in headers, no provider is asked.
func (r *Resolver) ResolveRequest(ctx context.Context, headers http.Header) GeoResult {
	r.rwmutex.RLock()
	defer r.rwmutex.RUnlock()

	ip, ok := r.extractor.Extract(headers)

	return r.resolve(ctx, ip, ok)
}

// Resolve geolocates a given IP address.
func (r *Resolver) Resolve(ctx context.Context, ip string) GeoResult {
	r.rwmutex.RLock()
	defer r.rwmutex.RUnlock()

	ip, ok := r.extractor.parse(ip)

	return r.resolve(ctx, ip, ok)
}

func (r *Resolver) resolve(ctx context.Context, ip string, valid bool) GeoResult {
	switch {
	case r.closed:
		if !valid {
			ip = unknownIP
		}

		return r.degrade(SourceFallback, ip, errorMessageShutdown)
	case !valid:
		r.metrics.observeResolution(OutcomeInvalidIP)
		r.logger.ResolveError(unknownIP, ErrInvalidClientIP)

		return r.degrade(SourceInternal, unknownIP, errorMessageInvalidIP)
	}

	if cached, ok := r.cache.Get(ip); ok {
		r.metrics.observeResolution(OutcomeCacheHit)

		return cached.withSource(cached.Source + CacheSourceSuffix)
	}

	// a miss may purge an expired entry
	r.metrics.setCacheEntries(r.cache.Len())

	result, shared, err := r.dedup.Do(ctx, ip, func(ctx context.Context) (GeoResult, error) {
		result, err := r.racer.Resolve(ctx, ip)
		if err != nil {
			return GeoResult{}, err
		}

		r.cache.Set(ip, result)
		r.metrics.setCacheEntries(r.cache.Len())

		return result, nil
	})

	if shared {
		r.metrics.observeShared()
	}

	if err != nil {
		r.logger.ResolveError(ip, err)

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return r.degrade(SourceFallback, ip, errorMessageCancelled)
			}
		}

		return r.degrade(SourceFallback, ip, errorMessageFailed)
	}

	r.logger.ResolveInfo(ip, result.Source)

	return result
}

func (r *Resolver) degrade(source, ip, message string) GeoResult {
	rv := r.degraded

	rv.Source = source
	rv.IP = ip
	rv.Error = message

	return rv
}

// UsageStats returns usage statistics of providers.
func (r *Resolver) UsageStats() []*UsageStats {
	rv := make([]*UsageStats, 0, len(r.racer.stats))

	for _, v := range r.racer.primary {
		rv = append(rv, r.racer.stats[v.Name()])
	}

	if r.racer.fallback != nil {
		rv = append(rv, r.racer.stats[r.racer.fallback.Name()])
	}

	return rv
}

// Shutdown releases a worker pool. Resolver returns degraded results
// after that.
func (r *Resolver) Shutdown() {
	r.rwmutex.Lock()
	defer r.rwmutex.Unlock()

	r.closed = true

	r.closeOnce.Do(func() {
		r.racer.pool.Release()
	})
}

// NewResolver creates a new resolver.
func NewResolver(opts ResolverOpts) (*Resolver, error) {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	if opts.Extractor == nil {
		opts.Extractor = defaultIPExtractor
	}

	if opts.CacheControl == "" {
		opts.CacheControl = DefaultCacheControl
	}

	degraded, err := makeDegradedResult(opts.DefaultCountry)
	if err != nil {
		return nil, err
	}

	cache, err := NewResultCache(opts.CacheCapacity, opts.CacheTTL)
	if err != nil {
		return nil, err
	}

	racer, err := newRacer(opts.Primary,
		opts.Fallback,
		opts.ProviderTimeout,
		opts.WorkerPoolSize,
		opts.Logger,
		opts.Metrics)
	if err != nil {
		return nil, err
	}

	rv := &Resolver{
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		extractor:    opts.Extractor,
		cache:        cache,
		racer:        racer,
		degraded:     degraded,
		cacheControl: opts.CacheControl,
	}
	rv.httpHandler = newHTTPHandler(rv)

	return rv, nil
}

func makeDegradedResult(countryCode string) (GeoResult, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	countryCode = strings.ToUpper(countryCode)

	country, err := gountries.New().FindCountryByAlpha(countryCode)
	if err != nil {
		return GeoResult{}, fmt.Errorf("unknown default country %s: %w", countryCode, err)
	}

	return GeoResult{
		CountryCode: countryCode,
		CountryName: country.Name.Common,
	}, nil
}
