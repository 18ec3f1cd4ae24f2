package geolib

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultProviderTimeout = 3 * time.Second
	DefaultWorkerPoolSize  = 4096

	workerPoolExpireTime = time.Minute
)

type lookupOutcome struct {
	result GeoResult
	err    error
}

// racer asks primary providers concurrently and takes the first valid
// response. Losers are cancelled as soon as a winner is known. If all
// primary providers fail, fallback provider is asked once.
type racer struct {
	primary  []Provider
	fallback Provider
	timeout  time.Duration
	pool     *ants.Pool
	logger   Logger
	metrics  *Metrics
	stats    map[string]*UsageStats
}

func (r *racer) Resolve(ctx context.Context, ip string) (GeoResult, error) {
	result, err := r.race(ctx, r.primary, ip)
	if err == nil {
		r.metrics.observeResolution(OutcomeRace)

		return result, nil
	}

	err = fmt.Errorf("%w: %w", ErrAllPrimaryProvidersFailed, err)

	if r.fallback == nil {
		r.metrics.observeResolution(OutcomeFailed)

		return GeoResult{}, err
	}

	result, fallbackErr := r.race(ctx, []Provider{r.fallback}, ip)
	if fallbackErr != nil {
		r.metrics.observeResolution(OutcomeFailed)

		return GeoResult{}, fmt.Errorf("%w: %w", ErrFallbackFailed, errors.Join(err, fallbackErr))
	}

	r.metrics.observeResolution(OutcomeFallback)

	return result, nil
}

// race runs lookups on a worker pool and returns the first success.
// If everyone fails, an error joins all ProviderErrors. Providers which
// do not respect a context are abandoned after timeout.
func (r *racer) race(ctx context.Context, providers []Provider, ip string) (GeoResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan lookupOutcome, len(providers))

	for _, provider := range providers {
		provider := provider

		task := func() {
			outcomes <- r.lookup(ctx, provider, ip)
		}

		if err := r.pool.Submit(task); err != nil {
			outcomes <- lookupOutcome{
				err: &ProviderError{
					Provider: provider.Name(),
					Err:      fmt.Errorf("cannot schedule a task: %w", err),
				},
			}
		}
	}

	deadline := time.NewTimer(r.timeout)
	defer deadline.Stop()

	errs := make([]error, 0, len(providers))

	for len(errs) < len(providers) {
		select {
		case outcome := <-outcomes:
			if outcome.err == nil {
				r.stats[outcome.result.Source].Won()

				return outcome.result, nil
			}

			errs = append(errs, outcome.err)
		case <-deadline.C:
			errs = append(errs, fmt.Errorf("%d provider(s) have not responded: %w",
				len(providers)-len(errs), context.DeadlineExceeded))

			return GeoResult{}, errors.Join(errs...)
		}
	}

	return GeoResult{}, errors.Join(errs...)
}

func (r *racer) lookup(raceCtx context.Context, provider Provider, ip string) lookupOutcome {
	ctx, cancel := context.WithTimeout(raceCtx, r.timeout)
	defer cancel()

	name := provider.Name()
	started := time.Now()
	result, err := safeLookup(ctx, provider, ip)

	if err == nil && result.CountryCode == "" {
		err = fmt.Errorf("no country code: %w", ErrInvalidResponse)
	}

	elapsed := time.Since(started)

	if err != nil && raceCtx.Err() != nil && errors.Is(err, context.Canceled) {
		r.metrics.observeLookup(name, "cancelled", elapsed)

		return lookupOutcome{err: &ProviderError{Provider: name, Err: err}}
	}

	r.stats[name].Used(err)

	if err != nil {
		r.metrics.observeLookup(name, "failure", elapsed)
		r.logger.LookupError(ip, name, err)

		return lookupOutcome{err: &ProviderError{Provider: name, Err: err}}
	}

	r.metrics.observeLookup(name, "success", elapsed)

	result.Source = name
	result.Accurate = true
	result.Error = ""

	if result.IP == "" {
		result.IP = ip
	}

	return lookupOutcome{result: result}
}

func safeLookup(ctx context.Context, provider Provider, ip string) (result GeoResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("provider has panicked: %v", recovered)
		}
	}()

	return provider.Lookup(ctx, ip)
}

func newRacer(primary []Provider,
	fallback Provider,
	timeout time.Duration,
	workerPoolSize int,
	logger Logger,
	metrics *Metrics) (*racer, error) {
	if len(primary) == 0 {
		return nil, ErrNoProviders
	}

	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	if workerPoolSize <= 0 {
		workerPoolSize = DefaultWorkerPoolSize
	}

	pool, err := ants.NewPool(workerPoolSize,
		ants.WithExpiryDuration(workerPoolExpireTime),
		ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	rv := &racer{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		pool:     pool,
		logger:   logger,
		metrics:  metrics,
		stats:    map[string]*UsageStats{},
	}

	all := append(append([]Provider{}, primary...), fallback)

	for _, v := range all {
		if v == nil {
			continue
		}

		if _, ok := rv.stats[v.Name()]; ok {
			pool.Release()

			return nil, fmt.Errorf("provider %s is duplicated", v.Name())
		}

		rv.stats[v.Name()] = &UsageStats{Name: v.Name()}
	}

	return rv, nil
}
