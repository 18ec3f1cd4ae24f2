package geolib

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes which are reported to metrics.
const (
	OutcomeCacheHit  = "cache_hit"
	OutcomeRace      = "race"
	OutcomeFallback  = "fallback"
	OutcomeFailed    = "failed"
	OutcomeInvalidIP = "invalid_ip"
)

// Metrics is a Prometheus-backed collector of resolver events. A nil
// *Metrics is valid and does nothing.
type Metrics struct {
	lookupsTotal     *prometheus.CounterVec
	lookupDuration   *prometheus.HistogramVec
	resolutionsTotal *prometheus.CounterVec
	sharedTotal      prometheus.Counter
	cacheEntries     prometheus.Gauge
}

func (m *Metrics) observeLookup(provider, result string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.lookupsTotal.WithLabelValues(provider, result).Inc()
	m.lookupDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) observeResolution(outcome string) {
	if m == nil {
		return
	}

	m.resolutionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeShared() {
	if m == nil {
		return
	}

	m.sharedTotal.Inc()
}

func (m *Metrics) setCacheEntries(count int) {
	if m == nil {
		return
	}

	m.cacheEntries.Set(float64(count))
}

// NewMetrics creates collectors and registers them on a given
// registerer. If registerer is nil, prometheus.DefaultRegisterer is
// used. Already registered compatible collectors are reused.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	lookupsTotal, err := registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoprobe_provider_lookups_total",
			Help: "Number of provider lookups by provider and result (success, failure, cancelled).",
		},
		[]string{"provider", "result"},
	))
	if err != nil {
		return nil, err
	}

	lookupDuration, err := registerCollector(registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoprobe_provider_lookup_duration_seconds",
			Help:    "Duration of provider lookups.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
		[]string{"provider"},
	))
	if err != nil {
		return nil, err
	}

	resolutionsTotal, err := registerCollector(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoprobe_resolutions_total",
			Help: "Number of resolutions by outcome (cache_hit, race, fallback, failed, invalid_ip).",
		},
		[]string{"outcome"},
	))
	if err != nil {
		return nil, err
	}

	sharedTotal, err := registerCollector(registerer, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geoprobe_resolutions_shared_total",
			Help: "Number of callers which were attached to an in-flight resolution.",
		},
	))
	if err != nil {
		return nil, err
	}

	cacheEntries, err := registerCollector(registerer, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoprobe_cache_entries",
			Help: "Number of entries in result cache.",
		},
	))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		lookupsTotal:     lookupsTotal,
		lookupDuration:   lookupDuration,
		resolutionsTotal: resolutionsTotal,
		sharedTotal:      sharedTotal,
		cacheEntries:     cacheEntries,
	}, nil
}

func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError

		if errors.As(err, &alreadyRegistered) {
			if existing, ok := alreadyRegistered.ExistingCollector.(T); ok {
				return existing, nil
			}

			return collector, fmt.Errorf("collector is already registered with incompatible type %T",
				alreadyRegistered.ExistingCollector)
		}

		return collector, fmt.Errorf("cannot register collector: %w", err)
	}

	return collector, nil
}
