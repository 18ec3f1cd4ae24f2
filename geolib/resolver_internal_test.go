package geolib

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type onceProvider struct {
	calls atomic.Int32
}

func (o *onceProvider) Name() string {
	return "once"
}

func (o *onceProvider) Lookup(_ context.Context, ip string) (GeoResult, error) {
	if o.calls.Add(1) > 1 {
		return GeoResult{}, io.EOF
	}

	return GeoResult{IP: ip, CountryCode: "NL", CountryName: "Netherlands"}, nil
}

type ResolverCacheGaugeTestSuite struct {
	suite.Suite

	now      time.Time
	provider *onceProvider
	metrics  *Metrics
	resolver *Resolver
}

func (suite *ResolverCacheGaugeTestSuite) SetupTest() {
	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		panic(err)
	}

	suite.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.provider = &onceProvider{}
	suite.metrics = metrics

	resolver, err := NewResolver(ResolverOpts{
		Primary:  []Provider{suite.provider},
		CacheTTL: time.Minute,
		Metrics:  metrics,
	})
	if err != nil {
		panic(err)
	}

	resolver.cache.now = func() time.Time {
		return suite.now
	}

	suite.resolver = resolver
}

func (suite *ResolverCacheGaugeTestSuite) TearDownTest() {
	suite.resolver.Shutdown()
}

func (suite *ResolverCacheGaugeTestSuite) TestExpiredEntryIsNotCounted() {
	result := suite.resolver.Resolve(context.Background(), "145.97.39.155")

	suite.Equal("once", result.Source)
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.cacheEntries))

	suite.now = suite.now.Add(2 * time.Minute)

	result = suite.resolver.Resolve(context.Background(), "145.97.39.155")

	suite.Equal(SourceFallback, result.Source)
	suite.Equal(0, suite.resolver.cache.Len())
	suite.Equal(0.0, testutil.ToFloat64(suite.metrics.cacheEntries))
	suite.EqualValues(2, suite.provider.calls.Load())
}

func TestResolverCacheGauge(t *testing.T) {
	suite.Run(t, &ResolverCacheGaugeTestSuite{})
}
