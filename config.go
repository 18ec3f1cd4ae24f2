package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go/v4"
	"github.com/juju/errors"

	"github.com/9seconds/geoprobe/geolib"
	"github.com/9seconds/geoprobe/providers"
)

const (
	DefaultListen    = "127.0.0.1:8000"
	DefaultUserAgent = "geoprobe/" + version
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen         string                            `json:"listen"`
	UserAgent      string                            `json:"user_agent"`
	WorkerPoolSize uint                              `json:"worker_pool_size"`
	DefaultCountry string                            `json:"default_country" validate:"omitempty,len=2,alpha"`
	CacheControl   string                            `json:"cache_control"`
	Cache          configCache                       `json:"cache"`
	Race           configRace                        `json:"race"`
	Extractor      configExtractor                   `json:"extractor"`
	HTTP           configHTTP                        `json:"http"`
	Providers      map[string]map[string]interface{} `json:"providers"`
}

type configCache struct {
	Capacity uint     `json:"capacity" validate:"lte=10000000"`
	TTL      duration `json:"ttl"`
}

type configRace struct {
	Timeout  duration `json:"timeout"`
	Primary  []string `json:"primary" validate:"unique,dive,required"`
	Fallback *string  `json:"fallback"`
}

type configExtractor struct {
	ExtraBlockedRanges []string `json:"extra_blocked_ranges" validate:"dive,cidr"`
}

type configHTTP struct {
	RateLimitInterval                  duration `json:"rate_limit_interval"`
	RateLimitBurst                     uint     `json:"rate_limit_burst"`
	CircuitBreakerOpenThreshold        uint32   `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration `json:"circuit_breaker_reset_failures_timeout"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}

	return DefaultUserAgent
}

func (c config) GetWorkerPoolSize() int {
	return int(c.WorkerPoolSize)
}

func (c config) GetCacheCapacity() int {
	return int(c.Cache.Capacity)
}

func (c config) GetCacheTTL() time.Duration {
	return c.Cache.TTL.Duration
}

func (c config) GetProviderTimeout() time.Duration {
	if c.Race.Timeout.Duration == 0 {
		return geolib.DefaultProviderTimeout
	}

	return c.Race.Timeout.Duration
}

func (c config) GetPrimary() []string {
	if len(c.Race.Primary) == 0 {
		return []string{providers.NameIPAPICo, providers.NameIPInfo, providers.NameIPWhoIs}
	}

	return c.Race.Primary
}

// GetFallback returns a name of fallback provider. An explicitly empty
// value disables fallback.
func (c config) GetFallback() string {
	if c.Race.Fallback == nil {
		return providers.NameFreeIPAPI
	}

	return *c.Race.Fallback
}

func (c config) GetRateLimitInterval() time.Duration {
	if c.HTTP.RateLimitInterval.Duration == 0 {
		return geolib.DefaultRateLimitInterval
	}

	return c.HTTP.RateLimitInterval.Duration
}

func (c config) GetRateLimitBurst() int {
	if c.HTTP.RateLimitBurst == 0 {
		return geolib.DefaultRateLimitBurst
	}

	return int(c.HTTP.RateLimitBurst)
}

func (c config) GetCircuitBreakerOpenThreshold() uint32 {
	if c.HTTP.CircuitBreakerOpenThreshold == 0 {
		return geolib.DefaultCircuitBreakerOpenThreshold
	}

	return c.HTTP.CircuitBreakerOpenThreshold
}

func (c config) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.HTTP.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return geolib.DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.HTTP.CircuitBreakerHalfOpenTimeout.Duration
}

func (c config) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.HTTP.CircuitBreakerResetFailuresTimeout.Duration == 0 {
		return geolib.DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.HTTP.CircuitBreakerResetFailuresTimeout.Duration
}

// GetProviderParameters returns specific parameters of the provider
// stringified: it is possible to write secure = true in config.
func (c config) GetProviderParameters(name string) map[string]string {
	rv := map[string]string{}

	for k, v := range c.Providers[name] {
		rv[k] = fmt.Sprint(v)
	}

	return rv
}

// parseConfig reads TOML or HJSON config. A format is chosen by a file
// extension: .toml is TOML, everything else is HJSON (which is a
// superset of JSON).
func parseConfig(reader io.Reader, path string) (*config, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Annotate(err, "cannot read config file")
	}

	rawMap := map[string]interface{}{}

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		if _, err := toml.Decode(string(content), &rawMap); err != nil {
			return nil, errors.Annotate(err, "cannot parse toml")
		}
	} else if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, errors.Annotate(err, "cannot parse hjson")
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, errors.Annotate(err, "cannot normalize config")
	}

	conf := &config{}

	if err := json.Unmarshal(rawBytes, conf); err != nil {
		return nil, errors.Annotate(err, "incorrect config structure")
	}

	if err := validateConfig(conf); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}

	return conf, nil
}

func validateConfig(conf *config) error {
	if err := validator.New().Struct(conf); err != nil {
		return errors.Annotate(err, "incorrect value")
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return errors.Annotatef(err, "incorrect host:port for listen %s", conf.GetListen())
	}

	for _, v := range conf.GetPrimary() {
		if v == conf.GetFallback() {
			return errors.Errorf("fallback provider %s is also a primary one", v)
		}
	}

	if conf.Cache.TTL.Duration < 0 || conf.Race.Timeout.Duration < 0 {
		return errors.Errorf("durations have to be positive")
	}

	if _, err := geolib.NewIPExtractor(conf.Extractor.ExtraBlockedRanges); err != nil {
		return errors.Annotate(err, "incorrect extra blocked ranges")
	}

	return nil
}
