package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/9seconds/geoprobe/geolib"
	"github.com/9seconds/geoprobe/providers"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeProviders(conf *config, fs afero.Fs) ([]geolib.Provider, geolib.Provider, error) {
	primary := make([]geolib.Provider, 0, len(conf.GetPrimary()))

	for _, name := range conf.GetPrimary() {
		prov, err := makeProvider(conf, fs, name)
		if err != nil {
			return nil, nil, err
		}

		primary = append(primary, prov)
	}

	if conf.GetFallback() == "" {
		return primary, nil, nil
	}

	fallback, err := makeProvider(conf, fs, conf.GetFallback())
	if err != nil {
		return nil, nil, err
	}

	return primary, fallback, nil
}

func makeProvider(conf *config, fs afero.Fs, name string) (geolib.Provider, error) {
	params := conf.GetProviderParameters(name)

	switch name {
	case providers.NameIPAPICo:
		return providers.NewIPAPICo(makeNewHTTPClient(conf)), nil
	case providers.NameIPInfo:
		return providers.NewIPInfo(makeNewHTTPClient(conf), params), nil
	case providers.NameIPWhoIs:
		return providers.NewIPWhoIs(makeNewHTTPClient(conf)), nil
	case providers.NameFreeIPAPI:
		return providers.NewFreeIPAPI(makeNewHTTPClient(conf)), nil
	case providers.NameKeyCDN:
		return providers.NewKeyCDN(makeNewHTTPClient(conf), params), nil
	case providers.NameIP2C:
		return providers.NewIP2C(makeNewHTTPClient(conf)), nil
	case providers.NameIPStack:
		prov, err := providers.NewIPStack(makeNewHTTPClient(conf),
			params["auth_token"], boolParam(params["secure"]))
		if err != nil {
			return nil, fmt.Errorf("cannot create ipstack provider: %w", err)
		}

		return prov, nil
	case providers.NameMaxmind:
		prov, err := providers.NewMaxmind(fs, params["db_path"])
		if err != nil {
			return nil, fmt.Errorf("cannot create maxmind provider: %w", err)
		}

		return prov, nil
	case providers.NameIP2Location:
		prov, err := providers.NewIP2Location(fs, params["db_path"])
		if err != nil {
			return nil, fmt.Errorf("cannot create ip2location provider: %w", err)
		}

		return prov, nil
	}

	return nil, fmt.Errorf("unsupported provider name: %s", name)
}

// makeNewHTTPClient creates a client for a single provider: each
// provider has its own rate limiter and circuit breaker.
func makeNewHTTPClient(conf *config) geolib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Jar: jar,
	}

	return geolib.NewHTTPClient(httpClient,
		conf.GetUserAgent(),
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}

func boolParam(param string) bool {
	switch strings.ToLower(param) {
	case "1", "true", "enabled", "yes":
		return true
	default:
		return false
	}
}
