package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/geoprobe/geolib"
)

const (
	version = "0.1.0"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var (
	app = kingpin.New(
		"geoprobe",
		"Geolocation of HTTP clients which never fails.")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOPROBE_DEBUG").
		Bool()
	configFile = app.Arg("config-path", "Path to the config.").
			Required().
			File()
)

func init() {
	app.Version(version)
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if !*debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log := newLogger(*debug)
	mainLog := zerolog.New(os.Stderr).With().Timestamp().Str("event_name", "main").Logger()

	conf, err := parseConfig(*configFile, (*configFile).Name())

	(*configFile).Close()

	if err != nil {
		mainLog.Fatal().Err(err).Msg("Cannot read config")
	}

	rootCtx, cancel := makeRootContext()
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := geolib.NewMetrics(registry)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("Cannot register metrics")
	}

	primary, fallback, err := makeProviders(conf, afero.NewOsFs())
	if err != nil {
		mainLog.Fatal().Err(err).Msg("Cannot initialize providers")
	}

	extractor, err := geolib.NewIPExtractor(conf.Extractor.ExtraBlockedRanges)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("Cannot initialize IP extractor")
	}

	resolver, err := geolib.NewResolver(geolib.ResolverOpts{
		Primary:         primary,
		Fallback:        fallback,
		ProviderTimeout: conf.GetProviderTimeout(),
		CacheCapacity:   conf.GetCacheCapacity(),
		CacheTTL:        conf.GetCacheTTL(),
		WorkerPoolSize:  conf.GetWorkerPoolSize(),
		Extractor:       extractor,
		Logger:          log,
		Metrics:         metrics,
		DefaultCountry:  conf.DefaultCountry,
		CacheControl:    conf.CacheControl,
	})
	if err != nil {
		mainLog.Fatal().Err(err).Msg("Cannot initialize resolver")
	}

	defer resolver.Shutdown()

	server := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           makeRouter(resolver, registry, mainLog),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	shutdownDone := make(chan struct{})

	go func() {
		defer close(shutdownDone)

		<-rootCtx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		server.Shutdown(ctx) // nolint: errcheck
	}()

	mainLog.Info().Str("listen", conf.GetListen()).Msg("Start server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLog.Error().Err(err).Msg("Server has failed")
		cancel()
	}

	<-shutdownDone
}

func makeRouter(resolver http.Handler, gatherer prometheus.Gatherer, log zerolog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(hlog.NewHandler(log))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Handle("/api/*", resolver)

	return router
}
