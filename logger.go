package main

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/9seconds/geoprobe/geolib"
)

type logger struct {
	lookupLog  zerolog.Logger
	resolveLog zerolog.Logger
}

func (l *logger) LookupError(ip, provider string, err error) {
	l.lookupLog.Warn().Str("provider", provider).Str("ip", ip).Err(err).Msg("")
}

func (l *logger) ResolveError(ip string, err error) {
	event := l.resolveLog.Error()

	if errors.Is(err, geolib.ErrInvalidClientIP) {
		event = l.resolveLog.Debug()
	}

	event.Str("ip", ip).Err(err).Msg("")
}

func (l *logger) ResolveInfo(ip, source string) {
	l.resolveLog.Debug().Str("ip", ip).Str("source", source).Msg("Client was geolocated")
}

func newLogger(debug bool) *logger {
	return newLoggerTo(os.Stderr, debug)
}

func newLoggerTo(writer io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &logger{
		lookupLog:  zerolog.New(writer).Level(level).With().Timestamp().Str("event_name", "lookup").Logger(),
		resolveLog: zerolog.New(writer).Level(level).With().Timestamp().Str("event_name", "resolve").Logger(),
	}
}
