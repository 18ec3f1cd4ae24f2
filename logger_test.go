package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/9seconds/geoprobe/geolib"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	rv := []map[string]interface{}{}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		data := map[string]interface{}{}

		assert.NoError(t, json.Unmarshal([]byte(line), &data))

		rv = append(rv, data)
	}

	return rv
}

func TestLoggerLookupError(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLoggerTo(buf, false)

	log.LookupError("1.1.1.1", "ipinfo", io.EOF)

	lines := decodeLogLines(t, buf)

	assert.Len(t, lines, 1)
	assert.Equal(t, "lookup", lines[0]["event_name"])
	assert.Equal(t, "ipinfo", lines[0]["provider"])
	assert.Equal(t, "1.1.1.1", lines[0]["ip"])
	assert.Equal(t, "EOF", lines[0]["error"])
	assert.Equal(t, "warn", lines[0]["level"])
}

func TestLoggerInvalidClientIPIsDebug(t *testing.T) {
	buf := &bytes.Buffer{}

	newLoggerTo(buf, false).ResolveError("unknown", geolib.ErrInvalidClientIP)
	assert.Empty(t, decodeLogLines(t, buf))

	newLoggerTo(buf, true).ResolveError("unknown", geolib.ErrInvalidClientIP)

	lines := decodeLogLines(t, buf)

	assert.Len(t, lines, 1)
	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "resolve", lines[0]["event_name"])
}

func TestLoggerResolveError(t *testing.T) {
	buf := &bytes.Buffer{}

	newLoggerTo(buf, false).ResolveError("1.1.1.1", geolib.ErrFallbackFailed)

	lines := decodeLogLines(t, buf)

	assert.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
}

func TestLoggerResolveInfo(t *testing.T) {
	buf := &bytes.Buffer{}

	newLoggerTo(buf, false).ResolveInfo("1.1.1.1", "ipinfo")
	assert.Empty(t, decodeLogLines(t, buf))

	newLoggerTo(buf, true).ResolveInfo("1.1.1.1", "ipinfo")

	lines := decodeLogLines(t, buf)

	assert.Len(t, lines, 1)
	assert.Equal(t, "ipinfo", lines[0]["source"])
}
