package providers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/9seconds/geoprobe/geolib"
)

type ip2cProvider struct {
	client geolib.HTTPClient
}

func (i ip2cProvider) Name() string {
	return NameIP2C
}

// Lookup parses responses like "1;US;USA;United States". The first
// field is a status: 1 means that country is found.
func (i ip2cProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://ip2c.org/"+url.PathEscape(ip), nil)
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "text/plain")

	resp, err := i.client.Do(req)
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return geolib.GeoResult{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(bufio.NewReader(io.LimitReader(resp.Body, 1024)))
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot read response body: %w", err)
	}

	body := strings.TrimSpace(string(bodyBytes))
	chunks := strings.SplitN(body, ";", 4)

	switch {
	case len(chunks) != 4:
		return geolib.GeoResult{}, fmt.Errorf("incorrect response %q: %w", body, geolib.ErrInvalidResponse)
	case chunks[0] != "1":
		return geolib.GeoResult{}, fmt.Errorf("ip2c cannot detect region %q: %w", body, geolib.ErrInvalidResponse)
	}

	return geoFields{
		countryCode: chunks[1],
		countryName: chunks[3],
	}.normalize(NameIP2C, ip)
}

// NewIP2C returns a provider for https://ip2c.org. It knows only
// countries.
func NewIP2C(client geolib.HTTPClient) geolib.Provider {
	return ip2cProvider{
		client: client,
	}
}
