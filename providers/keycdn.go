package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/9seconds/geoprobe/geolib"
)

type keycdnResponse struct {
	Status  string `json:"status"`
	Message string `json:"description"`
	Data    struct {
		Geo struct {
			IP          string   `json:"ip"`
			CountryCode string   `json:"country_code"`
			CountryName string   `json:"country_name"`
			City        string   `json:"city"`
			RegionName  string   `json:"region_name"`
			Timezone    string   `json:"timezone"`
			Latitude    *float64 `json:"latitude"`
			Longitude   *float64 `json:"longitude"`
		} `json:"geo"`
	} `json:"data"`
}

type keycdnProvider struct {
	client    geolib.HTTPClient
	userAgent string
}

func (k keycdnProvider) Name() string {
	return NameKeyCDN
}

func (k keycdnProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://tools.keycdn.com/geo.json?host="+url.QueryEscape(ip), nil)
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	// keycdn rejects requests without this user agent
	if k.userAgent != "" {
		req.Header.Set("User-Agent", k.userAgent)
	}

	jsonResponse := keycdnResponse{}

	if err := fetchJSONRequest(k.client, req, &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	if jsonResponse.Status != "success" {
		return geolib.GeoResult{}, fmt.Errorf("failed to geolocate: %s: %w",
			jsonResponse.Message, geolib.ErrInvalidResponse)
	}

	geo := jsonResponse.Data.Geo

	return geoFields{
		ip:          geo.IP,
		countryCode: geo.CountryCode,
		countryName: geo.CountryName,
		city:        geo.City,
		region:      geo.RegionName,
		timezone:    geo.Timezone,
		latitude:    geo.Latitude,
		longitude:   geo.Longitude,
	}.normalize(NameKeyCDN, ip)
}

// NewKeyCDN returns a provider for https://tools.keycdn.com. site
// parameter is an URL of your website, keycdn requires it to be a part
// of user agent.
func NewKeyCDN(client geolib.HTTPClient, parameters map[string]string) geolib.Provider {
	rv := keycdnProvider{
		client: client,
	}

	if site := parameters["site"]; site != "" {
		rv.userAgent = "keycdn-tools:" + site
	}

	return rv
}
