package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/9seconds/geoprobe/geolib"
)

type ipstackResponse struct {
	Error struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	IP          string   `json:"ip"`
	CountryCode string   `json:"country_code"`
	CountryName string   `json:"country_name"`
	RegionName  string   `json:"region_name"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	TimeZone    struct {
		ID string `json:"id"`
	} `json:"time_zone"`
}

type ipstackProvider struct {
	client     geolib.HTTPClient
	httpScheme string
	authToken  string
}

func (i ipstackProvider) Name() string {
	return NameIPStack
}

func (i ipstackProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	jsonResponse := ipstackResponse{}

	if err := fetchJSON(ctx, i.client, i.buildURL(ip), &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	if jsonResponse.Error.Code != 0 {
		return geolib.GeoResult{}, fmt.Errorf(
			"failed response: code=%d, type=%s, info=%s: %w",
			jsonResponse.Error.Code,
			jsonResponse.Error.Type,
			jsonResponse.Error.Info,
			geolib.ErrInvalidResponse)
	}

	return geoFields{
		ip:          jsonResponse.IP,
		countryCode: jsonResponse.CountryCode,
		countryName: jsonResponse.CountryName,
		city:        jsonResponse.City,
		region:      jsonResponse.RegionName,
		timezone:    jsonResponse.TimeZone.ID,
		latitude:    jsonResponse.Latitude,
		longitude:   jsonResponse.Longitude,
	}.normalize(NameIPStack, ip)
}

func (i ipstackProvider) buildURL(ip string) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.authToken)
	getQuery.Set("output", "json")
	getQuery.Set("fields", "ip,country_code,country_name,region_name,city,latitude,longitude,time_zone")
	getQuery.Set("language", "en")
	getQuery.Set("hostname", "0")
	getQuery.Set("security", "0")

	u := url.URL{
		Scheme:   i.httpScheme,
		Host:     "api.ipstack.com",
		Path:     ip,
		RawQuery: getQuery.Encode(),
	}

	return u.String()
}

// NewIPStack returns a provider for https://ipstack.com. It requires
// auth_token. Free plan does not support https so it is possible to
// choose a scheme.
func NewIPStack(client geolib.HTTPClient, authToken string, isSecure bool) (geolib.Provider, error) {
	scheme := "http"

	if isSecure {
		scheme = "https"
	}

	if authToken == "" {
		return nil, ErrAuthTokenIsRequired
	}

	return ipstackProvider{
		client:     client,
		authToken:  authToken,
		httpScheme: scheme,
	}, nil
}
