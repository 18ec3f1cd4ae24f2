package providers

import (
	"context"
	"net/url"

	"github.com/9seconds/geoprobe/geolib"
)

type freeipapiResponse struct {
	IPAddress   string   `json:"ipAddress"`
	CountryCode string   `json:"countryCode"`
	CountryName string   `json:"countryName"`
	CityName    string   `json:"cityName"`
	RegionName  string   `json:"regionName"`
	TimeZone    string   `json:"timeZone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type freeipapiProvider struct {
	client geolib.HTTPClient
}

func (f freeipapiProvider) Name() string {
	return NameFreeIPAPI
}

func (f freeipapiProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	jsonResponse := freeipapiResponse{}

	if err := fetchJSON(ctx, f.client, "https://freeipapi.com/api/json/"+url.PathEscape(ip), &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	return geoFields{
		ip:          jsonResponse.IPAddress,
		countryCode: jsonResponse.CountryCode,
		countryName: jsonResponse.CountryName,
		city:        jsonResponse.CityName,
		region:      jsonResponse.RegionName,
		timezone:    jsonResponse.TimeZone,
		latitude:    jsonResponse.Latitude,
		longitude:   jsonResponse.Longitude,
	}.normalize(NameFreeIPAPI, ip)
}

// NewFreeIPAPI returns a provider for https://freeipapi.com. By default
// it is used as a fallback.
func NewFreeIPAPI(client geolib.HTTPClient) geolib.Provider {
	return freeipapiProvider{
		client: client,
	}
}
